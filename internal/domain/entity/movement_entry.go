package entity

import "time"

// Direcciones de un movimiento en el libro mayor.
const (
	DirectionIn  = "in"  // entrada a la ubicación
	DirectionOut = "out" // salida de la ubicación
)

// MovementEntry es un asiento inmutable del libro de movimientos: registra un cambio
// de stock en una sola dirección sobre un registro (EquipmentKey, LocationID).
// Una vez persistido nunca se actualiza ni se elimina (append-only).
// Invariante: NewQuantity-PreviousQuantity == +Quantity para "in" y -Quantity para "out".
type MovementEntry struct {
	ID                     string
	EquipmentKey           string
	LocationID             string
	Direction              string // in | out
	Quantity               int64  // siempre positivo; la dirección lleva el signo
	Reason                 string
	CounterpartyLocationID string // ubicación contraparte en traslados; vacío en ajustes
	PreviousQuantity       int64
	NewQuantity            int64
	CreatedAt              time.Time
	Actor                  string
	TransferGroupID        string // correlaciona el par salida/entrada de un traslado
}

// Consistent verifica el invariante de cantidades del asiento.
func (m *MovementEntry) Consistent() bool {
	switch m.Direction {
	case DirectionIn:
		return m.NewQuantity-m.PreviousQuantity == m.Quantity
	case DirectionOut:
		return m.NewQuantity-m.PreviousQuantity == -m.Quantity
	}
	return false
}
