package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrSameLocation           = errors.New("origen y destino deben ser distintos")
	ErrSourceNotFound         = errors.New("no existe stock del equipo en la ubicación de origen")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrConcurrentModification = errors.New("modificación concurrente, reintente la operación")
	ErrStorageUnavailable     = errors.New("almacenamiento no disponible")
	ErrDuplicateTransfer      = errors.New("grupo de traslado ya ejecutado con otros parámetros")
)

// InsufficientStockError detalla un rechazo por stock insuficiente: cuántas unidades
// se pidieron y cuántas hay disponibles en la ubicación de origen.
type InsufficientStockError struct {
	EquipmentKey string
	LocationID   string
	Requested    int64
	Available    int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente de %s: solo %d unidades disponibles en %s (se pidieron %d)",
		e.EquipmentKey, e.Available, e.LocationID, e.Requested)
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
