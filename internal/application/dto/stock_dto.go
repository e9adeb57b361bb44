package dto

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRecordResponse salida de un registro de stock por (equipo, ubicación).
type StockRecordResponse struct {
	EquipmentKey  string          `json:"equipment_key"`
	LocationID    string          `json:"location_id"`
	Name          string          `json:"name,omitempty"`
	EquipmentType string          `json:"equipment_type,omitempty"`
	Quantity      int64           `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	MinThreshold  int64           `json:"min_threshold,omitempty"`
	MaxThreshold  int64           `json:"max_threshold,omitempty"`
	Version       int64           `json:"version"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewStockRecordResponse mapea la entidad a su salida HTTP.
func NewStockRecordResponse(r *entity.EquipmentStockRecord) StockRecordResponse {
	return StockRecordResponse{
		EquipmentKey:  r.EquipmentKey,
		LocationID:    r.LocationID,
		Name:          r.Name,
		EquipmentType: r.EquipmentType,
		Quantity:      r.Quantity,
		UnitCost:      r.UnitCost,
		MinThreshold:  r.MinThreshold,
		MaxThreshold:  r.MaxThreshold,
		Version:       r.Version,
		UpdatedAt:     r.UpdatedAt,
	}
}

// StockListResponse lista paginada de registros de stock.
type StockListResponse struct {
	Items []StockRecordResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// DistributionResponse cantidad por ubicación para un equipo; Total es la suma
// global (la que la conservación mantiene constante ante traslados).
type DistributionResponse struct {
	EquipmentKey string           `json:"equipment_key"`
	Locations    map[string]int64 `json:"locations"`
	Total        int64            `json:"total"`
}

// TotalValueResponse valor total del stock (cantidad * costo unitario).
type TotalValueResponse struct {
	LocationID string          `json:"location_id,omitempty"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// MovementResponse salida de un asiento del libro de movimientos.
type MovementResponse struct {
	ID                     string    `json:"id"`
	EquipmentKey           string    `json:"equipment_key"`
	LocationID             string    `json:"location_id"`
	Direction              string    `json:"direction"`
	Quantity               int64     `json:"quantity"`
	Reason                 string    `json:"reason,omitempty"`
	CounterpartyLocationID string    `json:"counterparty_location_id,omitempty"`
	PreviousQuantity       int64     `json:"previous_quantity"`
	NewQuantity            int64     `json:"new_quantity"`
	CreatedAt              time.Time `json:"created_at"`
	Actor                  string    `json:"actor,omitempty"`
	TransferGroupID        string    `json:"transfer_group_id"`
}

// NewMovementResponse mapea un asiento a su salida HTTP.
func NewMovementResponse(m *entity.MovementEntry) MovementResponse {
	return MovementResponse{
		ID:                     m.ID,
		EquipmentKey:           m.EquipmentKey,
		LocationID:             m.LocationID,
		Direction:              m.Direction,
		Quantity:               m.Quantity,
		Reason:                 m.Reason,
		CounterpartyLocationID: m.CounterpartyLocationID,
		PreviousQuantity:       m.PreviousQuantity,
		NewQuantity:            m.NewQuantity,
		CreatedAt:              m.CreatedAt,
		Actor:                  m.Actor,
		TransferGroupID:        m.TransferGroupID,
	}
}

// MovementListResponse feed paginado de movimientos (más reciente primero).
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
