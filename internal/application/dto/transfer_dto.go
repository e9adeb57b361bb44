package dto

import (
	"github.com/jhoicas/almacen-api/internal/application/transfer"
	"github.com/shopspring/decimal"
)

// TransferRequest body para POST /api/transfers.
// TransferGroupID opcional: clave de idempotencia contra reenvíos del cliente.
type TransferRequest struct {
	SourceLocationID      string `json:"source_location_id" validate:"required,uuid4"`
	DestinationLocationID string `json:"destination_location_id" validate:"required,uuid4"`
	EquipmentKey          string `json:"equipment_key" validate:"required,min=1,max=200"`
	Quantity              int64  `json:"quantity" validate:"required,gt=0"`
	Notes                 string `json:"notes" validate:"max=500"`
	TransferGroupID       string `json:"transfer_group_id" validate:"omitempty,max=100"`
}

// BatchTransferItem un equipo dentro de un traslado por lote.
type BatchTransferItem struct {
	EquipmentKey string `json:"equipment_key" validate:"required,min=1,max=200"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
}

// BatchTransferRequest body para POST /api/transfers/batch.
type BatchTransferRequest struct {
	SourceLocationID      string              `json:"source_location_id" validate:"required,uuid4"`
	DestinationLocationID string              `json:"destination_location_id" validate:"required,uuid4"`
	Items                 []BatchTransferItem `json:"items" validate:"required,min=1,max=100,dive"`
	Notes                 string              `json:"notes" validate:"max=500"`
	GroupPrefix           string              `json:"group_prefix" validate:"omitempty,max=80"`
}

// AdjustStockRequest body para POST /api/stock/adjustments (recepción, merma, corrección).
type AdjustStockRequest struct {
	EquipmentKey  string          `json:"equipment_key" validate:"required,min=1,max=200"`
	LocationID    string          `json:"location_id" validate:"required,uuid4"`
	Direction     string          `json:"direction" validate:"required,oneof=in out"`
	Quantity      int64           `json:"quantity" validate:"required,gt=0"`
	Reason        string          `json:"reason" validate:"required,max=500"`
	Name          string          `json:"name" validate:"max=200"`
	EquipmentType string          `json:"equipment_type" validate:"max=100"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	MinThreshold  int64           `json:"min_threshold" validate:"min=0"`
	MaxThreshold  int64           `json:"max_threshold" validate:"min=0"`
}

// UpdateStockMetadataRequest body para PATCH /api/stock/{equipmentKey}/{locationID}.
// Los campos omitidos no se tocan.
type UpdateStockMetadataRequest struct {
	MinThreshold *int64           `json:"min_threshold" validate:"omitempty,min=0"`
	MaxThreshold *int64           `json:"max_threshold" validate:"omitempty,min=0"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
}

// TransferResponse resultado de un traslado comprometido.
type TransferResponse struct {
	TransferGroupID string              `json:"transfer_group_id"`
	Duplicate       bool                `json:"duplicate,omitempty"`
	Source          StockRecordResponse `json:"source"`
	Destination     StockRecordResponse `json:"destination"`
	Movements       []MovementResponse  `json:"movements"`
}

// NewTransferResponse mapea el resultado del coordinador.
func NewTransferResponse(res *transfer.TransferResult) TransferResponse {
	return TransferResponse{
		TransferGroupID: res.TransferGroupID,
		Duplicate:       res.Duplicate,
		Source:          NewStockRecordResponse(&res.Source),
		Destination:     NewStockRecordResponse(&res.Destination),
		Movements: []MovementResponse{
			NewMovementResponse(res.OutEntry),
			NewMovementResponse(res.InEntry),
		},
	}
}

// BatchItemResponse resultado por ítem del lote: o result o error, nunca ambos.
type BatchItemResponse struct {
	EquipmentKey    string            `json:"equipment_key"`
	TransferGroupID string            `json:"transfer_group_id"`
	Result          *TransferResponse `json:"result,omitempty"`
	Error           *ErrorResponse    `json:"error,omitempty"`
}

// BatchTransferResponse reporte de éxito parcial de un lote.
type BatchTransferResponse struct {
	GroupPrefix string              `json:"group_prefix"`
	Succeeded   int                 `json:"succeeded"`
	Failed      int                 `json:"failed"`
	Items       []BatchItemResponse `json:"items"`
}

// AdjustStockResponse resultado de un ajuste comprometido.
type AdjustStockResponse struct {
	Record   StockRecordResponse `json:"record"`
	Movement MovementResponse    `json:"movement"`
}
