package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/transfer"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// TransferHandler maneja las peticiones HTTP de traslados y ajustes de stock.
type TransferHandler struct {
	coordinator *transfer.Coordinator
}

// NewTransferHandler construye el handler.
func NewTransferHandler(coordinator *transfer.Coordinator) *TransferHandler {
	return &TransferHandler{coordinator: coordinator}
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Debita el origen, acredita el destino y escribe los dos asientos
//
//	del libro como una sola unidad atómica. transfer_group_id opcional
//	actúa como clave de idempotencia contra reenvíos.
//
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  true  "Quién inicia el traslado"
// @Param        body  body  dto.TransferRequest  true  "origen, destino, equipo, cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if !parseBody(c, &in) {
		return nil
	}
	res, err := h.coordinator.Transfer(c.Context(), transfer.TransferInput{
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		EquipmentKey:          in.EquipmentKey,
		Quantity:              in.Quantity,
		Actor:                 GetActor(c),
		Notes:                 in.Notes,
		TransferGroupID:       in.TransferGroupID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	status := fiber.StatusCreated
	if res.Duplicate {
		// Reenvío del mismo grupo: se devuelve el resultado original sin reaplicar.
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.NewTransferResponse(res))
}

// TransferBatch godoc
// @Summary      Trasladar varios equipos entre el mismo par de ubicaciones
// @Description  Cada ítem es un traslado independiente; la respuesta reporta
//
//	exactamente cuáles quedaron comprometidos y cuáles fallaron.
//
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  true  "Quién inicia el traslado"
// @Param        body  body  dto.BatchTransferRequest  true  "origen, destino, ítems"
// @Success      207   {object}  dto.BatchTransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers/batch [post]
func (h *TransferHandler) TransferBatch(c *fiber.Ctx) error {
	var in dto.BatchTransferRequest
	if !parseBody(c, &in) {
		return nil
	}
	items := make([]transfer.BatchItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, transfer.BatchItem{EquipmentKey: it.EquipmentKey, Quantity: it.Quantity})
	}
	res, err := h.coordinator.TransferBatch(c.Context(), transfer.BatchInput{
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		Items:                 items,
		Actor:                 GetActor(c),
		Notes:                 in.Notes,
		GroupPrefix:           in.GroupPrefix,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	out := dto.BatchTransferResponse{
		GroupPrefix: res.GroupPrefix,
		Succeeded:   res.Succeeded,
		Failed:      res.Failed,
		Items:       make([]dto.BatchItemResponse, 0, len(res.Items)),
	}
	for _, item := range res.Items {
		ir := dto.BatchItemResponse{EquipmentKey: item.EquipmentKey, TransferGroupID: item.TransferGroupID}
		if item.Err != nil {
			ir.Error = batchItemError(item.Err)
		} else {
			tr := dto.NewTransferResponse(item.Result)
			ir.Result = &tr
		}
		out.Items = append(out.Items, ir)
	}
	status := fiber.StatusCreated
	if res.Failed > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(out)
}

// Adjust godoc
// @Summary      Ajustar stock en una ubicación (recepción, merma, corrección)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id  header  string  true  "Quién inicia el ajuste"
// @Param        body  body  dto.AdjustStockRequest  true  "equipo, ubicación, dirección, cantidad, razón"
// @Success      201   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *TransferHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if !parseBody(c, &in) {
		return nil
	}
	var seed *entity.StockSeed
	if in.Direction == entity.DirectionIn {
		seed = &entity.StockSeed{
			Name:          in.Name,
			EquipmentType: in.EquipmentType,
			UnitCost:      in.UnitCost,
			MinThreshold:  in.MinThreshold,
			MaxThreshold:  in.MaxThreshold,
		}
	}
	res, err := h.coordinator.Adjust(c.Context(), transfer.AdjustInput{
		EquipmentKey: in.EquipmentKey,
		LocationID:   in.LocationID,
		Direction:    in.Direction,
		Quantity:     in.Quantity,
		Reason:       in.Reason,
		Actor:        GetActor(c),
		Seed:         seed,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustStockResponse{
		Record:   dto.NewStockRecordResponse(&res.Record),
		Movement: dto.NewMovementResponse(res.Entry),
	})
}

// UpdateMetadata godoc
// @Summary      Ajustar umbrales y costo unitario locales de un registro
// @Description  Los metadatos pueden divergir deliberadamente entre ubicaciones
//
//	después de la creación; la cantidad no se toca y no se escribe
//	en el libro.
//
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        X-Actor-Id    header  string  true  "Quién hace el cambio"
// @Param        equipmentKey  path    string  true  "Clave del equipo"
// @Param        locationID    path    string  true  "ID de la ubicación"
// @Param        body  body  dto.UpdateStockMetadataRequest  true  "umbrales y/o costo"
// @Success      200   {object}  dto.StockRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/{equipmentKey}/{locationID} [patch]
func (h *TransferHandler) UpdateMetadata(c *fiber.Ctx) error {
	var in dto.UpdateStockMetadataRequest
	if !parseBody(c, &in) {
		return nil
	}
	record, err := h.coordinator.UpdateMetadata(c.Context(), transfer.MetadataInput{
		EquipmentKey: c.Params("equipmentKey"),
		LocationID:   c.Params("locationID"),
		MinThreshold: in.MinThreshold,
		MaxThreshold: in.MaxThreshold,
		UnitCost:     in.UnitCost,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(record))
}
