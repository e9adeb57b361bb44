package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/stockquery"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/xuri/excelize/v2"
)

// MovementHandler maneja las consultas del libro de movimientos (solo lectura).
type MovementHandler struct {
	queries *stockquery.Service
}

// NewMovementHandler construye el handler.
func NewMovementHandler(queries *stockquery.Service) *MovementHandler {
	return &MovementHandler{queries: queries}
}

func movementFilterFromQuery(c *fiber.Ctx) (repository.MovementFilter, error) {
	filter := repository.MovementFilter{
		EquipmentKey:    c.Query("equipment_key"),
		LocationID:      c.Query("location_id"),
		TransferGroupID: c.Query("transfer_group_id"),
		Limit:           c.QueryInt("limit"),
		Offset:          c.QueryInt("offset"),
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return filter, fmt.Errorf("since debe ser RFC3339: %w", err)
		}
		filter.Since = &t
	}
	return filter, nil
}

// List godoc
// @Summary      Feed de movimientos (más reciente primero)
// @Tags         movements
// @Produce      json
// @Param        equipment_key      query  string  false  "Filtrar por equipo"
// @Param        location_id        query  string  false  "Filtrar por ubicación"
// @Param        transfer_group_id  query  string  false  "Filtrar por grupo de traslado"
// @Param        since              query  string  false  "Desde (RFC3339)"
// @Param        limit              query  int     false  "Límite"  default(50)
// @Param        offset             query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter, err := movementFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}
	entries, err := h.queries.RecentActivity(c.Context(), filter)
	if err != nil {
		return errorResponse(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewMovementResponse(e))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset}})
}

// Export godoc
// @Summary      Exportar movimientos a Excel
// @Tags         movements
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        equipment_key      query  string  false  "Filtrar por equipo"
// @Param        location_id        query  string  false  "Filtrar por ubicación"
// @Param        transfer_group_id  query  string  false  "Filtrar por grupo de traslado"
// @Param        since              query  string  false  "Desde (RFC3339)"
// @Param        limit              query  int     false  "Límite"  default(50)
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements/export [get]
func (h *MovementHandler) Export(c *fiber.Ctx) error {
	filter, err := movementFilterFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: err.Error()})
	}
	entries, err := h.queries.RecentActivity(c.Context(), filter)
	if err != nil {
		return errorResponse(c, err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	headers := []string{"Fecha", "Equipo", "Ubicación", "Dirección", "Cantidad",
		"Stock anterior", "Stock nuevo", "Razón", "Contraparte", "Actor", "Grupo"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for row, e := range entries {
		values := []any{
			e.CreatedAt.Format(time.RFC3339),
			e.EquipmentKey,
			e.LocationID,
			directionLabel(e.Direction),
			e.Quantity,
			e.PreviousQuantity,
			e.NewQuantity,
			e.Reason,
			e.CounterpartyLocationID,
			e.Actor,
			e.TransferGroupID,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 22)
	_ = f.SetColWidth(sheet, "B", "C", 28)
	_ = f.SetColWidth(sheet, "H", "K", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "EXPORT", Message: "no se pudo generar el archivo"})
	}
	filename := fmt.Sprintf("movimientos_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

func directionLabel(direction string) string {
	if direction == entity.DirectionIn {
		return "entrada"
	}
	return "salida"
}
