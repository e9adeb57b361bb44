package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/stockquery"
)

// StockHandler maneja las consultas de stock (solo lectura).
type StockHandler struct {
	queries *stockquery.Service
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *stockquery.Service) *StockHandler {
	return &StockHandler{queries: queries}
}

// GetStock godoc
// @Summary      Registro de stock de un equipo en una ubicación
// @Tags         stock
// @Produce      json
// @Param        equipmentKey  path  string  true  "Clave del equipo"
// @Param        locationID    path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{equipmentKey}/{locationID} [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	record, err := h.queries.GetStock(c.Context(), c.Params("equipmentKey"), c.Params("locationID"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(record))
}

// ListLowStock godoc
// @Summary      Equipos en o bajo su umbral mínimo
// @Tags         stock
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación. Vacío = todas."
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) ListLowStock(c *fiber.Ctx) error {
	records, err := h.queries.LowStockItems(c.Context(), c.Query("location_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	items := make([]dto.StockRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, dto.NewStockRecordResponse(r))
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// Distribution godoc
// @Summary      Distribución de un equipo por ubicación
// @Description  La suma de las cantidades es el total global del equipo; un
//
//	traslado nunca la altera (invariante de conservación).
//
// @Tags         stock
// @Produce      json
// @Param        equipmentKey  path  string  true  "Clave del equipo"
// @Success      200  {object}  dto.DistributionResponse
// @Router       /api/stock/{equipmentKey}/distribution [get]
func (h *StockHandler) Distribution(c *fiber.Ctx) error {
	equipmentKey := c.Params("equipmentKey")
	dist, err := h.queries.Distribution(c.Context(), equipmentKey)
	if err != nil {
		return errorResponse(c, err)
	}
	var total int64
	for _, qty := range dist {
		total += qty
	}
	return c.JSON(dto.DistributionResponse{EquipmentKey: equipmentKey, Locations: dist, Total: total})
}

// TotalValue godoc
// @Summary      Valor total del stock (cantidad * costo unitario)
// @Tags         stock
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación. Vacío = global."
// @Success      200  {object}  dto.TotalValueResponse
// @Router       /api/stock/value [get]
func (h *StockHandler) TotalValue(c *fiber.Ctx) error {
	locationID := c.Query("location_id")
	total, err := h.queries.TotalValue(c.Context(), locationID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.TotalValueResponse{LocationID: locationID, TotalValue: total})
}

// ListByLocation godoc
// @Summary      Stock de una ubicación
// @Tags         stock
// @Produce      json
// @Param        locationID  path   string  true   "ID de la ubicación"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/locations/{locationID}/stock [get]
func (h *StockHandler) ListByLocation(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	records, err := h.queries.ListByLocation(c.Context(), c.Params("locationID"), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	items := make([]dto.StockRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, dto.NewStockRecordResponse(r))
	}
	return c.JSON(dto.StockListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}
