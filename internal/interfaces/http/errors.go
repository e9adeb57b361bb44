package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// errorResponse mapea errores de dominio a status y código HTTP. Los errores de
// precondición llevan el detalle del dominio para que la UI pueda renderizar un
// mensaje específico ("solo 3 unidades disponibles en ...").
func errorResponse(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: insufficient.Error()})
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()})
	case errors.Is(err, domain.ErrSameLocation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SAME_LOCATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrSourceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "SOURCE_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConcurrentModification):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicateTransfer):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_TRANSFER", Message: err.Error()})
	case errors.Is(err, domain.ErrStorageUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: "almacenamiento no disponible, reintente"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// batchItemError arma el cuerpo de error por ítem en respuestas de lote.
func batchItemError(err error) *dto.ErrorResponse {
	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return &dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: insufficient.Error()}
	case errors.Is(err, domain.ErrSourceNotFound):
		return &dto.ErrorResponse{Code: "SOURCE_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrConcurrentModification):
		return &dto.ErrorResponse{Code: "CONCURRENT_MODIFICATION", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicateTransfer):
		return &dto.ErrorResponse{Code: "DUPLICATE_TRANSFER", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidQuantity):
		return &dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: err.Error()}
	default:
		return &dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	}
}
