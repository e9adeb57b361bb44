package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockViewRepository define el puerto de lectura del catálogo: vistas derivadas
// que no mutan estado. Cada vista se resuelve en una sola consulta SQL para no
// mezclar valores pre y post traslado dentro de la misma lectura.
type StockViewRepository interface {
	// ListLowStock devuelve registros con cantidad <= umbral mínimo (umbral configurado).
	// locationID vacío = todas las ubicaciones. Ordena por déficit descendente.
	ListLowStock(ctx context.Context, locationID string) ([]*entity.EquipmentStockRecord, error)

	// Distribution devuelve cantidad por ubicación para un equipo.
	Distribution(ctx context.Context, equipmentKey string) (map[string]int64, error)

	// TotalValue devuelve sum(cantidad * costo unitario); locationID vacío = global.
	TotalValue(ctx context.Context, locationID string) (decimal.Decimal, error)

	// ListByLocation lista los registros de una ubicación con paginación.
	ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.EquipmentStockRecord, error)
}
