package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRecordRepository define el puerto de escritura del catálogo de stock por
// (equipo, ubicación). Las mutaciones usan concurrencia optimista: cada escritura
// está condicionada a la Version leída y falla con ErrConcurrentModification si
// otra transacción comprometió primero.
type StockRecordRepository interface {
	// Get devuelve el registro o nil si no existe.
	Get(ctx context.Context, equipmentKey, locationID string) (*entity.EquipmentStockRecord, error)

	// CreateIfAbsent crea el registro con cantidad 0 y Version 1 si no existe y lo
	// devuelve. Es idempotente: ante creadores concurrentes la constraint única de
	// (equipment_key, location_id) decide un ganador y el perdedor relee.
	CreateIfAbsent(ctx context.Context, equipmentKey, locationID string, seed entity.StockSeed) (*entity.EquipmentStockRecord, error)

	// CompareAndSwap fija la cantidad nueva solo si la Version del registro no cambió
	// desde la lectura; en éxito la base incrementa Version en 1.
	// Devuelve ErrConcurrentModification si la condición de versión no se cumple.
	CompareAndSwap(ctx context.Context, record *entity.EquipmentStockRecord, newQuantity int64) error

	// UpdateThresholds ajusta los umbrales min/max con chequeo de versión.
	// Los metadatos pueden divergir entre ubicaciones después de la creación.
	UpdateThresholds(ctx context.Context, record *entity.EquipmentStockRecord, minThreshold, maxThreshold int64) error

	// UpdateUnitCost ajusta el costo unitario local con chequeo de versión.
	UpdateUnitCost(ctx context.Context, record *entity.EquipmentStockRecord, unitCost decimal.Decimal) error
}
