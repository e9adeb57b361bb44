package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockViewRepository = (*StockViewRepo)(nil)

// StockViewRepo vistas de solo lectura sobre equipment_stock. Cada vista es una
// sola consulta SQL, así el resultado es un snapshot consistente.
type StockViewRepo struct {
	q Querier
}

// NewStockViewRepository construye el adaptador de lectura. Pasar pool o tx (Querier).
func NewStockViewRepository(q Querier) *StockViewRepo {
	return &StockViewRepo{q: q}
}

// ListLowStock devuelve los registros con cantidad <= umbral mínimo configurado,
// ordenados por déficit descendente (mayor quiebre primero).
func (r *StockViewRepo) ListLowStock(ctx context.Context, locationID string) ([]*entity.EquipmentStockRecord, error) {
	query := `
		SELECT ` + stockRecordFields + `
		FROM equipment_stock
		WHERE min_threshold > 0 AND quantity <= min_threshold`
	var args []any
	if locationID != "" {
		query += " AND location_id = $1"
		args = append(args, locationID)
	}
	query += " ORDER BY (min_threshold - quantity) DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return scanStockRecords(rows)
}

// Distribution devuelve la cantidad por ubicación para un equipo.
func (r *StockViewRepo) Distribution(ctx context.Context, equipmentKey string) (map[string]int64, error) {
	query := `
		SELECT location_id, quantity
		FROM equipment_stock WHERE equipment_key = $1`
	rows, err := r.q.Query(ctx, query, equipmentKey)
	if err != nil {
		return nil, fmt.Errorf("stock distribution: %w", err)
	}
	defer rows.Close()
	dist := make(map[string]int64)
	for rows.Next() {
		var locationID string
		var quantity int64
		if err := rows.Scan(&locationID, &quantity); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		dist[locationID] = quantity
	}
	return dist, rows.Err()
}

// TotalValue devuelve sum(cantidad * costo unitario); locationID vacío = global.
func (r *StockViewRepo) TotalValue(ctx context.Context, locationID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity * unit_cost), 0) FROM equipment_stock`
	var args []any
	if locationID != "" {
		query += " WHERE location_id = $1"
		args = append(args, locationID)
	}
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("total stock value: %w", err)
	}
	return total, nil
}

// ListByLocation lista los registros de una ubicación con paginación.
func (r *StockViewRepo) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.EquipmentStockRecord, error) {
	query := `
		SELECT ` + stockRecordFields + `
		FROM equipment_stock WHERE location_id = $1
		ORDER BY equipment_key ASC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, locationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock by location: %w", err)
	}
	defer rows.Close()
	return scanStockRecords(rows)
}

func scanStockRecords(rows pgx.Rows) ([]*entity.EquipmentStockRecord, error) {
	var list []*entity.EquipmentStockRecord
	for rows.Next() {
		var rec entity.EquipmentStockRecord
		if err := rows.Scan(&rec.EquipmentKey, &rec.LocationID, &rec.Name, &rec.EquipmentType,
			&rec.Quantity, &rec.UnitCost, &rec.MinThreshold, &rec.MaxThreshold,
			&rec.Version, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
