package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockRecordFields = `equipment_key, location_id, name, equipment_type, quantity, unit_cost, min_threshold, max_threshold, version, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func (r *StockRecordRepo) scanRecord(row pgx.Row) (*entity.EquipmentStockRecord, error) {
	var rec entity.EquipmentStockRecord
	err := row.Scan(
		&rec.EquipmentKey, &rec.LocationID, &rec.Name, &rec.EquipmentType,
		&rec.Quantity, &rec.UnitCost, &rec.MinThreshold, &rec.MaxThreshold,
		&rec.Version, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get obtiene el registro de stock de un equipo en una ubicación; nil si no existe.
func (r *StockRecordRepo) Get(ctx context.Context, equipmentKey, locationID string) (*entity.EquipmentStockRecord, error) {
	query := `
		SELECT ` + stockRecordFields + `
		FROM equipment_stock WHERE equipment_key = $1 AND location_id = $2`
	rec, err := r.scanRecord(r.q.QueryRow(ctx, query, equipmentKey, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return rec, nil
}

// CreateIfAbsent crea el registro con cantidad 0 y versión 1 si no existe y lo devuelve.
// La constraint única de (equipment_key, location_id) decide entre creadores
// concurrentes; el perdedor simplemente relee el registro del ganador.
func (r *StockRecordRepo) CreateIfAbsent(ctx context.Context, equipmentKey, locationID string, seed entity.StockSeed) (*entity.EquipmentStockRecord, error) {
	query := `
		INSERT INTO equipment_stock (equipment_key, location_id, name, equipment_type, quantity, unit_cost, min_threshold, max_threshold, version, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7, 1, now())
		ON CONFLICT (equipment_key, location_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		equipmentKey, locationID, seed.Name, seed.EquipmentType,
		seed.UnitCost, seed.MinThreshold, seed.MaxThreshold,
	)
	if err != nil && !isUniqueViolation(err) {
		return nil, fmt.Errorf("create stock record: %w", err)
	}
	rec, err := r.Get(ctx, equipmentKey, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("create stock record: el registro no es visible tras insertarlo")
	}
	return rec, nil
}

// CompareAndSwap fija la cantidad solo si la versión no cambió desde la lectura.
// En éxito actualiza Quantity, Version y UpdatedAt del struct recibido; si la
// condición de versión falla devuelve ErrConcurrentModification sin mutar nada.
func (r *StockRecordRepo) CompareAndSwap(ctx context.Context, record *entity.EquipmentStockRecord, newQuantity int64) error {
	if newQuantity < 0 {
		return fmt.Errorf("%w: cantidad negativa %d", domain.ErrInvalidQuantity, newQuantity)
	}
	query := `
		UPDATE equipment_stock
		SET quantity = $1, version = version + 1, updated_at = now()
		WHERE equipment_key = $2 AND location_id = $3 AND version = $4
		RETURNING version, updated_at`
	err := r.q.QueryRow(ctx, query, newQuantity, record.EquipmentKey, record.LocationID, record.Version).
		Scan(&record.Version, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s en %s (versión %d)",
				domain.ErrConcurrentModification, record.EquipmentKey, record.LocationID, record.Version)
		}
		return fmt.Errorf("compare-and-swap stock: %w", err)
	}
	record.Quantity = newQuantity
	return nil
}

// UpdateThresholds ajusta los umbrales min/max con el mismo chequeo de versión.
func (r *StockRecordRepo) UpdateThresholds(ctx context.Context, record *entity.EquipmentStockRecord, minThreshold, maxThreshold int64) error {
	query := `
		UPDATE equipment_stock
		SET min_threshold = $1, max_threshold = $2, version = version + 1, updated_at = now()
		WHERE equipment_key = $3 AND location_id = $4 AND version = $5
		RETURNING version, updated_at`
	err := r.q.QueryRow(ctx, query, minThreshold, maxThreshold, record.EquipmentKey, record.LocationID, record.Version).
		Scan(&record.Version, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s en %s (versión %d)",
				domain.ErrConcurrentModification, record.EquipmentKey, record.LocationID, record.Version)
		}
		return fmt.Errorf("update thresholds: %w", err)
	}
	record.MinThreshold = minThreshold
	record.MaxThreshold = maxThreshold
	return nil
}

// UpdateUnitCost ajusta el costo unitario local con el mismo chequeo de versión.
func (r *StockRecordRepo) UpdateUnitCost(ctx context.Context, record *entity.EquipmentStockRecord, unitCost decimal.Decimal) error {
	query := `
		UPDATE equipment_stock
		SET unit_cost = $1, version = version + 1, updated_at = now()
		WHERE equipment_key = $2 AND location_id = $3 AND version = $4
		RETURNING version, updated_at`
	err := r.q.QueryRow(ctx, query, unitCost, record.EquipmentKey, record.LocationID, record.Version).
		Scan(&record.Version, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s en %s (versión %d)",
				domain.ErrConcurrentModification, record.EquipmentKey, record.LocationID, record.Version)
		}
		return fmt.Errorf("update unit cost: %w", err)
	}
	record.UnitCost = unitCost
	return nil
}
