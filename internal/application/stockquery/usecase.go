package stockquery

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Límites de paginación del feed de movimientos.
const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200
)

// Service responde vistas derivadas de solo lectura sobre el catálogo y el libro
// de movimientos. No produce mutaciones. Cada vista se resuelve en una sola
// consulta, así una lectura nunca mezcla estado pre y post traslado.
type Service struct {
	stockRepo  repository.StockRecordRepository
	viewRepo   repository.StockViewRepository
	ledgerRepo repository.MovementLedgerRepository
}

// NewService construye el servicio de consultas.
func NewService(
	stockRepo repository.StockRecordRepository,
	viewRepo repository.StockViewRepository,
	ledgerRepo repository.MovementLedgerRepository,
) *Service {
	return &Service{
		stockRepo:  stockRepo,
		viewRepo:   viewRepo,
		ledgerRepo: ledgerRepo,
	}
}

// GetStock devuelve el registro de stock o ErrNotFound si no existe.
func (s *Service) GetStock(ctx context.Context, equipmentKey, locationID string) (*entity.EquipmentStockRecord, error) {
	if equipmentKey == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	record, err := s.stockRepo.Get(ctx, equipmentKey, locationID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s en %s", domain.ErrNotFound, equipmentKey, locationID)
	}
	return record, nil
}

// CurrentLevel devuelve la cantidad actual; 0 si el registro no existe.
func (s *Service) CurrentLevel(ctx context.Context, equipmentKey, locationID string) (int64, error) {
	record, err := s.stockRepo.Get(ctx, equipmentKey, locationID)
	if err != nil {
		return 0, err
	}
	if record == nil {
		return 0, nil
	}
	return record.Quantity, nil
}

// LowStockItems devuelve los registros en o bajo su umbral mínimo.
// locationID vacío considera todas las ubicaciones.
func (s *Service) LowStockItems(ctx context.Context, locationID string) ([]*entity.EquipmentStockRecord, error) {
	return s.viewRepo.ListLowStock(ctx, locationID)
}

// Distribution devuelve la cantidad por ubicación para un equipo. La suma de los
// valores es el total global del equipo (invariante de conservación).
func (s *Service) Distribution(ctx context.Context, equipmentKey string) (map[string]int64, error) {
	if equipmentKey == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.viewRepo.Distribution(ctx, equipmentKey)
}

// TotalValue devuelve sum(cantidad * costo unitario); locationID vacío = global.
func (s *Service) TotalValue(ctx context.Context, locationID string) (decimal.Decimal, error) {
	return s.viewRepo.TotalValue(ctx, locationID)
}

// ListByLocation lista los registros de una ubicación con paginación.
func (s *Service) ListByLocation(ctx context.Context, locationID string, limit, offset int) ([]*entity.EquipmentStockRecord, error) {
	if locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > maxFeedLimit {
		limit = defaultFeedLimit
	}
	return s.viewRepo.ListByLocation(ctx, locationID, limit, offset)
}

// RecentActivity devuelve el feed de movimientos, del más reciente al más
// antiguo, acotando el límite de página.
func (s *Service) RecentActivity(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementEntry, error) {
	if filter.Limit <= 0 || filter.Limit > maxFeedLimit {
		filter.Limit = defaultFeedLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.ledgerRepo.List(ctx, filter)
}
