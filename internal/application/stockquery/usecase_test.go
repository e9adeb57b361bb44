package stockquery_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/stockquery"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de lectura
// ──────────────────────────────────────────────────────────────────────────────

type fakeStockReads struct {
	records map[string]*entity.EquipmentStockRecord // equipmentKey|locationID
}

func (r *fakeStockReads) Get(_ context.Context, equipmentKey, locationID string) (*entity.EquipmentStockRecord, error) {
	rec, ok := r.records[equipmentKey+"|"+locationID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeStockReads) CreateIfAbsent(_ context.Context, _, _ string, _ entity.StockSeed) (*entity.EquipmentStockRecord, error) {
	panic("no debería invocarse desde el servicio de consultas")
}

func (r *fakeStockReads) CompareAndSwap(_ context.Context, _ *entity.EquipmentStockRecord, _ int64) error {
	panic("no debería invocarse desde el servicio de consultas")
}

func (r *fakeStockReads) UpdateThresholds(_ context.Context, _ *entity.EquipmentStockRecord, _, _ int64) error {
	panic("no debería invocarse desde el servicio de consultas")
}

func (r *fakeStockReads) UpdateUnitCost(_ context.Context, _ *entity.EquipmentStockRecord, _ decimal.Decimal) error {
	panic("no debería invocarse desde el servicio de consultas")
}

type fakeViews struct {
	low          []*entity.EquipmentStockRecord
	distribution map[string]int64
	totalValue   decimal.Decimal
	byLocation   []*entity.EquipmentStockRecord

	lastLocationID string
	lastLimit      int
	lastOffset     int
}

func (v *fakeViews) ListLowStock(_ context.Context, locationID string) ([]*entity.EquipmentStockRecord, error) {
	v.lastLocationID = locationID
	return v.low, nil
}

func (v *fakeViews) Distribution(_ context.Context, _ string) (map[string]int64, error) {
	return v.distribution, nil
}

func (v *fakeViews) TotalValue(_ context.Context, locationID string) (decimal.Decimal, error) {
	v.lastLocationID = locationID
	return v.totalValue, nil
}

func (v *fakeViews) ListByLocation(_ context.Context, locationID string, limit, offset int) ([]*entity.EquipmentStockRecord, error) {
	v.lastLocationID, v.lastLimit, v.lastOffset = locationID, limit, offset
	return v.byLocation, nil
}

type fakeLedgerReads struct {
	entries    []*entity.MovementEntry
	lastFilter repository.MovementFilter
}

func (r *fakeLedgerReads) Append(_ context.Context, _ *entity.MovementEntry) error {
	panic("no debería invocarse desde el servicio de consultas")
}

func (r *fakeLedgerReads) List(_ context.Context, filter repository.MovementFilter) ([]*entity.MovementEntry, error) {
	r.lastFilter = filter
	return r.entries, nil
}

func (r *fakeLedgerReads) ListByGroup(_ context.Context, _ string) ([]*entity.MovementEntry, error) {
	return nil, nil
}

func newService(stocks *fakeStockReads, views *fakeViews, ledger *fakeLedgerReads) *stockquery.Service {
	if stocks == nil {
		stocks = &fakeStockReads{records: map[string]*entity.EquipmentStockRecord{}}
	}
	if views == nil {
		views = &fakeViews{}
	}
	if ledger == nil {
		ledger = &fakeLedgerReads{}
	}
	return stockquery.NewService(stocks, views, ledger)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestGetStock_Existente(t *testing.T) {
	rec := &entity.EquipmentStockRecord{
		EquipmentKey: "mezcladora-350l",
		LocationID:   "loc-1",
		Quantity:     7,
		Version:      3,
		UpdatedAt:    time.Now(),
	}
	svc := newService(&fakeStockReads{records: map[string]*entity.EquipmentStockRecord{
		"mezcladora-350l|loc-1": rec,
	}}, nil, nil)

	got, err := svc.GetStock(context.Background(), "mezcladora-350l", "loc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Quantity)
	assert.Equal(t, int64(3), got.Version)
}

func TestGetStock_Inexistente_RetornaNotFound(t *testing.T) {
	svc := newService(nil, nil, nil)

	_, err := svc.GetStock(context.Background(), "mezcladora-350l", "loc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStock_ParametrosVacios(t *testing.T) {
	svc := newService(nil, nil, nil)

	_, err := svc.GetStock(context.Background(), "", "loc-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.GetStock(context.Background(), "mezcladora-350l", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un registro ausente se lee como nivel cero, no como error: preguntar "cuántas
// hay" en una ubicación donde nunca hubo stock es una consulta válida.
func TestCurrentLevel_RegistroAusente_EsCero(t *testing.T) {
	svc := newService(nil, nil, nil)

	qty, err := svc.CurrentLevel(context.Background(), "mezcladora-350l", "loc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}

func TestDistribution_SumaEsElTotalGlobal(t *testing.T) {
	views := &fakeViews{distribution: map[string]int64{"loc-1": 6, "loc-2": 4, "loc-3": 0}}
	svc := newService(nil, views, nil)

	dist, err := svc.Distribution(context.Background(), "mezcladora-350l")
	require.NoError(t, err)

	var total int64
	for _, qty := range dist {
		total += qty
	}
	assert.Equal(t, int64(10), total)
}

func TestDistribution_EquipoVacio(t *testing.T) {
	svc := newService(nil, nil, nil)
	_, err := svc.Distribution(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTotalValue_DelegaLaUbicacion(t *testing.T) {
	views := &fakeViews{totalValue: decimal.NewFromInt(15400)}
	svc := newService(nil, views, nil)

	val, err := svc.TotalValue(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15400).Equal(val))
	assert.Equal(t, "loc-1", views.lastLocationID)
}

func TestListByLocation_AcotaElLimite(t *testing.T) {
	views := &fakeViews{}
	svc := newService(nil, views, nil)

	_, err := svc.ListByLocation(context.Background(), "loc-1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 50, views.lastLimit, "límite no positivo cae al default")
	assert.Equal(t, 10, views.lastOffset)

	_, err = svc.ListByLocation(context.Background(), "loc-1", 10000, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, views.lastLimit, "límite excesivo cae al default")
}

func TestRecentActivity_AcotaElFiltro(t *testing.T) {
	ledger := &fakeLedgerReads{}
	svc := newService(nil, nil, ledger)

	_, err := svc.RecentActivity(context.Background(), repository.MovementFilter{Limit: -1, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, 50, ledger.lastFilter.Limit)
	assert.Equal(t, 0, ledger.lastFilter.Offset)

	_, err = svc.RecentActivity(context.Background(), repository.MovementFilter{Limit: 120, EquipmentKey: "mezcladora-350l"})
	require.NoError(t, err)
	assert.Equal(t, 120, ledger.lastFilter.Limit, "límite dentro del rango se respeta")
	assert.Equal(t, "mezcladora-350l", ledger.lastFilter.EquipmentKey)
}
