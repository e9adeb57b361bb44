package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/stockquery"
	"github.com/jhoicas/almacen-api/internal/application/transfer"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testLocOrigen  = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	testLocDestino = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	testEquipo     = "compresor-portatil-50l"
	testActorID    = "bodeguero@almacen.test"
)

type memStocks struct {
	records map[string]*entity.EquipmentStockRecord
	entries []*entity.MovementEntry
}

func key(equipmentKey, locationID string) string { return equipmentKey + "|" + locationID }

func (m *memStocks) Get(_ context.Context, equipmentKey, locationID string) (*entity.EquipmentStockRecord, error) {
	rec, ok := m.records[key(equipmentKey, locationID)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memStocks) CreateIfAbsent(_ context.Context, equipmentKey, locationID string, seed entity.StockSeed) (*entity.EquipmentStockRecord, error) {
	k := key(equipmentKey, locationID)
	if rec, ok := m.records[k]; ok {
		cp := *rec
		return &cp, nil
	}
	rec := &entity.EquipmentStockRecord{
		EquipmentKey:  equipmentKey,
		LocationID:    locationID,
		Name:          seed.Name,
		EquipmentType: seed.EquipmentType,
		UnitCost:      seed.UnitCost,
		MinThreshold:  seed.MinThreshold,
		MaxThreshold:  seed.MaxThreshold,
		Version:       1,
		UpdatedAt:     time.Now(),
	}
	m.records[k] = rec
	cp := *rec
	return &cp, nil
}

func (m *memStocks) CompareAndSwap(_ context.Context, record *entity.EquipmentStockRecord, newQuantity int64) error {
	stored := m.records[key(record.EquipmentKey, record.LocationID)]
	if stored == nil || stored.Version != record.Version {
		return domain.ErrConcurrentModification
	}
	stored.Quantity = newQuantity
	stored.Version++
	record.Quantity, record.Version = stored.Quantity, stored.Version
	return nil
}

func (m *memStocks) UpdateThresholds(_ context.Context, record *entity.EquipmentStockRecord, minT, maxT int64) error {
	stored := m.records[key(record.EquipmentKey, record.LocationID)]
	if stored == nil || stored.Version != record.Version {
		return domain.ErrConcurrentModification
	}
	stored.MinThreshold, stored.MaxThreshold = minT, maxT
	stored.Version++
	return nil
}

func (m *memStocks) UpdateUnitCost(_ context.Context, record *entity.EquipmentStockRecord, cost decimal.Decimal) error {
	stored := m.records[key(record.EquipmentKey, record.LocationID)]
	if stored == nil || stored.Version != record.Version {
		return domain.ErrConcurrentModification
	}
	stored.UnitCost = cost
	stored.Version++
	return nil
}

func (m *memStocks) Append(_ context.Context, entry *entity.MovementEntry) error {
	// Mismo contrato que el índice único del esquema: un asiento por grupo y
	// dirección.
	for _, e := range m.entries {
		if e.TransferGroupID == entry.TransferGroupID && e.Direction == entry.Direction {
			return fmt.Errorf("%w: el grupo %s ya tiene un asiento %s", domain.ErrDuplicateTransfer, entry.TransferGroupID, entry.Direction)
		}
	}
	if entry.ID == "" {
		entry.ID = time.Now().Format("20060102150405.000000000")
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memStocks) List(_ context.Context, filter repository.MovementFilter) ([]*entity.MovementEntry, error) {
	var out []*entity.MovementEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if filter.EquipmentKey != "" && e.EquipmentKey != filter.EquipmentKey {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memStocks) ListByGroup(_ context.Context, groupID string) ([]*entity.MovementEntry, error) {
	var out []*entity.MovementEntry
	for _, e := range m.entries {
		if e.TransferGroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Run satisface transfer.TxRunner. Los tests de atomicidad viven en el paquete
// transfer; aquí solo interesa el contrato HTTP, así que no hay rollback.
func (m *memStocks) Run(_ context.Context, fn func(
	stockRepo repository.StockRecordRepository,
	ledgerRepo repository.MovementLedgerRepository,
) error) error {
	return fn(m, m)
}

func (m *memStocks) ListLowStock(_ context.Context, locationID string) ([]*entity.EquipmentStockRecord, error) {
	var out []*entity.EquipmentStockRecord
	for _, rec := range m.records {
		if locationID != "" && rec.LocationID != locationID {
			continue
		}
		if rec.LowStock() {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStocks) Distribution(_ context.Context, equipmentKey string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, rec := range m.records {
		if rec.EquipmentKey == equipmentKey {
			out[rec.LocationID] = rec.Quantity
		}
	}
	return out, nil
}

func (m *memStocks) TotalValue(_ context.Context, locationID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, rec := range m.records {
		if locationID != "" && rec.LocationID != locationID {
			continue
		}
		total = total.Add(rec.UnitCost.Mul(decimal.NewFromInt(rec.Quantity)))
	}
	return total, nil
}

func (m *memStocks) ListByLocation(_ context.Context, locationID string, _, _ int) ([]*entity.EquipmentStockRecord, error) {
	var out []*entity.EquipmentStockRecord
	for _, rec := range m.records {
		if rec.LocationID == locationID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memLocations struct {
	locations map[string]*entity.Location
}

func (m *memLocations) Create(_ context.Context, loc *entity.Location) error {
	m.locations[loc.ID] = loc
	return nil
}

func (m *memLocations) GetByID(_ context.Context, id string) (*entity.Location, error) {
	return m.locations[id], nil
}

func (m *memLocations) List(_ context.Context, _, _ int) ([]*entity.Location, error) {
	out := make([]*entity.Location, 0, len(m.locations))
	for _, l := range m.locations {
		out = append(out, l)
	}
	return out, nil
}

// buildTestApp levanta la API completa (router real, casos de uso reales) sobre
// almacenamiento en memoria, con dos ubicaciones y stock inicial en el origen.
func buildTestApp(t *testing.T) (*fiber.App, *memStocks) {
	t.Helper()

	store := &memStocks{records: make(map[string]*entity.EquipmentStockRecord)}
	store.records[key(testEquipo, testLocOrigen)] = &entity.EquipmentStockRecord{
		EquipmentKey:  testEquipo,
		LocationID:    testLocOrigen,
		Name:          "Compresor portátil 50L",
		EquipmentType: "neumatica",
		UnitCost:      decimal.NewFromInt(890),
		Quantity:      10,
		Version:       1,
		UpdatedAt:     time.Now(),
	}
	locations := &memLocations{locations: map[string]*entity.Location{
		testLocOrigen:  {ID: testLocOrigen, Name: "Bodega Central"},
		testLocDestino: {ID: testLocDestino, Name: "Sucursal Sur"},
	}}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Coordinator:  transfer.NewCoordinator(store, locations, store),
		Queries:      stockquery.NewService(store, store, store),
		LocationRepo: locations,
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, actor string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(apphttp.HeaderActorID, actor)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func transferBody(quantity int64) map[string]any {
	return map[string]any{
		"source_location_id":      testLocOrigen,
		"destination_location_id": testLocDestino,
		"equipment_key":           testEquipo,
		"quantity":                quantity,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/transfers
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: traslado válido → 201 con ambos registros y los dos asientos.
func TestTransfer_OK_Retorna201(t *testing.T) {
	app, store := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers", transferBody(4), testActorID)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)

	assert.NotEmpty(t, body["transfer_group_id"])
	source := body["source"].(map[string]any)
	destination := body["destination"].(map[string]any)
	assert.Equal(t, float64(6), source["quantity"], "el origen queda debitado")
	assert.Equal(t, float64(4), destination["quantity"], "el destino queda acreditado")
	movements := body["movements"].([]any)
	assert.Len(t, movements, 2)

	// El actor del header queda en ambos asientos del libro.
	require.Len(t, store.entries, 2)
	assert.Equal(t, testActorID, store.entries[0].Actor)
	assert.Equal(t, testActorID, store.entries[1].Actor)
}

// Caso 2: sin header X-Actor-Id → 401, y nada se muta.
func TestTransfer_SinActor_Retorna401(t *testing.T) {
	app, store := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers", transferBody(4), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "MISSING_ACTOR", body["code"])
	assert.Equal(t, int64(10), store.records[key(testEquipo, testLocOrigen)].Quantity)
}

// Caso 3: cantidad no positiva no pasa la validación del body → 400.
func TestTransfer_CantidadCero_Retorna400(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers", transferBody(0), testActorID)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "VALIDATION", body["code"])
}

// Caso 4: stock insuficiente → 409 con el detalle renderizable.
func TestTransfer_StockInsuficiente_Retorna409(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers", transferBody(50), testActorID)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Contains(t, body["message"], "10", "el mensaje debe indicar lo disponible")
}

// Caso 5: reenvío del mismo transfer_group_id → 200 (no 201) marcado duplicate,
// sin aplicar el traslado dos veces.
func TestTransfer_Reenvio_Retorna200Duplicado(t *testing.T) {
	app, store := buildTestApp(t)

	body := transferBody(4)
	body["transfer_group_id"] = "traslado-sucursal-sur-7"

	resp := doJSON(t, app, http.MethodPost, "/api/transfers", body, testActorID)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/transfers", body, testActorID)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeBody(t, resp)
	assert.Equal(t, true, out["duplicate"])
	assert.Equal(t, int64(6), store.records[key(testEquipo, testLocOrigen)].Quantity,
		"el débito no se aplica dos veces")
	assert.Len(t, store.entries, 2)
}

// Caso 6: origen inexistente → 404.
func TestTransfer_OrigenSinRegistro_Retorna404(t *testing.T) {
	app, _ := buildTestApp(t)

	body := transferBody(1)
	body["equipment_key"] = "equipo-que-no-existe"
	resp := doJSON(t, app, http.MethodPost, "/api/transfers", body, testActorID)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	out := decodeBody(t, resp)
	assert.Equal(t, "SOURCE_NOT_FOUND", out["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/transfers/batch
// ──────────────────────────────────────────────────────────────────────────────

// Caso 7: lote con un ítem viable y uno sin stock → 207 Multi-Status con el
// detalle por ítem.
func TestTransferBatch_ExitoParcial_Retorna207(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers/batch", map[string]any{
		"source_location_id":      testLocOrigen,
		"destination_location_id": testLocDestino,
		"items": []map[string]any{
			{"equipment_key": testEquipo, "quantity": 3},
			{"equipment_key": testEquipo, "quantity": 500},
		},
	}, testActorID)
	defer resp.Body.Close()

	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["succeeded"])
	assert.Equal(t, float64(1), body["failed"])

	items := body["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	second := items[1].(map[string]any)
	assert.NotNil(t, first["result"])
	assert.Nil(t, first["error"])
	assert.Nil(t, second["result"])
	errBody := second["error"].(map[string]any)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody["code"])
}

// Caso 8: todos los ítems viables → 201.
func TestTransferBatch_TodoOK_Retorna201(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers/batch", map[string]any{
		"source_location_id":      testLocOrigen,
		"destination_location_id": testLocDestino,
		"items": []map[string]any{
			{"equipment_key": testEquipo, "quantity": 2},
			{"equipment_key": testEquipo, "quantity": 3},
		},
	}, testActorID)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/stock/adjustments y lecturas
// ──────────────────────────────────────────────────────────────────────────────

// Caso 9: ajuste de entrada crea el registro → 201 con el asiento.
func TestAdjust_Entrada_Retorna201(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/adjustments", map[string]any{
		"equipment_key": "soldadora-inverter",
		"location_id":   testLocDestino,
		"direction":     "in",
		"quantity":      5,
		"reason":        "recepción de compra",
		"name":          "Soldadora inverter 200A",
	}, testActorID)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	record := body["record"].(map[string]any)
	movement := body["movement"].(map[string]any)
	assert.Equal(t, float64(5), record["quantity"])
	assert.Equal(t, "in", movement["direction"])
	assert.Equal(t, "recepción de compra", movement["reason"])
}

// Caso 10: la consulta de stock refleja el traslado comprometido.
func TestGetStock_DespuesDeTraslado(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers", transferBody(4), testActorID)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/"+testEquipo+"/"+testLocDestino, nil, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(4), body["quantity"])
}

// Caso 11: stock inexistente → 404 NOT_FOUND.
func TestGetStock_Inexistente_Retorna404(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/"+testEquipo+"/"+testLocDestino, nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

// Caso 12: la distribución suma el total global tras un traslado.
func TestDistribution_TrasTraslado(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/transfers", transferBody(4), testActorID)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/"+testEquipo+"/distribution", nil, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(10), body["total"], "el total global se conserva")
	locations := body["locations"].(map[string]any)
	assert.Equal(t, float64(6), locations[testLocOrigen])
	assert.Equal(t, float64(4), locations[testLocDestino])
}
