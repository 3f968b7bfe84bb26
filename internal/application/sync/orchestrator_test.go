package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinoteca-hk/cellar-sync/internal/application/sync"
	"github.com/vinoteca-hk/cellar-sync/internal/domain"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/entity"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
	"github.com/vinoteca-hk/cellar-sync/internal/metrics"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de persistencia en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memItemRepo struct {
	items     map[int64]*entity.InventoryItem
	movements map[int64]entity.ItemMovement
	upserts   int
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{
		items:     map[int64]*entity.InventoryItem{},
		movements: map[int64]entity.ItemMovement{},
	}
}

func (r *memItemRepo) UpsertByExternalID(ctx context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	r.upserts++
	r.items[item.ExternalID] = item
	return item, nil
}

func (r *memItemRepo) GetByExternalID(ctx context.Context, id int64) (*entity.InventoryItem, error) {
	return r.items[id], nil
}

func (r *memItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.InventoryItem, int, error) {
	var out []*entity.InventoryItem
	for _, i := range r.items {
		out = append(out, i)
	}
	return out, len(out), nil
}

func (r *memItemRepo) ListExternalIDs(ctx context.Context, limit, offset int) ([]int64, error) {
	var all []int64
	for id := range r.items {
		all = append(all, id)
	}
	// Orden ascendente, como el repositorio real.
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j] < all[i] {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memItemRepo) SetMovement(ctx context.Context, id int64, m entity.ItemMovement) error {
	r.movements[id] = m
	if item, ok := r.items[id]; ok {
		item.Movement = m
	}
	return nil
}

type memOrderRepo struct {
	orders  map[int64]*entity.SalesOrder
	itemIDs []int64
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[int64]*entity.SalesOrder{}}
}

func (r *memOrderRepo) UpsertByExternalID(ctx context.Context, o *entity.SalesOrder) (*entity.SalesOrder, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	r.orders[o.ExternalID] = o
	return o, nil
}

func (r *memOrderRepo) GetByExternalID(ctx context.Context, id int64) (*entity.SalesOrder, error) {
	return r.orders[id], nil
}

func (r *memOrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.SalesOrder, int, error) {
	var out []*entity.SalesOrder
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (r *memOrderRepo) DistinctItemIDs(ctx context.Context) ([]int64, error) {
	return r.itemIDs, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del orquestador bajo test
// ──────────────────────────────────────────────────────────────────────────────

func newTestOrchestrator(t *testing.T, up *fakeUpstream, items *memItemRepo, orders *memOrderRepo) *sync.Orchestrator {
	t.Helper()
	fetcher := sync.NewFetcher(up, 50, logger.NewNop())
	return sync.NewOrchestrator(up, fetcher, items, orders, metrics.New(), sync.Options{
		PageSize:    100,
		ErrorLogDir: t.TempDir(),
	}, logger.NewNop())
}

func activeItem(sku string) sync.Payload {
	return sync.Payload{"itemId": sku, "isInactive": false}
}

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento de fallos por registro
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncItems_UnRegistroMaloNoAbortaLaCorrida(t *testing.T) {
	up := newFakeUpstream()
	var cands []sync.Candidate
	for id := int64(1); id <= 10; id++ {
		cands = append(cands, sync.Candidate{ID: id})
		up.addItem(id, activeItem("SKU"))
	}
	up.pages = []sync.Page{{Items: cands, HasMore: false, Total: 10}}
	up.recordErrs["inventoryitem/5"] = errors.New("HTTP 500: server error")

	items := newMemItemRepo()
	o := newTestOrchestrator(t, up, items, newMemOrderRepo())

	rep, err := o.SyncItems(context.Background(), 100, "")
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Processed)
	assert.Equal(t, 9, rep.Saved)
	assert.Equal(t, 1, rep.Failed)
	require.Len(t, rep.Errors, 1)
	assert.Equal(t, int64(5), rep.Errors[0].ID)
	// Los otros nueve quedaron almacenados.
	assert.Len(t, items.items, 9)
	assert.Nil(t, items.items[5])
}

func TestSyncItems_RepetirLaCorridaEsIdempotente(t *testing.T) {
	up := newFakeUpstream()
	up.pages = []sync.Page{
		{Items: []sync.Candidate{{ID: 7}}, HasMore: false, Total: 1},
		{Items: []sync.Candidate{{ID: 7}}, HasMore: false, Total: 1},
	}
	up.addItem(7, sync.Payload{
		"itemId":               "SKU-7",
		"displayName":          "Ch. Margaux 2015",
		"custitem_producer":    "Château Margaux",
		"custitem_wine_region": "Margaux",
		"isInactive":           false,
	})

	items := newMemItemRepo()
	o := newTestOrchestrator(t, up, items, newMemOrderRepo())

	_, err := o.SyncItems(context.Background(), 100, "")
	require.NoError(t, err)
	require.NotNil(t, items.items[7])
	primera := *items.items[7]

	rep, err := o.SyncItems(context.Background(), 100, "")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Saved)
	assert.Equal(t, 2, items.upserts, "cada corrida escribe, pero la segunda no cambia nada")
	require.Len(t, items.items, 1)

	// Con insumo idéntico, el documento almacenado queda idéntico al de una
	// sola aplicación; solo la marca de sincronización avanza.
	segunda := *items.items[7]
	primera.LastSynced, segunda.LastSynced = time.Time{}, time.Time{}
	assert.Equal(t, primera, segunda)
}

func TestSyncItems_InactivosSeSaltanSinGuardar(t *testing.T) {
	up := newFakeUpstream()
	up.pages = []sync.Page{{Items: []sync.Candidate{{ID: 1}, {ID: 2}}, HasMore: false, Total: 2}}
	up.addItem(1, activeItem("SKU-1"))
	up.addItem(2, sync.Payload{"itemId": "SKU-2", "isInactive": true})

	items := newMemItemRepo()
	o := newTestOrchestrator(t, up, items, newMemOrderRepo())

	rep, err := o.SyncItems(context.Background(), 100, "")
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Processed)
	assert.Equal(t, 1, rep.Saved)
	assert.Equal(t, 1, rep.Skipped)
	assert.Len(t, items.items, 1)
}

func TestSyncItems_PrevueloFallidoEsFatal(t *testing.T) {
	up := newFakeUpstream()
	up.probeErr = domain.ErrAuthFailed
	up.pages = []sync.Page{{Items: []sync.Candidate{{ID: 1}}, HasMore: false, Total: 1}}

	items := newMemItemRepo()
	o := newTestOrchestrator(t, up, items, newMemOrderRepo())

	rep, err := o.SyncItems(context.Background(), 100, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthFailed))
	assert.NotEmpty(t, rep.Fatal)
	// Nada se procesó ni se escribió.
	assert.Equal(t, 0, rep.Processed)
	assert.Empty(t, items.items)
}

func TestProbe_DistingueCredencialesDeRemotoCaido(t *testing.T) {
	up := newFakeUpstream()
	o := newTestOrchestrator(t, up, newMemItemRepo(), newMemOrderRepo())

	ok, err := o.Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	up.probeErr = domain.ErrAuthFailed
	ok, err = o.Probe(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	up.probeErr = errors.New("connection refused")
	_, err = o.Probe(context.Background())
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Barrido completo
// ──────────────────────────────────────────────────────────────────────────────

func TestSweepItems_RecorreVariasPaginas(t *testing.T) {
	up := newFakeUpstream()
	for id := int64(1); id <= 5; id++ {
		up.addItem(id, activeItem("SKU"))
	}
	up.pages = []sync.Page{
		{Items: []sync.Candidate{{ID: 1}, {ID: 2}}, HasMore: true, Total: 5},
		{Items: []sync.Candidate{{ID: 3}, {ID: 4}}, HasMore: true, Total: 5},
		{Items: []sync.Candidate{{ID: 5}}, HasMore: false, Total: 5},
	}

	items := newMemItemRepo()
	o := newTestOrchestrator(t, up, items, newMemOrderRepo())

	rep, err := o.SweepItems(context.Background(), sync.SweepOptions{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Processed)
	assert.Equal(t, 5, rep.Saved)
	assert.Len(t, items.items, 5)
}

func TestSweepItems_RespetaElTopeDeRegistros(t *testing.T) {
	up := newFakeUpstream()
	for id := int64(1); id <= 4; id++ {
		up.addItem(id, activeItem("SKU"))
	}
	up.pages = []sync.Page{
		{Items: []sync.Candidate{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, HasMore: false, Total: 4},
	}

	items := newMemItemRepo()
	o := newTestOrchestrator(t, up, items, newMemOrderRepo())

	rep, err := o.SweepItems(context.Background(), sync.SweepOptions{BatchSize: 100, MaxItems: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Processed)
	assert.Len(t, items.items, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes y artículos derivados de órdenes
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncOrders_GuardaYAcumulaTotales(t *testing.T) {
	up := newFakeUpstream()
	up.pages = []sync.Page{{Items: []sync.Candidate{{ID: 900}}, HasMore: false, Total: 1}}
	up.addOrder(900, sync.Payload{
		"tranId": "SO-0042",
		"entity": map[string]any{"id": float64(812), "refName": "C-0812 Golden Crown Trading"},
		"total":  float64(15300),
	})

	orders := newMemOrderRepo()
	o := newTestOrchestrator(t, up, newMemItemRepo(), orders)

	rep, err := o.SyncOrders(context.Background(), 100, "")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Saved)
	require.NotNil(t, orders.orders[900])
	assert.Equal(t, "Golden Crown Trading", orders.orders[900].Customer.Name)
	assert.Equal(t, "15300", rep.Totals.TotalAmount.String())
}

func TestSyncItemsFromOrders_SoloEntraInactiveExplicitamenteFalse(t *testing.T) {
	up := newFakeUpstream()
	up.addItem(1, activeItem("YA-EXISTE"))
	up.addItem(2, sync.Payload{"itemId": "NUEVO", "isInactive": false})
	up.addItem(3, sync.Payload{"itemId": "INACTIVO", "isInactive": true})
	up.addItem(4, sync.Payload{"itemId": "SIN-FLAG"}) // isInactive ausente

	items := newMemItemRepo()
	items.items[1] = &entity.InventoryItem{ExternalID: 1, SKU: "YA-EXISTE"}
	orders := newMemOrderRepo()
	orders.itemIDs = []int64{1, 2, 3, 4}

	o := newTestOrchestrator(t, up, items, orders)

	rep, err := o.SyncItemsFromOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Processed)
	// Solo el 2 entra: 1 ya existe, 3 es inactivo y 4 no declara el flag.
	assert.Equal(t, 1, rep.Saved)
	assert.Equal(t, 3, rep.Skipped)
	assert.NotNil(t, items.items[2])
	assert.Nil(t, items.items[3])
	assert.Nil(t, items.items[4])
}

// ──────────────────────────────────────────────────────────────────────────────
// Enriquecimiento de movimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestEnrichMovement_JoinConMovimientoExplicitoEnCero(t *testing.T) {
	up := newFakeUpstream()
	// El feed analítico solo devuelve filas para 1 y 3.
	up.rows = []sync.Payload{
		{"itemid": float64(1), "lastmove": "15/03/2024"},
		{"itemid": float64(3), "lastmove": "2/11/2023"},
	}

	items := newMemItemRepo()
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for id := int64(1); id <= 3; id++ {
		items.items[id] = &entity.InventoryItem{ExternalID: id, SKU: "SKU"}
	}
	// El 2 traía movimiento viejo: debe quedar explícitamente en cero.
	items.items[2].Movement = entity.ItemMovement{LastMovementDate: &past, MovedLast12Months: true}

	o := newTestOrchestrator(t, up, items, newMemOrderRepo())

	rep, err := o.EnrichMovement(context.Background(), sync.MovementOptions{BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Processed)
	assert.Equal(t, 3, rep.Saved)

	m1 := items.movements[1]
	require.NotNil(t, m1.LastMovementDate)
	assert.True(t, m1.MovedLast12Months)
	assert.Equal(t, time.March, m1.LastMovementDate.Month())

	m2 := items.movements[2]
	assert.Nil(t, m2.LastMovementDate)
	assert.False(t, m2.MovedLast12Months)

	m3 := items.movements[3]
	require.NotNil(t, m3.LastMovementDate)
	assert.Equal(t, time.November, m3.LastMovementDate.Month())
}

func TestEnrichMovement_ConsultaFallidaNoEscribeNada(t *testing.T) {
	up := newFakeUpstream()
	up.queryErr = errors.New("HTTP 500")

	items := newMemItemRepo()
	items.items[1] = &entity.InventoryItem{ExternalID: 1, SKU: "SKU"}

	o := newTestOrchestrator(t, up, items, newMemOrderRepo())

	rep, err := o.EnrichMovement(context.Background(), sync.MovementOptions{BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.Empty(t, items.movements)
}
