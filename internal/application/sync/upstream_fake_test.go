package sync_test

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/vinoteca-hk/cellar-sync/internal/application/sync"
)

// fakeUpstream doble de test del puerto Upstream. Sirve registros y vínculos
// desde mapas en memoria y cuenta las llamadas; es seguro para los grupos
// concurrentes del fetcher.
type fakeUpstream struct {
	mu gosync.Mutex

	records map[string]sync.Payload // clave "kind/id"
	links   map[string]sync.Payload
	pages   []sync.Page
	rows    []sync.Payload

	probeErr   error
	recordErrs map[string]error
	linkErrs   map[string]error
	queryErr   error

	recordCalls int
	linkCalls   int
	listCalls   int
	queryCalls  int
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		records:    map[string]sync.Payload{},
		links:      map[string]sync.Payload{},
		recordErrs: map[string]error{},
		linkErrs:   map[string]error{},
	}
}

func (f *fakeUpstream) key(kind string, id int64) string {
	return fmt.Sprintf("%s/%d", kind, id)
}

func (f *fakeUpstream) addItem(id int64, p sync.Payload) {
	f.records[f.key(sync.KindInventoryItem, id)] = p
}

func (f *fakeUpstream) addOrder(id int64, p sync.Payload) {
	f.records[f.key(sync.KindSalesOrder, id)] = p
}

func (f *fakeUpstream) ListInventoryItems(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
	return f.nextPage()
}

func (f *fakeUpstream) ListSalesOrders(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
	return f.nextPage()
}

func (f *fakeUpstream) nextPage() (sync.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.listCalls
	f.listCalls++
	if idx >= len(f.pages) {
		return sync.Page{}, nil
	}
	return f.pages[idx], nil
}

func (f *fakeUpstream) GetRecord(ctx context.Context, kind string, id int64) (sync.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordCalls++
	k := f.key(kind, id)
	if err, ok := f.recordErrs[k]; ok {
		return nil, err
	}
	p, ok := f.records[k]
	if !ok {
		return nil, fmt.Errorf("registro %s inexistente", k)
	}
	return p, nil
}

func (f *fakeUpstream) GetLink(ctx context.Context, href string) (sync.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linkCalls++
	if err, ok := f.linkErrs[href]; ok {
		return nil, err
	}
	p, ok := f.links[href]
	if !ok {
		return nil, fmt.Errorf("vínculo %s inexistente", href)
	}
	return p, nil
}

func (f *fakeUpstream) RunQuery(ctx context.Context, query string) ([]sync.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func (f *fakeUpstream) Probe(ctx context.Context) error {
	return f.probeErr
}
