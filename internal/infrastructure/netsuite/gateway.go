package netsuite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vinoteca-hk/cellar-sync/internal/application/sync"
	"github.com/vinoteca-hk/cellar-sync/pkg/config"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

var _ sync.Upstream = (*Gateway)(nil)

const (
	recordPath  = "/services/rest/record/v1"
	suiteQLPath = "/services/rest/query/v1/suiteql"
)

// Gateway adaptador del puerto sync.Upstream sobre el API REST del ERP remoto.
// No conoce de ritmo ni reintentos: eso vive en el Client por el que pasa todo.
type Gateway struct {
	client       *Client
	baseURL      string
	callTimeout  time.Duration
	queryTimeout time.Duration
	log          *logger.Logger
}

// NewGateway construye el adaptador.
func NewGateway(client *Client, ns config.NetSuiteConfig, sc config.SyncConfig, log *logger.Logger) *Gateway {
	return &Gateway{
		client:       client,
		baseURL:      strings.TrimRight(ns.BaseURL, "/"),
		callTimeout:  sc.CallTimeout,
		queryTimeout: sc.QueryTimeout,
		log:          log,
	}
}

// ListInventoryItems página del listado de artículos.
func (g *Gateway) ListInventoryItems(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
	return g.list(ctx, sync.KindInventoryItem, q)
}

// ListSalesOrders página del listado de órdenes de venta.
func (g *Gateway) ListSalesOrders(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
	return g.list(ctx, sync.KindSalesOrder, q)
}

func (g *Gateway) list(ctx context.Context, kind string, q sync.ListQuery) (sync.Page, error) {
	vals := url.Values{}
	if q.Limit > 0 {
		vals.Set("limit", fmt.Sprintf("%d", q.Limit))
	}
	if q.Offset > 0 {
		vals.Set("offset", fmt.Sprintf("%d", q.Offset))
	}
	if q.Since != "" {
		vals.Set("q", fmt.Sprintf("lastModifiedDate ON_OR_AFTER %q", q.Since))
	}
	u := g.baseURL + recordPath + "/" + kind
	if enc := vals.Encode(); enc != "" {
		u += "?" + enc
	}

	p, err := g.get(ctx, u, g.callTimeout)
	if err != nil {
		return sync.Page{}, fmt.Errorf("listar %s: %w", kind, err)
	}

	page := sync.Page{
		HasMore: p.Bool("hasMore"),
		Total:   int(p.Num("totalResults")),
		Count:   int(p.Num("count")),
		Offset:  int(p.Num("offset")),
	}
	for _, it := range p.Items("items") {
		if id := it.Int("id"); id > 0 {
			page.Items = append(page.Items, sync.Candidate{ID: id})
		}
	}
	return page, nil
}

// GetRecord registro base por tipo e id, con subrecursos expandidos.
func (g *Gateway) GetRecord(ctx context.Context, kind string, id int64) (sync.Payload, error) {
	u := fmt.Sprintf("%s%s/%s/%d?expandSubResources=true", g.baseURL, recordPath, kind, id)
	p, err := g.get(ctx, u, g.callTimeout)
	if err != nil {
		return nil, fmt.Errorf("registro %s/%d: %w", kind, id, err)
	}
	return p, nil
}

// GetLink sigue el hipervínculo de un subrecurso tal cual lo entregó el remoto.
func (g *Gateway) GetLink(ctx context.Context, href string) (sync.Payload, error) {
	p, err := g.get(ctx, href, g.callTimeout)
	if err != nil {
		return nil, fmt.Errorf("subrecurso: %w", err)
	}
	return p, nil
}

// RunQuery ejecuta una consulta analítica (SuiteQL) y devuelve sus filas.
func (g *Gateway) RunQuery(ctx context.Context, query string) ([]sync.Payload, error) {
	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("serializar consulta: %w", err)
	}
	resp, err := g.client.Do(ctx, Request{
		Method:  http.MethodPost,
		URL:     g.baseURL + suiteQLPath + "?limit=1000",
		Body:    body,
		Timeout: g.queryTimeout,
		Headers: map[string]string{"Prefer": "transient"},
	})
	if err != nil {
		return nil, fmt.Errorf("consulta analítica: %w", err)
	}
	var p sync.Payload
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return nil, fmt.Errorf("deserializar filas: %w", err)
	}
	return p.Items("items"), nil
}

// Probe llamada ligera de verificación de credenciales: lista un solo artículo.
func (g *Gateway) Probe(ctx context.Context) error {
	_, err := g.list(ctx, sync.KindInventoryItem, sync.ListQuery{Limit: 1})
	return err
}

func (g *Gateway) get(ctx context.Context, u string, timeout time.Duration) (sync.Payload, error) {
	resp, err := g.client.Do(ctx, Request{Method: http.MethodGet, URL: u, Timeout: timeout})
	if err != nil {
		return nil, err
	}
	var p sync.Payload
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return nil, fmt.Errorf("deserializar respuesta: %w", err)
	}
	return p, nil
}
