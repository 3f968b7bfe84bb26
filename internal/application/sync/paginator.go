package sync

import (
	"context"

	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

// ListFunc una de las operaciones de listado del upstream.
type ListFunc func(ctx context.Context, q ListQuery) (Page, error)

// maxConsecutiveFailures páginas fallidas seguidas antes de dar por muerto el
// listado. Sin este corte, un remoto que falla antes de informar totalResults
// dejaría al paginador pidiendo páginas para siempre.
const maxConsecutiveFailures = 5

// Paginator recorre el listado remoto por offset. No reintenta: el reintento
// ante 429 vive en el cliente. Una página que falla por otra causa se salta
// (avanza el offset una página) para que una página mala no tumbe el barrido.
type Paginator struct {
	list     ListFunc
	pageSize int
	offset   int
	total    int // último totalResults observado; -1 = aún desconocido
	seen     int
	fails    int // páginas fallidas consecutivas
	done     bool
	log      *logger.Logger
}

// NewPaginator construye el paginador de barrido completo.
func NewPaginator(list ListFunc, pageSize int, log *logger.Logger) *Paginator {
	if pageSize <= 0 || pageSize > 1000 {
		pageSize = 1000 // tope duro del listado remoto
	}
	return &Paginator{list: list, pageSize: pageSize, total: -1, log: log}
}

// FetchFiltered una sola página filtrada por fecha de modificación (modo incremental).
func FetchFiltered(ctx context.Context, list ListFunc, since string, limit int) (Page, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	return list(ctx, ListQuery{Since: since, Limit: limit})
}

// Next devuelve los candidatos de la siguiente página y si queda más por
// recorrer. Ante un error de página registra, avanza el offset y sigue; la
// paginación termina cuando el remoto dice hasMore=false, el offset ajustado
// supera el total previamente observado, el contexto se cancela o se acumulan
// demasiadas páginas fallidas seguidas.
func (p *Paginator) Next(ctx context.Context) ([]Candidate, bool) {
	if p.done {
		return nil, false
	}
	if ctx.Err() != nil {
		p.done = true
		return nil, false
	}

	page, err := p.list(ctx, ListQuery{Limit: p.pageSize, Offset: p.offset})
	if err != nil {
		p.fails++
		p.log.Error().Err(err).Int("offset", p.offset).Int("fallos_seguidos", p.fails).Msg("página fallida, se salta")
		p.offset += p.pageSize
		if p.fails >= maxConsecutiveFailures {
			p.log.Error().Int("offset", p.offset).Msg("listado abandonado por fallos consecutivos")
			p.done = true
			return nil, false
		}
		if p.total >= 0 && p.offset >= p.total {
			p.done = true
			return nil, false
		}
		return nil, true
	}

	p.fails = 0
	p.total = page.Total
	p.offset += len(page.Items)
	p.seen += len(page.Items)
	p.log.Info().
		Int("recibidos", p.seen).
		Int("total", p.total).
		Int("offset", p.offset).
		Msg("página de candidatos")

	if !page.HasMore || len(page.Items) == 0 {
		p.done = true
	}
	if p.total >= 0 && p.offset >= p.total {
		p.done = true
	}
	return page.Items, !p.done
}

// Seen candidatos recibidos hasta ahora (para progreso).
func (p *Paginator) Seen() int { return p.seen }

// Total último total informado por el remoto; -1 si aún no se observó.
func (p *Paginator) Total() int { return p.total }
