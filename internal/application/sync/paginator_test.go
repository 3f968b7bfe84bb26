package sync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vinoteca-hk/cellar-sync/internal/application/sync"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

// pagedList fabrica un ListFunc que sirve páginas precargadas por offset.
func pagedList(t *testing.T, pages map[int]sync.Page, errAt map[int]error) sync.ListFunc {
	t.Helper()
	return func(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
		if err, ok := errAt[q.Offset]; ok {
			return sync.Page{}, err
		}
		return pages[q.Offset], nil
	}
}

func ids(cs []sync.Candidate) []int64 {
	out := make([]int64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestPaginator_RecorreTodasLasPaginasEnOrden(t *testing.T) {
	pages := map[int]sync.Page{
		0: {Items: []sync.Candidate{{ID: 1}, {ID: 2}}, HasMore: true, Total: 5},
		2: {Items: []sync.Candidate{{ID: 3}, {ID: 4}}, HasMore: true, Total: 5},
		4: {Items: []sync.Candidate{{ID: 5}}, HasMore: false, Total: 5},
	}
	p := sync.NewPaginator(pagedList(t, pages, nil), 2, logger.NewNop())

	var all []int64
	for {
		items, more := p.Next(context.Background())
		all = append(all, ids(items)...)
		if !more {
			break
		}
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, all)
	assert.Equal(t, 5, p.Seen())
	assert.Equal(t, 5, p.Total())
}

func TestPaginator_PaginaVaciaTermina(t *testing.T) {
	pages := map[int]sync.Page{
		0: {Items: nil, HasMore: false, Total: 0},
	}
	p := sync.NewPaginator(pagedList(t, pages, nil), 100, logger.NewNop())

	items, more := p.Next(context.Background())
	assert.Empty(t, items)
	assert.False(t, more)

	// Next tras terminar es inocuo.
	items, more = p.Next(context.Background())
	assert.Nil(t, items)
	assert.False(t, more)
}

func TestPaginator_PaginaFallidaSeSaltaYSigue(t *testing.T) {
	pages := map[int]sync.Page{
		0: {Items: []sync.Candidate{{ID: 1}, {ID: 2}}, HasMore: true, Total: 6},
		4: {Items: []sync.Candidate{{ID: 5}, {ID: 6}}, HasMore: false, Total: 6},
	}
	errAt := map[int]error{2: errors.New("HTTP 500")}
	p := sync.NewPaginator(pagedList(t, pages, errAt), 2, logger.NewNop())

	var all []int64
	for {
		items, more := p.Next(context.Background())
		all = append(all, ids(items)...)
		if !more {
			break
		}
	}
	// La página en offset 2 se pierde, pero el barrido continúa con la siguiente.
	assert.Equal(t, []int64{1, 2, 5, 6}, all)
}

func TestPaginator_ErrorConOffsetMasAllaDelTotalTermina(t *testing.T) {
	pages := map[int]sync.Page{
		0: {Items: []sync.Candidate{{ID: 1}, {ID: 2}}, HasMore: true, Total: 3},
	}
	// Todo offset posterior falla: el total ya observado corta el bucle.
	errAt := map[int]error{2: errors.New("HTTP 500"), 4: errors.New("HTTP 500")}
	p := sync.NewPaginator(pagedList(t, pages, errAt), 2, logger.NewNop())

	var rounds int
	for {
		_, more := p.Next(context.Background())
		rounds++
		if !more {
			break
		}
		if rounds > 10 {
			t.Fatal("el paginador no terminó")
		}
	}
	assert.LessOrEqual(t, rounds, 3)
}

func TestPaginator_FallosConsecutivosSinTotalTerminan(t *testing.T) {
	// El remoto falla antes de informar totalResults: sin el corte por fallos
	// seguidos el paginador pediría páginas para siempre.
	calls := 0
	list := func(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
		calls++
		return sync.Page{}, errors.New("HTTP 500")
	}
	p := sync.NewPaginator(list, 100, logger.NewNop())

	var rounds int
	for {
		_, more := p.Next(context.Background())
		rounds++
		if !more {
			break
		}
		if rounds > 100 {
			t.Fatal("el paginador no terminó ante fallos persistentes")
		}
	}
	assert.LessOrEqual(t, rounds, 10)
	assert.LessOrEqual(t, calls, 10)
}

func TestPaginator_ContextoCanceladoTermina(t *testing.T) {
	calls := 0
	list := func(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
		calls++
		return sync.Page{}, errors.New("HTTP 500")
	}
	p := sync.NewPaginator(list, 100, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, more := p.Next(ctx)
	assert.Nil(t, items)
	assert.False(t, more, "un contexto cancelado debe cortar la paginación de inmediato")
	assert.Zero(t, calls, "no debe salir ninguna llamada con el contexto cancelado")

	// Y queda terminado: Next posterior sigue devolviendo false.
	_, more = p.Next(context.Background())
	assert.False(t, more)
}

func TestFetchFiltered_AcotaElLimite(t *testing.T) {
	var got sync.ListQuery
	list := func(ctx context.Context, q sync.ListQuery) (sync.Page, error) {
		got = q
		return sync.Page{}, nil
	}

	_, err := sync.FetchFiltered(context.Background(), list, "2024-01-01", 5000)
	assert.NoError(t, err)
	// El tope remoto del listado es 1000.
	assert.Equal(t, 1000, got.Limit)
	assert.Equal(t, "2024-01-01", got.Since)

	_, _ = sync.FetchFiltered(context.Background(), list, "", 0)
	assert.Equal(t, 1000, got.Limit)
}
