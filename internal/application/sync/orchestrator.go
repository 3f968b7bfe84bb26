package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vinoteca-hk/cellar-sync/internal/domain"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/entity"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
	"github.com/vinoteca-hk/cellar-sync/internal/metrics"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

// Options ritmo y límites del orquestador. Los delays existen para respetar la
// tolerancia informal del remoto más allá de lo que ya impone el cliente.
type Options struct {
	PageSize        int
	RecordDelay     time.Duration // pausa tras cada registro
	BatchDelay      time.Duration // pausa entre páginas (incremental / movimiento)
	SweepBatchDelay time.Duration // pausa entre páginas en barrido completo
	ErrorLogDir     string
}

// SweepOptions parámetros del barrido completo de catálogo.
type SweepOptions struct {
	BatchSize  int
	MaxItems   int
	BatchDelay time.Duration
}

// MovementOptions parámetros de la pasada de enriquecimiento de movimiento.
type MovementOptions struct {
	BatchSize int
	MaxItems  int
}

// Orchestrator bucle de control de una corrida de sincronización: pagina
// candidatos, por cada id arma-transforma-guarda, acumula contadores y produce
// el reporte. Un registro malo nunca aborta la corrida; solo el chequeo de
// credenciales pre-vuelo es fatal.
type Orchestrator struct {
	up      Upstream
	fetcher *Fetcher
	items   repository.InventoryItemRepository
	orders  repository.SalesOrderRepository
	met     *metrics.Metrics
	opts    Options
	log     *logger.Logger
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	up Upstream,
	fetcher *Fetcher,
	items repository.InventoryItemRepository,
	orders repository.SalesOrderRepository,
	met *metrics.Metrics,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	return &Orchestrator{
		up:      up,
		fetcher: fetcher,
		items:   items,
		orders:  orders,
		met:     met,
		opts:    opts,
		log:     log,
	}
}

// Probe verifica credenciales con una llamada ligera.
func (o *Orchestrator) Probe(ctx context.Context) (bool, error) {
	err := o.up.Probe(ctx)
	if errors.Is(err, domain.ErrAuthFailed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// preflight una llamada de sondeo antes de paginar o escribir nada.
// Si falla, la corrida termina aquí con reporte de fallo de autenticación.
func (o *Orchestrator) preflight(ctx context.Context, rep *Report) error {
	if err := o.up.Probe(ctx); err != nil {
		rep.Fatal = fmt.Sprintf("pre-vuelo fallido: %v", err)
		o.log.Error().Err(err).Str("run", rep.RunID).Msg("corrida abortada en pre-vuelo")
		if errors.Is(err, domain.ErrAuthFailed) {
			return domain.ErrAuthFailed
		}
		return fmt.Errorf("pre-vuelo: %w", err)
	}
	return nil
}

// SyncItems sincronización incremental acotada de artículos: una sola página
// filtrada por fecha de modificación.
func (o *Orchestrator) SyncItems(ctx context.Context, limit int, since string) (*Report, error) {
	rep := newReport("items-incremental")
	defer o.observeRun(rep)
	if err := o.preflight(ctx, rep); err != nil {
		return rep.finish(), err
	}

	page, err := FetchFiltered(ctx, o.up.ListInventoryItems, since, limit)
	if err != nil {
		rep.AddError(0, fmt.Errorf("listado incremental: %w", err))
		return rep.finish(), nil
	}
	o.log.Info().Str("run", rep.RunID).Int("candidatos", len(page.Items)).Msg("sincronización incremental de artículos")

	for _, c := range page.Items {
		o.processItem(ctx, rep, c.ID, nil)
		o.pause(ctx, o.opts.RecordDelay)
	}
	return rep.finish(), nil
}

// SweepItems barrido completo del catálogo con log durable de errores.
func (o *Orchestrator) SweepItems(ctx context.Context, sw SweepOptions) (*Report, error) {
	rep := newReport("items-sweep")
	defer o.observeRun(rep)
	if err := o.preflight(ctx, rep); err != nil {
		return rep.finish(), err
	}

	slog, err := OpenSweepLog(o.opts.ErrorLogDir, rep.RunID)
	if err != nil {
		// El barrido vale más que su log: se sigue sin archivo.
		o.log.Warn().Err(err).Msg("log durable de barrido no disponible")
		slog = nil
	}

	pageSize := sw.BatchSize
	if pageSize <= 0 {
		pageSize = o.opts.PageSize
	}
	delay := sw.BatchDelay
	if delay <= 0 {
		delay = o.opts.SweepBatchDelay
	}

	pag := NewPaginator(o.up.ListInventoryItems, pageSize, o.log)
	for {
		items, cont := pag.Next(ctx)
		for _, c := range items {
			if sw.MaxItems > 0 && rep.Processed >= sw.MaxItems {
				cont = false
				break
			}
			o.processItem(ctx, rep, c.ID, slog)
			o.pause(ctx, o.opts.RecordDelay)
		}
		if !cont {
			break
		}
		o.pause(ctx, delay)
	}

	rep.finish()
	if slog != nil {
		if err := slog.Close(rep); err != nil {
			o.log.Warn().Err(err).Msg("cierre del log de barrido")
		}
	}
	o.log.Info().Str("run", rep.RunID).Msg(rep.Summary())
	return rep, nil
}

// SyncOrders sincronización incremental acotada de órdenes de venta.
func (o *Orchestrator) SyncOrders(ctx context.Context, limit int, since string) (*Report, error) {
	rep := newReport("orders-incremental")
	defer o.observeRun(rep)
	if err := o.preflight(ctx, rep); err != nil {
		return rep.finish(), err
	}

	page, err := FetchFiltered(ctx, o.up.ListSalesOrders, since, limit)
	if err != nil {
		rep.AddError(0, fmt.Errorf("listado de órdenes: %w", err))
		return rep.finish(), nil
	}
	o.log.Info().Str("run", rep.RunID).Int("candidatos", len(page.Items)).Msg("sincronización de órdenes")

	for _, c := range page.Items {
		o.processOrder(ctx, rep, c.ID)
		o.pause(ctx, o.opts.RecordDelay)
	}
	return rep.finish(), nil
}

// SyncItemsFromOrders sincroniza los artículos referenciados por las órdenes ya
// almacenadas que aún no estén en el catálogo local.
func (o *Orchestrator) SyncItemsFromOrders(ctx context.Context) (*Report, error) {
	rep := newReport("items-from-orders")
	defer o.observeRun(rep)
	if err := o.preflight(ctx, rep); err != nil {
		return rep.finish(), err
	}

	ids, err := o.orders.DistinctItemIDs(ctx)
	if err != nil {
		rep.AddError(0, fmt.Errorf("ids de artículos en órdenes: %w", err))
		return rep.finish(), nil
	}
	o.log.Info().Str("run", rep.RunID).Int("candidatos", len(ids)).Msg("artículos referenciados por órdenes")

	for _, id := range ids {
		rep.Processed++
		o.met.RecordsProcessed.Inc()

		existing, err := o.items.GetByExternalID(ctx, id)
		if err != nil {
			o.recordFailure(rep, nil, id, err)
			continue
		}
		if existing != nil {
			rep.Skipped++
			o.met.RecordsSkipped.Inc()
			continue
		}

		b, err := o.fetcher.FetchInventoryItem(ctx, id)
		if err != nil {
			o.recordFailure(rep, nil, id, err)
			continue
		}
		// En este modo solo entra lo que el remoto declara isInactive == false
		// de forma explícita; ausente o true se salta. Es deliberadamente más
		// estricto que el salto por isInactive == true de los otros modos.
		v, ok := b.Base.Get("isInactive")
		flag, isBool := v.(bool)
		if !ok || !isBool || flag {
			rep.Skipped++
			o.met.RecordsSkipped.Inc()
			continue
		}

		o.saveItem(ctx, rep, nil, b)
		o.pause(ctx, o.opts.RecordDelay)
	}
	return rep.finish(), nil
}

// EnrichMovement pasada batch post-hoc: una consulta analítica agregada por
// lote de ids ya almacenados, join por id, y movimiento explícito en cero para
// los ids sin resultado (nunca se dejan valores viejos).
func (o *Orchestrator) EnrichMovement(ctx context.Context, mv MovementOptions) (*Report, error) {
	rep := newReport("movement")
	defer o.observeRun(rep)
	if err := o.preflight(ctx, rep); err != nil {
		return rep.finish(), err
	}

	batchSize := mv.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	offset := 0
	for {
		limit := batchSize
		if mv.MaxItems > 0 && offset+limit > mv.MaxItems {
			limit = mv.MaxItems - offset
		}
		if limit <= 0 {
			break
		}
		ids, err := o.items.ListExternalIDs(ctx, limit, offset)
		if err != nil {
			rep.AddError(0, fmt.Errorf("ids almacenados: %w", err))
			break
		}
		if len(ids) == 0 {
			break
		}

		o.movementBatch(ctx, rep, ids)
		offset += len(ids)
		if len(ids) < limit {
			break
		}
		o.pause(ctx, o.opts.BatchDelay)
	}
	o.log.Info().Str("run", rep.RunID).Msg(rep.Summary())
	return rep.finish(), nil
}

// movementBatch consulta el endpoint analítico por el lote y aplica el join.
func (o *Orchestrator) movementBatch(ctx context.Context, rep *Report, ids []int64) {
	rows, err := o.up.RunQuery(ctx, buildMovementQuery(ids))
	if err != nil {
		rep.AddError(0, fmt.Errorf("consulta de movimiento (%d ids): %w", len(ids), err))
		return
	}

	// El feed analítico entrega fechas DD/MM/YYYY.
	moved := make(map[int64]*time.Time, len(rows))
	for _, row := range rows {
		moved[row.Int("itemid")] = ParseDMYDate(row.Str("lastmove"))
	}

	for _, id := range ids {
		rep.Processed++
		o.met.RecordsProcessed.Inc()

		m := entity.ItemMovement{} // explícito: sin movimiento
		if d, ok := moved[id]; ok {
			m = entity.ItemMovement{LastMovementDate: d, MovedLast12Months: true}
		}
		if err := o.items.SetMovement(ctx, id, m); err != nil {
			o.recordFailure(rep, nil, id, err)
			continue
		}
		rep.Saved++
		o.met.RecordsSaved.Inc()
	}
}

// buildMovementQuery arma la consulta agregada de salidas de los últimos 12 meses.
func buildMovementQuery(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf(
		`SELECT transactionline.item AS itemid, MAX(transaction.trandate) AS lastmove `+
			`FROM transactionline JOIN transaction ON transaction.id = transactionline.transaction `+
			`WHERE transaction.type = 'ItemShip' `+
			`AND transaction.trandate >= ADD_MONTHS(SYSDATE, -12) `+
			`AND transactionline.item IN (%s) `+
			`GROUP BY transactionline.item`,
		strings.Join(parts, ", "),
	)
}

// processItem arma-transforma-guarda un artículo. Cualquier fallo se registra
// y el bucle sigue con el siguiente id.
func (o *Orchestrator) processItem(ctx context.Context, rep *Report, id int64, slog *SweepLog) {
	rep.Processed++
	o.met.RecordsProcessed.Inc()

	b, err := o.fetcher.FetchInventoryItem(ctx, id)
	if err != nil {
		o.recordFailure(rep, slog, id, err)
		return
	}
	if b.Inactive {
		rep.Skipped++
		o.met.RecordsSkipped.Inc()
		return
	}
	o.saveItem(ctx, rep, slog, b)
}

// saveItem transforma, valida y hace upsert de un bundle activo.
func (o *Orchestrator) saveItem(ctx context.Context, rep *Report, slog *SweepLog, b *ItemBundle) {
	item := TransformInventoryItem(b, time.Now())
	if err := item.Validate(); err != nil {
		o.recordFailure(rep, slog, b.ID, err)
		return
	}
	saved, err := o.items.UpsertByExternalID(ctx, item)
	if err != nil {
		o.recordFailure(rep, slog, b.ID, err)
		return
	}
	rep.Saved++
	o.met.RecordsSaved.Inc()
	rep.Totals.Bottles = rep.Totals.Bottles.Add(saved.TotalQuantity)
}

// processOrder arma-transforma-guarda una orden de venta.
func (o *Orchestrator) processOrder(ctx context.Context, rep *Report, id int64) {
	rep.Processed++
	o.met.RecordsProcessed.Inc()

	b, err := o.fetcher.FetchSalesOrder(ctx, id)
	if err != nil {
		o.recordFailure(rep, nil, id, err)
		return
	}
	order := TransformSalesOrder(b, time.Now())
	if err := order.Validate(); err != nil {
		o.recordFailure(rep, nil, id, err)
		return
	}
	saved, err := o.orders.UpsertByExternalID(ctx, order)
	if err != nil {
		o.recordFailure(rep, nil, id, err)
		return
	}
	rep.Saved++
	o.met.RecordsSaved.Inc()
	rep.Totals.TotalAmount = rep.Totals.TotalAmount.Add(saved.TotalAmount)
	rep.Totals.EstGrossProfit = rep.Totals.EstGrossProfit.Add(saved.EstGrossProfit)
}

// recordFailure registra un fallo por-registro en reporte, métricas, log
// estructurado y (si aplica) el log durable del barrido.
func (o *Orchestrator) recordFailure(rep *Report, slog *SweepLog, id int64, err error) {
	rep.AddError(id, err)
	o.met.RecordsFailed.Inc()
	o.log.Error().Err(err).Int64("id", id).Str("run", rep.RunID).Msg("registro fallido")
	if slog != nil {
		slog.Record(id, err)
	}
}

// pause duerme respetando la cancelación del contexto.
func (o *Orchestrator) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// observeRun registra la duración de la corrida en el histograma.
func (o *Orchestrator) observeRun(rep *Report) {
	o.met.RunDurationSec.Observe(time.Since(rep.StartedAt).Seconds())
}
