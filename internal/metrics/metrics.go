package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contadores Prometheus del pipeline de sincronización.
// Registro propio (no el global) para poder instanciar en tests sin colisiones.
type Metrics struct {
	reg *prometheus.Registry

	RecordsProcessed prometheus.Counter
	RecordsSaved     prometheus.Counter
	RecordsSkipped   prometheus.Counter
	RecordsFailed    prometheus.Counter
	UpstreamCalls    prometheus.Counter
	RateLimitRetries prometheus.Counter
	RunDurationSec   prometheus.Histogram
}

// New construye el registro con todos los contadores del pipeline.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	processed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellarsync_records_processed_total",
		Help: "Registros candidatos procesados en corridas de sincronización.",
	})
	saved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellarsync_records_saved_total",
		Help: "Registros guardados (upsert) en el store local.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellarsync_records_skipped_total",
		Help: "Registros saltados (inactivos o ya presentes).",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellarsync_records_failed_total",
		Help: "Registros fallidos sin abortar la corrida.",
	})
	calls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellarsync_upstream_calls_total",
		Help: "Llamadas HTTP despachadas al ERP remoto.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cellarsync_ratelimit_retries_total",
		Help: "Reintentos por límite de tasa del remoto.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cellarsync_run_duration_seconds",
		Help:    "Duración de corridas completas de sincronización.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	reg.MustRegister(processed, saved, skipped, failed, calls, retries, duration)
	return &Metrics{
		reg:              reg,
		RecordsProcessed: processed,
		RecordsSaved:     saved,
		RecordsSkipped:   skipped,
		RecordsFailed:    failed,
		UpstreamCalls:    calls,
		RateLimitRetries: retries,
		RunDurationSec:   duration,
	}
}

// Handler expone el registro en formato Prometheus (ruta /metrics).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
