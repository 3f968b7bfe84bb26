package sync

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reportErrorLimit tope de errores retenidos en el reporte (el log durable
// del barrido sí los guarda todos).
const reportErrorLimit = 50

// RecordError fallo de un registro individual dentro de una corrida.
type RecordError struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// Financials resumen financiero/estadístico de los registros guardados en la corrida.
type Financials struct {
	Bottles        decimal.Decimal `json:"bottles"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	EstGrossProfit decimal.Decimal `json:"estGrossProfit"`
}

// Report resumen efímero de una corrida de sincronización. Lo posee en
// exclusiva el orquestador mientras dura la corrida; no se persiste.
type Report struct {
	RunID      string        `json:"runId"`
	Mode       string        `json:"mode"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Duration   string        `json:"duration"`
	Processed  int           `json:"processed"`
	Saved      int           `json:"saved"`
	Skipped    int           `json:"skipped"` // inactivos o ya presentes, según el modo
	Failed     int           `json:"failed"`
	Errors     []RecordError `json:"errors"`
	Truncated  bool          `json:"errorsTruncated"`
	Fatal      string        `json:"fatal,omitempty"` // solo fallo de autenticación pre-vuelo
	Totals     Financials    `json:"totals"`
}

func newReport(mode string) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

// AddError cuenta el fallo y lo retiene hasta el tope de reporte.
func (r *Report) AddError(id int64, err error) {
	r.Failed++
	if len(r.Errors) >= reportErrorLimit {
		r.Truncated = true
		return
	}
	r.Errors = append(r.Errors, RecordError{ID: id, Message: err.Error()})
}

// finish cierra la corrida y fija la duración.
func (r *Report) finish() *Report {
	r.FinishedAt = time.Now()
	r.Duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
	return r
}

// Summary línea legible para logs y banners.
func (r *Report) Summary() string {
	return fmt.Sprintf("modo=%s procesados=%d guardados=%d saltados=%d fallidos=%d duración=%s",
		r.Mode, r.Processed, r.Saved, r.Skipped, r.Failed, r.Duration)
}
