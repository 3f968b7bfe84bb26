package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SweepLog log durable de errores por corrida de barrido completo: un archivo
// de texto append-only con banner de inicio, una línea por registro fallido y
// banner de cierre. Existe además del reporte porque el reporte trunca sus
// errores y muere con la corrida.
type SweepLog struct {
	f    *os.File
	path string
}

// OpenSweepLog crea el archivo del log en dir (se crea el directorio si falta).
func OpenSweepLog(dir, runID string) (*SweepLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de logs: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("sync-errors-%s.log", runID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("abrir log de barrido: %w", err)
	}
	sl := &SweepLog{f: f, path: path}
	sl.line("==== barrido iniciado %s ====", time.Now().Format(time.RFC3339))
	return sl, nil
}

// Record una línea por fallo de registro.
func (s *SweepLog) Record(id int64, err error) {
	s.line("[%s] id=%d error=%s", time.Now().Format(time.RFC3339), id, err.Error())
}

// Close escribe el banner de resumen y cierra el archivo.
func (s *SweepLog) Close(r *Report) error {
	s.line("==== barrido terminado %s | %s ====", time.Now().Format(time.RFC3339), r.Summary())
	return s.f.Close()
}

// Path ruta del archivo de log (para el reporte HTTP).
func (s *SweepLog) Path() string { return s.path }

func (s *SweepLog) line(format string, args ...any) {
	fmt.Fprintf(s.f, format+"\n", args...)
}
