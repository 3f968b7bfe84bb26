package netsuite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	gosync "sync"
	"time"

	"github.com/vinoteca-hk/cellar-sync/internal/domain"
	"github.com/vinoteca-hk/cellar-sync/internal/metrics"
	"github.com/vinoteca-hk/cellar-sync/pkg/config"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

// maxBodyBytes tope de lectura de cuerpos de respuesta.
const maxBodyBytes = 8 << 20

// rateLimitMarker marcador que el remoto mete en el cuerpo cuando agota la
// cuota aunque el status no sea 429.
const rateLimitMarker = "SSS_REQUEST_LIMIT_EXCEEDED"

// Request una petición saliente al ERP remoto.
type Request struct {
	Method  string
	URL     string
	Body    []byte
	Timeout time.Duration     // 0 = timeout por defecto del cliente
	Headers map[string]string // adicionales al Authorization firmado
}

// Response respuesta cruda del remoto (cuerpo ya leído y acotado).
type Response struct {
	StatusCode int
	Body       []byte
}

// Client único punto de salida hacia el API remoto. Todas las llamadas del
// sistema pasan por aquí, así que el ritmo global se cumple sin importar
// cuántos llamadores concurrentes haya:
//   - a lo sumo Concurrency llamadas en vuelo (1 en producción: el remoto
//     solo es seguro mono-hilo),
//   - un intervalo mínimo entre inicios de despacho,
//   - reintento con backoff creciente solo ante límite de tasa; cualquier
//     otro error de transporte o HTTP falla de inmediato.
type Client struct {
	httpc  *http.Client
	signer Signer
	met    *metrics.Metrics
	log    *logger.Logger

	sem chan struct{}

	mu           gosync.Mutex
	lastDispatch time.Time
	minInterval  time.Duration

	retryLimit     int
	retryBaseDelay time.Duration
	defaultTimeout time.Duration
}

// NewClient construye el cliente con límite de tasa desde la configuración.
func NewClient(signer Signer, sc config.SyncConfig, met *metrics.Metrics, log *logger.Logger) *Client {
	concurrency := sc.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Client{
		// El timeout real por llamada lo impone el contexto; este es el techo.
		httpc:          &http.Client{Timeout: 2 * time.Minute},
		signer:         signer,
		met:            met,
		log:            log,
		sem:            make(chan struct{}, concurrency),
		minInterval:    sc.MinInterval,
		retryLimit:     sc.RetryLimit,
		retryBaseDelay: sc.RetryBaseDelay,
		defaultTimeout: sc.CallTimeout,
	}
}

// Do ejecuta la petición por la cola única. Ante respuesta de límite de tasa
// reintenta hasta retryLimit veces, esperando k*retryBaseDelay antes del
// intento k; agotado el tope devuelve domain.ErrRateLimited.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	for attempt := 0; attempt <= c.retryLimit; attempt++ {
		if attempt > 0 {
			c.met.RateLimitRetries.Inc()
			delay := time.Duration(attempt) * c.retryBaseDelay
			c.log.Warn().
				Int("intento", attempt).
				Dur("espera", delay).
				Str("url", req.URL).
				Msg("límite de tasa remoto, reintentando")
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := c.dispatch(ctx, req)
		if err != nil {
			// Timeouts y errores de transporte no se reintentan.
			return nil, err
		}
		if isRateLimited(resp) {
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, statusError(resp)
		}
		return resp, nil
	}
	return nil, fmt.Errorf("%d reintentos agotados contra %s: %w", c.retryLimit, req.URL, domain.ErrRateLimited)
}

// dispatch reserva turno en la cola, respeta el espaciado mínimo y lanza la
// llamada firmada.
func (c *Client) dispatch(ctx context.Context, req Request) (*Response, error) {
	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	// Reservar el siguiente turno de despacho bajo el mutex y dormir fuera de él.
	c.mu.Lock()
	now := time.Now()
	slot := c.lastDispatch.Add(c.minInterval)
	if slot.Before(now) {
		slot = now
	}
	c.lastDispatch = slot
	c.mu.Unlock()
	if wait := time.Until(slot); wait > 0 {
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("crear HTTP request: %w", err)
	}
	auth, err := c.signer.Sign(req.Method, req.URL)
	if err != nil {
		return nil, fmt.Errorf("firmar petición: %w", err)
	}
	httpReq.Header.Set("Authorization", auth)
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	c.met.UpstreamCalls.Inc()
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("leer respuesta: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}

func isRateLimited(resp *Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusBadRequest && bytes.Contains(resp.Body, []byte(rateLimitMarker))
}

// statusError mapea estados HTTP a errores de dominio.
func statusError(resp *Response) error {
	snippet := resp.Body
	if len(snippet) > 256 {
		snippet = snippet[:256]
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("HTTP %d: %s: %w", resp.StatusCode, snippet, domain.ErrAuthFailed)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
