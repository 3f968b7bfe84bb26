package netsuite_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinoteca-hk/cellar-sync/internal/domain"
	"github.com/vinoteca-hk/cellar-sync/internal/infrastructure/netsuite"
	"github.com/vinoteca-hk/cellar-sync/internal/metrics"
	"github.com/vinoteca-hk/cellar-sync/pkg/config"
	"github.com/vinoteca-hk/cellar-sync/pkg/logger"
)

// stubSigner firma constante: los tests del cliente no validan OAuth.
type stubSigner struct{}

func (stubSigner) Sign(method, rawURL string) (string, error) {
	return "OAuth test", nil
}

func newTestClient(retryLimit int) *netsuite.Client {
	return netsuite.NewClient(stubSigner{}, config.SyncConfig{
		Concurrency:    1,
		MinInterval:    0, // sin espaciado en tests
		RetryLimit:     retryLimit,
		RetryBaseDelay: time.Millisecond,
		CallTimeout:    5 * time.Second,
	}, metrics.New(), logger.NewNop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintentos ante límite de tasa
// ──────────────────────────────────────────────────────────────────────────────

func TestDo_429AgotaReintentosYDevuelveErrRateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(3)
	_, err := c.Do(context.Background(), netsuite.Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	// Intento inicial + 3 reintentos.
	assert.Equal(t, int32(4), calls.Load())
}

func TestDo_429LuegoExitoDevuelveCuerpo(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(3)
	resp, err := c.Do(context.Background(), netsuite.Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_MarcadorDeCuotaEnCuerpo400TambienReintenta(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"SSS_REQUEST_LIMIT_EXCEEDED"}`))
	}))
	defer srv.Close()

	c := newTestClient(1)
	_, err := c.Do(context.Background(), netsuite.Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	assert.Equal(t, int32(2), calls.Load())
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores que no se reintentan
// ──────────────────────────────────────────────────────────────────────────────

func TestDo_500FallaSinReintentar(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(3)
	_, err := c.Do(context.Background(), netsuite.Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrRateLimited))
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_401MapeaAErrAuthFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Invalid login attempt"}`))
	}))
	defer srv.Close()

	c := newTestClient(3)
	_, err := c.Do(context.Background(), netsuite.Request{Method: http.MethodGet, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAuthFailed))
}

// ──────────────────────────────────────────────────────────────────────────────
// Espaciado mínimo entre despachos
// ──────────────────────────────────────────────────────────────────────────────

func TestDo_RespetaElIntervaloMinimo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := netsuite.NewClient(stubSigner{}, config.SyncConfig{
		Concurrency:    1,
		MinInterval:    60 * time.Millisecond,
		RetryLimit:     0,
		RetryBaseDelay: time.Millisecond,
		CallTimeout:    5 * time.Second,
	}, metrics.New(), logger.NewNop())

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Do(context.Background(), netsuite.Request{Method: http.MethodGet, URL: srv.URL})
		require.NoError(t, err)
	}
	// Tres llamadas: al menos dos intervalos completos entre despachos.
	assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
}
