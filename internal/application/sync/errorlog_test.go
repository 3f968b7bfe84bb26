package sync

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepLog_RegistraErroresYResumen(t *testing.T) {
	dir := t.TempDir()
	slog, err := OpenSweepLog(dir, "run-123")
	require.NoError(t, err)

	slog.Record(41, errors.New("HTTP 500"))
	slog.Record(77, errors.New("registro inexistente"))

	rep := newReport("items-sweep")
	rep.Processed = 10
	rep.Failed = 2
	require.NoError(t, slog.Close(rep))

	raw, err := os.ReadFile(slog.Path())
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "id=41")
	assert.Contains(t, content, "HTTP 500")
	assert.Contains(t, content, "id=77")
	assert.True(t, strings.Contains(slog.Path(), "run-123"))
}

func TestReport_AddErrorRespetaElTope(t *testing.T) {
	rep := newReport("items-sweep")
	for i := 0; i < reportErrorLimit+10; i++ {
		rep.AddError(int64(i), errors.New("x"))
	}
	assert.Equal(t, reportErrorLimit+10, rep.Failed)
	assert.Len(t, rep.Errors, reportErrorLimit)
	assert.True(t, rep.Truncated)
}
