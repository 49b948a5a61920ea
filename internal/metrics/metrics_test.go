package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCommand(t *testing.T) {
	okBefore := testutil.ToFloat64(CommandsTotal.WithLabelValues("add", "ok"))
	errBefore := testutil.ToFloat64(CommandsTotal.WithLabelValues("divide", "error"))
	kindBefore := testutil.ToFloat64(CommandErrorsTotal.WithLabelValues("division_by_zero"))

	RecordCommand("add", "")
	RecordCommand("divide", "division_by_zero")

	assert.Equal(t, okBefore+1, testutil.ToFloat64(CommandsTotal.WithLabelValues("add", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(CommandsTotal.WithLabelValues("divide", "error")))
	assert.Equal(t, kindBefore+1, testutil.ToFloat64(CommandErrorsTotal.WithLabelValues("division_by_zero")))
}

func TestRecordWrite(t *testing.T) {
	okBefore := testutil.ToFloat64(HistoryWritesTotal.WithLabelValues("append", "ok"))
	errBefore := testutil.ToFloat64(HistoryWritesTotal.WithLabelValues("append", "error"))

	RecordWrite("append", nil)
	RecordWrite("append", errors.New("disk full"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(HistoryWritesTotal.WithLabelValues("append", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(HistoryWritesTotal.WithLabelValues("append", "error")))
}

func TestSetLedgerSize(t *testing.T) {
	SetLedgerSize(4, 1)
	assert.Equal(t, float64(4), testutil.ToFloat64(HistoryRecords))
	assert.Equal(t, float64(1), testutil.ToFloat64(HistoryPending))
}

func TestWriteFile(t *testing.T) {
	RecordCommand("multiply", "")
	path := filepath.Join(t.TempDir(), "calc.prom")

	require.NoError(t, WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "calcshell_session_commands_total")
	assert.Contains(t, string(data), `command="multiply"`)
}

func TestWriteFile_BadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "calc.prom"))
	assert.Error(t, err)
}
