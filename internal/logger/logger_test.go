package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_LevelPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envVar   string
		profile  string
		expected log.Level
	}{
		{name: "no profile is prod", expected: log.WarnLevel},
		{name: "dev profile", profile: "dev", expected: log.DebugLevel},
		{name: "uat profile", profile: "uat", expected: log.InfoLevel},
		{name: "prod profile", profile: "prod", expected: log.WarnLevel},
		{name: "env var beats profile", envVar: "error", profile: "dev", expected: log.ErrorLevel},
		{name: "flag beats env var", flag: "debug", envVar: "error", expected: log.DebugLevel},
		{name: "unknown level falls back to info", flag: "chatty", expected: log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CALC_LOG_LEVEL", tt.envVar)

			require.NoError(t, Configure(tt.flag, "", tt.profile, true))
			assert.Equal(t, tt.expected, Logger.GetLevel())
		})
	}
}

func TestConfigure_LogFile(t *testing.T) {
	t.Setenv("CALC_LOG_LEVEL", "")
	logFile := filepath.Join(t.TempDir(), "calc.log")

	require.NoError(t, Configure("info", logFile, "", false))
	Info("history loaded", "records", 3)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "history loaded")
	assert.Contains(t, string(data), "records=3")

	// Restore stderr output for the rest of the package tests.
	require.NoError(t, Configure("info", "", "", true))
}

func TestConfigure_BadLogFile(t *testing.T) {
	err := Configure("info", filepath.Join(t.TempDir(), "missing", "dir", "calc.log"), "", true)
	assert.Error(t, err)
}

func TestNewComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Logger.SetLevel(log.WarnLevel)
	defer Logger.SetLevel(log.InfoLevel)

	component := NewComponentLogger("ledger")
	assert.Equal(t, log.WarnLevel, component.GetLevel())

	component.Info("hidden")
	component.Warn("visible", "path", "data/history.csv")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "ledger")
	assert.Contains(t, out, "visible")
}
