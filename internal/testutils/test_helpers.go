package testutils

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// HistoryHeader is the header line of every history file.
const HistoryHeader = "operation,operands,result"

// HistoryFile builds history file content from data rows, header first.
func HistoryFile(rows ...string) string {
	var b strings.Builder
	b.WriteString(HistoryHeader)
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

// FileHelpers provides utilities for working with history files on an afero filesystem.
type FileHelpers struct {
	t  *testing.T
	fs afero.Fs
}

// NewFileHelpers creates file helpers bound to fs.
func NewFileHelpers(t *testing.T, fs afero.Fs) *FileHelpers {
	return &FileHelpers{t: t, fs: fs}
}

// WriteHistory writes a history file made of the header and rows to path.
func (f *FileHelpers) WriteHistory(path string, rows ...string) {
	f.t.Helper()
	f.WriteFile(path, HistoryFile(rows...))
}

// WriteFile writes raw content to path, creating parent directories.
func (f *FileHelpers) WriteFile(path, content string) {
	f.t.Helper()
	require.NoError(f.t, f.fs.MkdirAll(filepath.Dir(path), 0755), "Should create directory for %s", path)
	require.NoError(f.t, afero.WriteFile(f.fs, path, []byte(content), 0644), "Should write %s", path)
}

// ReadFile returns the content of path, failing the test when it cannot be read.
func (f *FileHelpers) ReadFile(path string) string {
	f.t.Helper()
	data, err := afero.ReadFile(f.fs, path)
	require.NoError(f.t, err, "Should read %s", path)
	return string(data)
}

// Exists reports whether path exists.
func (f *FileHelpers) Exists(path string) bool {
	f.t.Helper()
	ok, err := afero.Exists(f.fs, path)
	require.NoError(f.t, err)
	return ok
}

// DataRows returns the non-empty lines of path after the header.
func (f *FileHelpers) DataRows(path string) []string {
	f.t.Helper()
	lines := strings.Split(strings.TrimRight(f.ReadFile(path), "\n"), "\n")
	require.NotEmpty(f.t, lines)
	require.Equal(f.t, HistoryHeader, lines[0], "First line of %s should be the header", path)
	var rows []string
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

// ScriptTestData returns batch script fixtures keyed by file name.
func ScriptTestData() map[string]string {
	return map[string]string{
		"basic.calc": `# Basic arithmetic
add 5 3
multiply 2 4
`,
		"errors.calc": `# Errors do not stop the script
divide 10 0
add five 3
subtract 9 4
`,
		"history.calc": `add 1 2
history save backup.csv
history clear
history show
`,
		"empty.calc": `# Nothing to run
`,
	}
}
