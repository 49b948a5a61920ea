// Package ledger keeps the ordered history of calculations and mirrors it to an active CSV
// history file.
//
// A Ledger is either unbound (memory only) or bound to one active file. While bound, the
// records that are not pending are always the ones the file holds. Pending records are those
// appended but not yet written, either because the flush policy stages them or because a
// write failed and must be retried.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"calcshell/internal/logger"
	"calcshell/internal/metrics"
	"calcshell/pkg/calctypes"
)

// State describes the relationship between the ledger and its active file.
type State int

const (
	// Unbound means no active file is configured; history lives in memory only.
	Unbound State = iota
	// BoundEmpty means an active file is configured but is missing, empty or unusable.
	BoundEmpty
	// BoundLoaded means the active file exists and its rows are mirrored in memory.
	BoundLoaded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case BoundEmpty:
		return "bound-empty"
	case BoundLoaded:
		return "bound-loaded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FlushPolicy controls when appended records reach the active file.
type FlushPolicy string

const (
	// FlushEach appends one row to the active file per recorded calculation.
	FlushEach FlushPolicy = "flush-each"
	// StageThenFlush keeps records pending until an explicit or threshold flush, Show,
	// Switch or Close.
	StageThenFlush FlushPolicy = "stage-then-flush"
)

// ParseFlushPolicy converts a configuration value into a FlushPolicy.
func ParseFlushPolicy(s string) (FlushPolicy, error) {
	switch FlushPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case FlushEach, "":
		return FlushEach, nil
	case StageThenFlush:
		return StageThenFlush, nil
	default:
		return "", fmt.Errorf("unknown flush policy %q", s)
	}
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithBaseDir sets the directory relative history paths resolve against.
func WithBaseDir(dir string) Option {
	return func(l *Ledger) {
		l.baseDir = dir
	}
}

// WithFlushPolicy sets the flush policy.
func WithFlushPolicy(policy FlushPolicy) Option {
	return func(l *Ledger) {
		l.policy = policy
	}
}

// WithFlushThreshold makes a stage-then-flush ledger flush once this many records are pending.
// Zero disables threshold flushing.
func WithFlushThreshold(n int) Option {
	return func(l *Ledger) {
		if n >= 0 {
			l.threshold = n
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(lg *log.Logger) Option {
	return func(l *Ledger) {
		if lg != nil {
			l.log = lg
		}
	}
}

// Ledger is the session's calculation history.
type Ledger struct {
	mu sync.Mutex

	fs        afero.Fs
	baseDir   string
	policy    FlushPolicy
	threshold int
	log       *log.Logger

	active  string
	state   State
	records []calctypes.Calculation

	// pending counts trailing records not yet written to the active file.
	pending       int
	persistFailed bool
	// needsRewrite is set when the file no longer matches the persisted prefix of records
	// (format fallback, failed append) and the next persist must rewrite it whole.
	needsRewrite bool
}

// NewLedger creates an unbound ledger storing its files on fs.
func NewLedger(fs afero.Fs, opts ...Option) *Ledger {
	l := &Ledger{
		fs:      fs,
		baseDir: "data",
		policy:  FlushEach,
		log:     logger.NewComponentLogger("ledger"),
		state:   Unbound,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Resolve maps a user supplied history path to the path the ledger uses. Relative paths
// resolve under the base directory.
func (l *Ledger) Resolve(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) || l.baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(l.baseDir, path)
}

// Initialize binds the ledger to path and loads its rows. A missing or empty file leaves the
// ledger BoundEmpty. A malformed file is reported with ErrFormat, history falls back to empty
// and the file is rewritten on the next persist. An empty path leaves the ledger Unbound.
func (l *Ledger) Initialize(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if strings.TrimSpace(path) == "" {
		l.resetLocked()
		l.active = ""
		l.state = Unbound
		return nil
	}
	return l.bindLocked(l.Resolve(path))
}

// Append records a calculation. Under FlushEach the row is written immediately; a failed
// write keeps the record in memory as pending, flags the persist failure and returns the
// calculation together with an ErrWrite error.
func (l *Ledger) Append(operation string, operands []calctypes.Value, result calctypes.Value) (calctypes.Calculation, error) {
	calc, err := calctypes.NewCalculation(operation, operands, result)
	if err != nil {
		return calctypes.Calculation{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, calc)
	if l.state != Unbound {
		l.pending++
	}
	l.log.Debug("Recorded calculation", "calculation", calc.String(), "pending", l.pending)

	var flushErr error
	switch {
	case l.state == Unbound:
	case l.policy == FlushEach:
		flushErr = l.flushLocked()
	case l.threshold > 0 && l.pending >= l.threshold:
		l.log.Debug("Flush threshold reached", "pending", l.pending, "threshold", l.threshold)
		flushErr = l.flushLocked()
	}
	l.publishLocked()
	return calc, flushErr
}

// Flush writes pending records to the active file. It is a no-op when nothing is pending or
// the ledger is unbound.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.flushLocked()
	l.publishLocked()
	return err
}

// Switch makes path the active file. Pending records are flushed to the current file first;
// if that fails the loss is logged and the switch proceeds. The in-memory history is replaced
// by the new file's rows, or emptied when it does not exist. The previous file is untouched.
func (l *Ledger) Switch(path string) error {
	resolved := l.Resolve(path)
	if resolved == "" {
		return fmt.Errorf("%w: no history file given", calctypes.ErrInvalidInput)
	}
	return l.switchTo(resolved)
}

func (l *Ledger) switchTo(resolved string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	flushErr := l.flushLocked()
	if flushErr != nil {
		l.log.Error("Unsaved records discarded on switch", "count", l.pending, "path", l.active, "error", flushErr)
	}
	l.log.Info("Switching active history file", "from", l.active, "to", resolved)
	bindErr := l.bindLocked(resolved)
	l.publishLocked()
	return errors.Join(flushErr, bindErr)
}

// Load switches to an existing history file. A missing file fails with ErrNotFound and leaves
// the ledger unchanged.
func (l *Ledger) Load(path string) error {
	resolved := l.Resolve(path)
	if resolved == "" {
		return fmt.Errorf("%w: no history file given", calctypes.ErrInvalidInput)
	}
	exists, err := afero.Exists(l.fs, resolved)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", resolved, err)
	}
	if !exists {
		l.log.Warn("History file not found", "path", resolved)
		return fmt.Errorf("%w: %s", calctypes.ErrNotFound, resolved)
	}
	return l.switchTo(resolved)
}

// SaveAs writes the whole history to path and returns the resolved path. The active binding
// is not changed. Saving onto the active file acts as a full flush.
func (l *Ledger) SaveAs(path string) (string, error) {
	resolved := l.Resolve(path)
	if resolved == "" {
		return "", fmt.Errorf("%w: no history file given", calctypes.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.records) == 0 {
		l.log.Warn("Saving empty history", "path", resolved)
	}

	err := l.writeAllLocked(resolved)
	metrics.RecordWrite("save_as", err)
	if err != nil {
		return resolved, err
	}

	if resolved == l.active {
		l.markPersistedLocked()
		l.publishLocked()
	}
	l.log.Info("History saved", "path", resolved, "records", len(l.records))
	return resolved, nil
}

// Clear empties the history and deletes the active file. Memory is cleared in every case;
// ErrNotFound is returned when there is no file to delete.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resetLocked()
	defer l.publishLocked()

	if l.state == Unbound {
		l.log.Warn("No active history file to clear")
		return fmt.Errorf("%w: no active history file", calctypes.ErrNotFound)
	}
	l.state = BoundEmpty

	exists, err := afero.Exists(l.fs, l.active)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", calctypes.ErrWrite, l.active, err)
	}
	if !exists {
		l.log.Warn("History file already absent", "path", l.active)
		return fmt.Errorf("%w: %s", calctypes.ErrNotFound, l.active)
	}

	err = l.fs.Remove(l.active)
	metrics.RecordWrite("delete", err)
	if err != nil {
		l.persistFailed = true
		l.needsRewrite = true
		return fmt.Errorf("%w: failed to delete %s: %v", calctypes.ErrWrite, l.active, err)
	}
	l.log.Info("History cleared", "path", l.active)
	return nil
}

// DeleteLast removes the most recent calculation and returns it. A pending record is simply
// dropped; a persisted one is removed from the file by rewriting it. Empty history is a no-op
// reported by ok == false.
func (l *Ledger) DeleteLast() (calc calctypes.Calculation, ok bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.publishLocked()

	n := len(l.records)
	if n == 0 {
		l.log.Warn("No calculations to delete")
		return calctypes.Calculation{}, false, nil
	}

	calc = l.records[n-1]
	l.records = l.records[:n-1]

	if l.state == Unbound {
		return calc, true, nil
	}
	if l.pending > 0 {
		l.pending--
		l.log.Debug("Dropped pending calculation", "calculation", calc.String())
		return calc, true, nil
	}

	if err := l.rewriteLocked(); err != nil {
		return calc, true, err
	}
	return calc, true, nil
}

// Show flushes pending records, re-reads the active file so out-of-band edits are picked up,
// and returns the resulting history. When the flush fails the in-memory history is returned
// together with the error.
func (l *Ledger) Show() ([]calctypes.Calculation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.publishLocked()

	if l.state == Unbound {
		return l.copyLocked(), nil
	}

	if err := l.flushLocked(); err != nil {
		l.log.Warn("Showing unsaved history", "pending", l.pending, "error", err)
		return l.copyLocked(), err
	}

	err := l.bindLocked(l.active)
	return l.copyLocked(), err
}

// ReadFile parses any history file without touching the ledger.
func (l *Ledger) ReadFile(path string) ([]calctypes.Calculation, error) {
	resolved := l.Resolve(path)
	if resolved == "" {
		return nil, fmt.Errorf("%w: no history file given", calctypes.ErrInvalidInput)
	}
	data, err := afero.ReadFile(l.fs, resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", calctypes.ErrNotFound, resolved)
		}
		return nil, fmt.Errorf("failed to read %s: %w", resolved, err)
	}
	calcs, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	return calcs, nil
}

// Close flushes pending records at normal session exit.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending > 0 {
		l.log.Info("Flushing pending history on exit", "pending", l.pending, "path", l.active)
	}
	err := l.flushLocked()
	l.publishLocked()
	return err
}

// State returns the active-file state.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// ActiveFile returns the resolved active file path, or "" when unbound.
func (l *Ledger) ActiveFile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Policy returns the flush policy.
func (l *Ledger) Policy() FlushPolicy {
	return l.policy
}

// Len returns the number of calculations in memory.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Records returns a copy of the in-memory history.
func (l *Ledger) Records() []calctypes.Calculation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyLocked()
}

// Last returns the most recent calculation.
func (l *Ledger) Last() (calctypes.Calculation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) == 0 {
		return calctypes.Calculation{}, false
	}
	return l.records[len(l.records)-1], true
}

// ByOperation returns the calculations of one operation kind in computation order.
func (l *Ledger) ByOperation(operation string) []calctypes.Calculation {
	operation = strings.ToLower(strings.TrimSpace(operation))

	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []calctypes.Calculation
	for _, calc := range l.records {
		if calc.Operation() == operation {
			matched = append(matched, calc)
		}
	}
	return matched
}

// Pending returns the number of records not yet written to the active file.
func (l *Ledger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// PersistFailed reports whether the last write to the active file failed.
func (l *Ledger) PersistFailed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persistFailed
}

// bindLocked points the ledger at path and replaces memory with the file's rows.
func (l *Ledger) bindLocked(path string) error {
	l.resetLocked()
	l.active = path
	l.state = BoundEmpty

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.log.Debug("History file does not exist yet", "path", path)
			return nil
		}
		l.log.Error("Failed to read history file", "path", path, "error", err)
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	calcs, err := Decode(data)
	if err != nil {
		l.log.Error("Malformed history file, starting with empty history", "path", path, "error", err)
		l.needsRewrite = true
		return fmt.Errorf("%s: %w", path, err)
	}

	l.records = calcs
	if len(calcs) > 0 {
		l.state = BoundLoaded
	}
	l.log.Debug("History loaded", "path", path, "records", len(calcs))
	return nil
}

// flushLocked persists pending records, rewriting the whole file when required. A file that
// fell back to empty history is left alone until there is something new to write.
func (l *Ledger) flushLocked() error {
	if l.state == Unbound {
		l.pending = 0
		return nil
	}
	if l.pending == 0 && !l.persistFailed {
		return nil
	}

	if l.needsRewrite {
		return l.rewriteLocked()
	}

	err := l.appendLocked(l.records[len(l.records)-l.pending:])
	metrics.RecordWrite("append", err)
	if err != nil {
		l.persistFailed = true
		// A partial append may have left a torn row behind.
		l.needsRewrite = true
		l.log.Error("Failed to write history", "path", l.active, "pending", l.pending, "error", err)
		return err
	}
	l.markPersistedLocked()
	return nil
}

// rewriteLocked replaces the active file with the full in-memory history.
func (l *Ledger) rewriteLocked() error {
	err := l.writeAllLocked(l.active)
	metrics.RecordWrite("rewrite", err)
	if err != nil {
		l.persistFailed = true
		l.needsRewrite = true
		l.log.Error("Failed to rewrite history", "path", l.active, "error", err)
		return err
	}
	l.markPersistedLocked()
	return nil
}

func (l *Ledger) markPersistedLocked() {
	l.pending = 0
	l.persistFailed = false
	l.needsRewrite = false
	if len(l.records) > 0 {
		l.state = BoundLoaded
	} else {
		l.state = BoundEmpty
	}
}

// appendLocked appends rows to the active file, writing the header first when the file is new
// or empty.
func (l *Ledger) appendLocked(calcs []calctypes.Calculation) error {
	if err := l.fs.MkdirAll(filepath.Dir(l.active), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %s: %v", calctypes.ErrWrite, l.active, err)
	}

	f, err := l.fs.OpenFile(l.active, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", calctypes.ErrWrite, l.active, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: failed to stat %s: %v", calctypes.ErrWrite, l.active, err)
	}
	if info.Size() == 0 {
		if err := EncodeHeader(f); err != nil {
			return fmt.Errorf("%w: %s: %v", calctypes.ErrWrite, l.active, err)
		}
	} else if !l.endsWithNewline(info.Size()) {
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("%w: %s: %v", calctypes.ErrWrite, l.active, err)
		}
	}

	if err := EncodeRows(f, calcs); err != nil {
		return fmt.Errorf("%w: %s: %v", calctypes.ErrWrite, l.active, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", calctypes.ErrWrite, l.active, err)
	}
	return nil
}

// endsWithNewline reports whether the active file's last byte is a newline. Hand-edited files
// often lack one.
func (l *Ledger) endsWithNewline(size int64) bool {
	f, err := l.fs.Open(l.active)
	if err != nil {
		return true
	}
	defer f.Close()

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return true
	}
	return last[0] == '\n'
}

// writeAllLocked writes the full history to path through a temporary file and a rename.
func (l *Ledger) writeAllLocked(path string) error {
	data, err := Encode(l.records)
	if err != nil {
		return fmt.Errorf("%w: failed to encode history: %v", calctypes.ErrWrite, err)
	}
	if err := l.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory for %s: %v", calctypes.ErrWrite, path, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(l.fs, tmp, data, 0644); err != nil {
		_ = l.fs.Remove(tmp)
		return fmt.Errorf("%w: failed to write %s: %v", calctypes.ErrWrite, path, err)
	}
	if err := l.fs.Rename(tmp, path); err != nil {
		_ = l.fs.Remove(tmp)
		return fmt.Errorf("%w: failed to replace %s: %v", calctypes.ErrWrite, path, err)
	}
	return nil
}

func (l *Ledger) resetLocked() {
	l.records = nil
	l.pending = 0
	l.persistFailed = false
	l.needsRewrite = false
}

func (l *Ledger) copyLocked() []calctypes.Calculation {
	out := make([]calctypes.Calculation, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) publishLocked() {
	metrics.SetLedgerSize(len(l.records), l.pending)
}
