// Package shell provides the calcshell session controller and its interactive and batch
// front ends. A Session owns the ledger and the command registry and turns every input line
// into exactly one command dispatch.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"calcshell/internal/commands"
	_ "calcshell/internal/commands/arithmetic" // Register arithmetic commands (init functions)
	_ "calcshell/internal/commands/history"    // Register the history command (init functions)
	"calcshell/internal/config"
	"calcshell/internal/ledger"
	"calcshell/internal/logger"
	"calcshell/internal/metrics"
	"calcshell/internal/output"
	"calcshell/internal/testutils"
	"calcshell/internal/theme"
	"calcshell/internal/version"
	"calcshell/pkg/calctypes"
)

// ErrInternal marks a command that panicked.
var ErrInternal = errors.New("internal error")

// Diagnostics printed for errors at the session boundary.
const (
	UnknownCommandMessage = "Invalid operation. Type 'help' to see available commands."
	InvalidInputMessage   = "Invalid input. Please enter valid numbers and an operation."
	DivisionByZeroMessage = "Error: Division by zero."
	UsageHintMessage      = "Run <command> help to see usage details."
	GoodbyeMessage        = "Exiting the calculator. Goodbye!"
)

// Session orchestrates user commands against the registry and the ledger.
type Session struct {
	id       string
	cfg      *config.Config
	ledger   *ledger.Ledger
	registry *commands.Registry
	theme    *theme.Theme
	printer  *output.Printer
	log      *log.Logger
	failures int
}

// Option configures a Session.
type Option func(*Session)

// WithPrinter sets the printer used for all user-facing output.
func WithPrinter(p *output.Printer) Option {
	return func(s *Session) {
		s.printer = p
	}
}

// WithTheme overrides the theme selected from the configuration.
func WithTheme(t *theme.Theme) Option {
	return func(s *Session) {
		s.theme = t
	}
}

// NewSession builds a session over fs: it binds the ledger to the configured history file and
// registers every catalogued plugin. A history file that cannot be read is reported and the
// session starts with empty history.
func NewSession(cfg *config.Config, fs afero.Fs, opts ...Option) (*Session, error) {
	policy, err := ledger.ParseFlushPolicy(cfg.FlushPolicy)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:  testutils.GenerateSessionID(cfg.TestMode),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.NewComponentLogger("session").With("session", s.id)

	if s.theme == nil {
		s.theme = theme.NewService().SelectForTerminal(cfg.Theme)
	}
	theme.SetCurrent(s.theme)

	if s.printer == nil {
		printerOpts := []output.Option{output.WithStyles(s.theme)}
		if cfg.TestMode || !output.IsTerminal() {
			printerOpts = append(printerOpts, output.PlainText())
		}
		s.printer = output.NewPrinter(printerOpts...)
	}

	s.ledger = ledger.NewLedger(fs,
		ledger.WithBaseDir(cfg.HistoryDir),
		ledger.WithFlushPolicy(policy),
		ledger.WithFlushThreshold(cfg.FlushThreshold),
		ledger.WithLogger(logger.NewComponentLogger("ledger").With("session", s.id)),
	)
	if err := s.ledger.Initialize(cfg.HistoryFile); err != nil {
		s.report(err)
	}

	s.registry = commands.NewDefaultRegistry(s.ledger)
	count := s.registry.RegisterAll()
	s.log.Info("Session started", "version", version.GetVersion(), "commands", count,
		"history", s.ledger.ActiveFile(), "policy", policy)
	return s, nil
}

// ID returns the session identifier used in log entries.
func (s *Session) ID() string {
	return s.id
}

// Ledger returns the session's ledger.
func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// Registry returns the session's command registry.
func (s *Session) Registry() *commands.Registry {
	return s.registry
}

// Failures returns how many commands ended with a diagnostic.
func (s *Session) Failures() int {
	return s.failures
}

// Banner prints the greeting and the command menu.
func (s *Session) Banner() {
	s.printer.Bold(version.GetFormattedVersion())
	s.printer.Println(" - exact decimal calculator")
	s.PrintMenu()
}

// PrintMenu lists the registered commands with their descriptions.
func (s *Session) PrintMenu() {
	s.printer.Println("")
	s.printer.Println("Available commands:")
	items := make([]string, 0, len(s.registry.ListNames()))
	for _, name := range s.registry.ListNames() {
		item := s.theme.GetStyle(string(output.SemanticCommand)).Render(name)
		if desc := s.registry.Describe(name); desc != "" {
			item += " - " + desc
		}
		items = append(items, item)
	}
	s.printer.Println(s.theme.CreateList(items...).String())
	s.printer.Println("")
	s.printer.Info(UsageHintMessage)
}

// StatusLine returns the active history file indicator shown between commands.
func (s *Session) StatusLine() string {
	active := s.ledger.ActiveFile()
	if active == "" {
		active = "none"
	}
	return fmt.Sprintf("[Active history file: %s]", active)
}

// PrintStatus prints StatusLine.
func (s *Session) PrintStatus() {
	s.printer.Highlight(s.StatusLine())
	s.printer.Println("")
}

// Execute runs one input line and reports whether the session should end. Command and
// subcommand tokens are case-insensitive; file names keep their case.
func (s *Session) Execute(line string) (exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name := commands.NormalizeName(fields[0])
	args := fields[1:]
	if len(args) > 0 {
		args[0] = strings.ToLower(args[0])
	}

	switch {
	case name == "exit":
		s.log.Info("User exited the application")
		s.printer.Println(GoodbyeMessage)
		return true
	case name == "help" && len(args) == 0:
		s.PrintMenu()
		return false
	case name == "help" && len(args) == 1:
		s.printHelp(args[0])
		return false
	case len(args) == 1 && args[0] == "help":
		s.printHelp(name)
		return false
	}

	out, err := s.run(name, args)
	metrics.RecordCommand(metricsName(s.registry, name), errorKind(err))
	if out != "" {
		if strings.HasPrefix(out, "Result:") {
			s.printer.Result(out)
		} else {
			s.printer.Println(out)
		}
	}
	if err != nil {
		s.failures++
		s.report(err)
		if errors.Is(err, calctypes.ErrInvalidInput) || errors.Is(err, calctypes.ErrInvalidOperand) {
			if handler, lookupErr := s.registry.Create(name); lookupErr == nil {
				s.printer.Info(handler.Usage())
			}
		}
	}
	return false
}

// run dispatches one command with panics contained.
func (s *Session) run(name string, args []string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Command panicked", "command", name, "panic", r, "stack", string(debug.Stack()))
			out = ""
			err = fmt.Errorf("%w: %s: %v", ErrInternal, name, r)
		}
	}()
	return s.registry.Execute(name, args)
}

func (s *Session) printHelp(name string) {
	handler, err := s.registry.Create(name)
	if err != nil {
		s.printer.Error("Invalid command for help. Type 'help' to see available commands.")
		return
	}
	if hp, ok := handler.(calctypes.HelpProvider); ok {
		s.printer.Println(hp.HelpInfo().Text())
		return
	}
	s.printer.Println(handler.Usage())
}

// report prints the diagnostic for err and logs it.
func (s *Session) report(err error) {
	switch {
	case errors.Is(err, calctypes.ErrUnknownCommand):
		s.log.Warn("Invalid operation attempted", "error", err)
		s.printer.Error(UnknownCommandMessage)
	case errors.Is(err, calctypes.ErrDivisionByZero):
		s.log.Error("Division by zero attempted")
		s.printer.Error(DivisionByZeroMessage)
	case errors.Is(err, calctypes.ErrInvalidOperand):
		s.log.Error("Invalid input provided", "error", err)
		s.printer.Error(InvalidInputMessage)
	case errors.Is(err, calctypes.ErrInvalidInput):
		s.log.Error("Invalid input provided", "error", err)
		s.printer.Error(err.Error())
	case errors.Is(err, calctypes.ErrWrite):
		s.log.Error("History write failed", "error", err, "pending", s.ledger.Pending())
		s.printer.Warning(fmt.Sprintf("Could not write history: %v. Run 'history save' to retry.", err))
	case errors.Is(err, calctypes.ErrFormat):
		s.log.Error("Malformed history file", "error", err)
		s.printer.Warning(fmt.Sprintf("History file is malformed, using empty history: %v", err))
	case errors.Is(err, calctypes.ErrNotFound):
		s.log.Warn("History file not found", "error", err)
		s.printer.Error(err.Error())
	case errors.Is(err, ErrInternal):
		s.printer.Error(fmt.Sprintf("An internal error occurred: %v", err))
	default:
		s.log.Error("An error occurred during command execution", "error", err)
		s.printer.Error(fmt.Sprintf("An error occurred: %v", err))
		s.printer.Info(UsageHintMessage)
	}
}

// RunScript executes every non-empty line of r that does not start with '#'. It stops early
// at an exit line and returns a read error, if any.
func (s *Session) RunScript(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.log.Debug("Script line", "line", lineNo, "input", line)
		s.printer.Prompt("calc> ", line)
		if s.Execute(line) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	return nil
}

// Close flushes pending history, logs a per-operation summary and writes the metrics textfile
// when one is configured.
func (s *Session) Close() error {
	var errs []error
	if err := s.ledger.Close(); err != nil {
		s.report(err)
		errs = append(errs, err)
	}

	summary := make(map[string]int)
	for _, name := range s.registry.ListNames() {
		if n := len(s.ledger.ByOperation(name)); n > 0 {
			summary[name] = n
		}
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, summary[k])
	}
	s.log.Info("Session summary", append([]interface{}{"records", s.ledger.Len(), "failures", s.failures}, kv...)...)

	if s.cfg.MetricsFile != "" {
		if err := metrics.WriteFile(s.cfg.MetricsFile); err != nil {
			s.log.Error("Failed to write metrics", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// metricsName keeps label cardinality bounded: unknown names are counted together.
func metricsName(r *commands.Registry, name string) string {
	if r.IsValidCommand(name) {
		return name
	}
	return "unknown"
}

// errorKind maps err to the kind label of CommandErrorsTotal; "" means success.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, calctypes.ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, calctypes.ErrInvalidOperand):
		return "invalid_operand"
	case errors.Is(err, calctypes.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, calctypes.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, calctypes.ErrNotFound):
		return "not_found"
	case errors.Is(err, calctypes.ErrFormat):
		return "format"
	case errors.Is(err, calctypes.ErrWrite):
		return "write"
	case errors.Is(err, ErrInternal):
		return "internal"
	default:
		return "other"
	}
}
