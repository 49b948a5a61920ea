// Package history provides the administrative history command: it maps its subcommands onto
// the ledger's load, save, clear, delete and show operations.
package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"calcshell/internal/commands"
	"calcshell/internal/ledger"
	"calcshell/internal/logger"
	"calcshell/internal/theme"
	"calcshell/pkg/calctypes"
)

// Name is the registered command name.
const Name = "history"

// Messages shown for outcomes that are not errors.
const (
	ClearedMessage         = "History cleared."
	ClearedNoFileMessage   = "History cleared (no history file to delete)."
	NothingToDeleteMessage = "No calculations to delete."
)

// Command implements the history handler.
type Command struct {
	ledger *ledger.Ledger
	log    *log.Logger
}

// NewCommand creates the history command bound to l.
func NewCommand(l *ledger.Ledger) *Command {
	return &Command{ledger: l, log: logger.NewComponentLogger("history")}
}

// Name returns "history".
func (c *Command) Name() string {
	return Name
}

// Description returns the menu line of the command.
func (c *Command) Description() string {
	return "Manage calculation history: load, save, clear, delete, show."
}

// Usage returns the syntax of the command.
func (c *Command) Usage() string {
	return "Usage: history <load <file>|save [file]|clear|delete|show [file]|help>"
}

// HelpInfo returns structured help information for the command.
func (c *Command) HelpInfo() calctypes.HelpInfo {
	return calctypes.HelpInfo{
		Command:     Name,
		Description: c.Description(),
		Usage:       "history <subcommand> [file]",
		Arguments: []calctypes.HelpArg{
			{Name: "subcommand", Description: "one of load, save, clear, delete, show, help", Required: true},
			{Name: "file", Description: "history file; relative names live in the history directory", Required: false},
		},
		Examples: []calctypes.HelpExample{
			{Command: "history show", Description: "Show the active history as a table"},
			{Command: "history show old.csv", Description: "Show another file without switching to it"},
			{Command: "history load work.csv", Description: "Make work.csv the active history file"},
			{Command: "history save", Description: "Write staged calculations to the active file"},
			{Command: "history save backup.csv", Description: "Copy the history to backup.csv"},
			{Command: "history delete", Description: "Remove the most recent calculation"},
			{Command: "history clear", Description: "Empty the history and delete the active file"},
		},
		Notes: []string{
			"load replaces the in-memory history with the file's contents, it never merges.",
			"save <file> writes a copy and keeps the current active file.",
		},
	}
}

// Execute dispatches a subcommand. args[0] is the subcommand and args[1] an optional file.
func (c *Command) Execute(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: missing history subcommand", calctypes.ErrInvalidInput)
	}
	if len(args) > 2 {
		return "", fmt.Errorf("%w: history takes a subcommand and at most one file", calctypes.ErrInvalidInput)
	}

	sub := strings.ToLower(strings.TrimSpace(args[0]))
	file := ""
	if len(args) == 2 {
		file = strings.TrimSpace(args[1])
	}
	c.log.Debug("History subcommand", "subcommand", sub, "file", file)

	switch sub {
	case "load":
		return c.load(file)
	case "save":
		return c.save(file)
	case "clear":
		return c.clear()
	case "delete":
		return c.deleteLast()
	case "show":
		return c.show(file)
	case "help":
		return c.HelpInfo().Text(), nil
	default:
		return "", fmt.Errorf("%w: unknown history subcommand %q, use load, save, clear, delete or show",
			calctypes.ErrInvalidInput, sub)
	}
}

func (c *Command) load(file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("%w: usage: history load <file>", calctypes.ErrInvalidInput)
	}
	if err := c.ledger.Load(file); err != nil {
		if errors.Is(err, calctypes.ErrFormat) {
			return fmt.Sprintf("Loaded %s as an empty history.", c.ledger.ActiveFile()), err
		}
		return "", err
	}
	return fmt.Sprintf("Loaded %d calculations from %s.", c.ledger.Len(), c.ledger.ActiveFile()), nil
}

func (c *Command) save(file string) (string, error) {
	if file == "" {
		if c.ledger.State() == ledger.Unbound {
			return "", fmt.Errorf("%w: no active history file, usage: history save <file>", calctypes.ErrInvalidInput)
		}
		pending := c.ledger.Pending()
		if err := c.ledger.Flush(); err != nil {
			return "", err
		}
		return fmt.Sprintf("Saved %d pending calculations to %s.", pending, c.ledger.ActiveFile()), nil
	}

	path, err := c.ledger.SaveAs(file)
	if err != nil {
		return "", err
	}
	if c.ledger.Len() == 0 {
		return fmt.Sprintf("History is empty; wrote header only to %s.", path), nil
	}
	return fmt.Sprintf("Saved %d calculations to %s.", c.ledger.Len(), path), nil
}

func (c *Command) clear() (string, error) {
	err := c.ledger.Clear()
	switch {
	case err == nil:
		return ClearedMessage, nil
	case errors.Is(err, calctypes.ErrNotFound):
		c.log.Info("Nothing to delete on clear", "reason", err)
		return ClearedNoFileMessage, nil
	default:
		return "", err
	}
}

func (c *Command) deleteLast() (string, error) {
	calc, ok, err := c.ledger.DeleteLast()
	if !ok {
		return NothingToDeleteMessage, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Deleted last calculation: %s.", calc)
	if last, found := c.ledger.Last(); found {
		fmt.Fprintf(&b, "\nMost recent is now: %s.", last)
	}
	return b.String(), err
}

func (c *Command) show(file string) (string, error) {
	var (
		calcs []calctypes.Calculation
		err   error
	)
	if file != "" {
		calcs, err = c.ledger.ReadFile(file)
		if err != nil {
			return "", err
		}
	} else {
		calcs, err = c.ledger.Show()
	}

	table, renderErr := ledger.Render(calcs, theme.Current().TableStyle())
	if renderErr != nil {
		c.log.Error("History contains unreadable records", "error", renderErr)
		table += "\nSome records could not be displayed; see the log for details."
	}
	return table, err
}

func init() {
	commands.RegisterPlugin(commands.Plugin{
		Name: Name,
		New:  func(l *ledger.Ledger) any { return NewCommand(l) },
	})
}
