package arithmetic

import (
	"calcshell/internal/commands"
	"calcshell/internal/ledger"
	"calcshell/pkg/calctypes"
)

// NewAddCommand creates the add command bound to l.
func NewAddCommand(l *ledger.Ledger) *BinaryCommand {
	return &BinaryCommand{
		name:        "add",
		symbol:      "+",
		description: "Adds two numbers.",
		compute:     calctypes.Value.Add,
		examples: []calctypes.HelpExample{
			{Command: "add 5 3", Description: "Result: 8"},
			{Command: "add 0.1 0.2", Description: "Result: 0.3, exact decimal arithmetic"},
		},
		ledger: l,
	}
}

func init() {
	commands.RegisterPlugin(commands.Plugin{
		Name: "add",
		New:  func(l *ledger.Ledger) any { return NewAddCommand(l) },
	})
}
