package arithmetic

import (
	"calcshell/internal/commands"
	"calcshell/internal/ledger"
	"calcshell/pkg/calctypes"
)

// NewSubtractCommand creates the subtract command bound to l.
func NewSubtractCommand(l *ledger.Ledger) *BinaryCommand {
	return &BinaryCommand{
		name:        "subtract",
		symbol:      "-",
		description: "Subtracts the second number from the first.",
		compute:     calctypes.Value.Sub,
		examples: []calctypes.HelpExample{
			{Command: "subtract 9 4", Description: "Result: 5"},
		},
		ledger: l,
	}
}

func init() {
	commands.RegisterPlugin(commands.Plugin{
		Name: "subtract",
		New:  func(l *ledger.Ledger) any { return NewSubtractCommand(l) },
	})
}
