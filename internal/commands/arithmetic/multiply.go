package arithmetic

import (
	"calcshell/internal/commands"
	"calcshell/internal/ledger"
	"calcshell/pkg/calctypes"
)

// NewMultiplyCommand creates the multiply command bound to l.
func NewMultiplyCommand(l *ledger.Ledger) *BinaryCommand {
	return &BinaryCommand{
		name:        "multiply",
		symbol:      "*",
		description: "Multiplies two numbers.",
		compute:     calctypes.Value.Mul,
		examples: []calctypes.HelpExample{
			{Command: "multiply 2 4", Description: "Result: 8"},
			{Command: "multiply 1.5 4", Description: "Result: 6.0, scale is kept"},
		},
		ledger: l,
	}
}

func init() {
	commands.RegisterPlugin(commands.Plugin{
		Name: "multiply",
		New:  func(l *ledger.Ledger) any { return NewMultiplyCommand(l) },
	})
}
