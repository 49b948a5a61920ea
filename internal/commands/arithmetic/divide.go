package arithmetic

import (
	"calcshell/internal/commands"
	"calcshell/internal/ledger"
	"calcshell/pkg/calctypes"
)

// NewDivideCommand creates the divide command bound to l.
func NewDivideCommand(l *ledger.Ledger) *BinaryCommand {
	return &BinaryCommand{
		name:        "divide",
		symbol:      "/",
		description: "Divides the first number by the second.",
		compute:     calctypes.Value.Quo,
		examples: []calctypes.HelpExample{
			{Command: "divide 10 4", Description: "Result: 2.5"},
			{Command: "divide 1 3", Description: "Result: 0.3333333333333333333333333333"},
		},
		notes: []string{
			"Dividing by zero is rejected and nothing is recorded.",
			"Quotients carry at most 28 significant digits, rounded half to even.",
		},
		ledger: l,
	}
}

func init() {
	commands.RegisterPlugin(commands.Plugin{
		Name: "divide",
		New:  func(l *ledger.Ledger) any { return NewDivideCommand(l) },
	})
}
