// Package arithmetic provides the binary arithmetic commands of calcshell: add, subtract,
// multiply and divide. Each command registers itself in the plugin catalog from init.
package arithmetic

import (
	"errors"
	"fmt"

	"calcshell/internal/ledger"
	"calcshell/internal/logger"
	"calcshell/pkg/calctypes"
)

// ComputeFunc computes the result of a binary operation.
type ComputeFunc func(a, b calctypes.Value) (calctypes.Value, error)

// BinaryCommand is a two-operand arithmetic command. Every successful calculation is
// appended to the ledger exactly once; a failed one records nothing.
type BinaryCommand struct {
	name        string
	symbol      string
	description string
	compute     ComputeFunc
	examples    []calctypes.HelpExample
	notes       []string
	ledger      *ledger.Ledger
}

// Name returns the command name used for registration and lookup.
func (c *BinaryCommand) Name() string {
	return c.name
}

// Description returns a brief description of what the command does.
func (c *BinaryCommand) Description() string {
	return c.description
}

// Usage returns the syntax of the command.
func (c *BinaryCommand) Usage() string {
	return fmt.Sprintf("Usage: %s <value1> <value2> - %s", c.name, c.description)
}

// HelpInfo returns structured help information for the command.
func (c *BinaryCommand) HelpInfo() calctypes.HelpInfo {
	return calctypes.HelpInfo{
		Command:     c.name,
		Description: c.description,
		Usage:       fmt.Sprintf("%s <value1> <value2>", c.name),
		Arguments: []calctypes.HelpArg{
			{Name: "value1", Description: "first operand, an exact decimal such as 5, -2.5 or 1e3", Required: true},
			{Name: "value2", Description: "second operand", Required: true},
		},
		Examples: c.examples,
		Notes:    c.notes,
	}
}

// Calculate computes the result and records it. When the ledger fails to persist the record
// the result is still returned, together with the ErrWrite error.
func (c *BinaryCommand) Calculate(a, b calctypes.Value) (calctypes.Value, error) {
	result, err := c.compute(a, b)
	if err != nil {
		logger.Error("Calculation failed", "command", c.name, "a", a, "b", b, "error", err)
		return calctypes.Value{}, err
	}

	if _, err := c.ledger.Append(c.name, []calctypes.Value{a, b}, result); err != nil {
		return result, err
	}
	logger.Info("Executed "+c.name, "expression", fmt.Sprintf("%s %s %s = %s", a, c.symbol, b, result))
	return result, nil
}

// Execute parses exactly two decimal arguments, calculates and returns "Result: <value>".
func (c *BinaryCommand) Execute(args []string) (string, error) {
	if len(args) != calctypes.OperandCount {
		return "", fmt.Errorf("%w: %s expects %d values, got %d",
			calctypes.ErrInvalidInput, c.name, calctypes.OperandCount, len(args))
	}

	a, err := calctypes.ParseValue(args[0])
	if err != nil {
		return "", err
	}
	b, err := calctypes.ParseValue(args[1])
	if err != nil {
		return "", err
	}

	result, err := c.Calculate(a, b)
	if err != nil && !errors.Is(err, calctypes.ErrWrite) {
		return "", err
	}
	return fmt.Sprintf("Result: %s", result), err
}
