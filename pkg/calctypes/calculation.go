package calctypes

import (
	"fmt"
	"strings"
)

// OperandCount is the fixed arity of every calculation kind.
const OperandCount = 2

// Calculation is one recorded computation. It is immutable: the accessors return copies
// and there are no setters.
type Calculation struct {
	operation string
	operands  []Value
	result    Value
}

// NewCalculation creates a Calculation after checking that exactly OperandCount operands
// were supplied and that the operation name is not empty.
func NewCalculation(operation string, operands []Value, result Value) (Calculation, error) {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		return Calculation{}, fmt.Errorf("%w: operation name cannot be empty", ErrInvalidInput)
	}
	if len(operands) != OperandCount {
		return Calculation{}, fmt.Errorf("%w: %s expects %d operands, got %d",
			ErrInvalidInput, operation, OperandCount, len(operands))
	}

	ops := make([]Value, len(operands))
	copy(ops, operands)

	return Calculation{
		operation: operation,
		operands:  ops,
		result:    result,
	}, nil
}

// Operation returns the name of the arithmetic kind performed.
func (c Calculation) Operation() string {
	return c.operation
}

// Operands returns a copy of the operands in input order.
func (c Calculation) Operands() []Value {
	ops := make([]Value, len(c.operands))
	copy(ops, c.operands)
	return ops
}

// Result returns the computed output.
func (c Calculation) Result() Value {
	return c.result
}

// Equal reports whether two calculations have the same operation, operands and result,
// comparing values numerically.
func (c Calculation) Equal(o Calculation) bool {
	if c.operation != o.operation || len(c.operands) != len(o.operands) {
		return false
	}
	for i := range c.operands {
		if !c.operands[i].Equal(o.operands[i]) {
			return false
		}
	}
	return c.result.Equal(o.result)
}

// FormatOperands renders the operands as a bracketed list, e.g. "[5, 3]".
// This is the text stored in the operands column of a history file.
func (c Calculation) FormatOperands() string {
	parts := make([]string, len(c.operands))
	for i, v := range c.operands {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String returns a human readable form such as "Add: [5, 3] = 8".
func (c Calculation) String() string {
	name := c.operation
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s: %s = %s", name, c.FormatOperands(), c.result)
}
