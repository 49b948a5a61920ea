// Package calctypes defines the value and record types shared by the calculator packages.
// This file contains Value, the exact decimal used for every operand and result.
package calctypes

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Precision is the number of significant digits kept by division results.
const Precision = 28

// exact is the context for Add, Sub and Mul. Precision 0 keeps every digit, so these
// operations never round.
var exact = apd.Context{
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
}

// division is the context for Quo. Inexact quotients round half-even to Precision digits.
var division = apd.Context{
	Precision:   Precision,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundHalfEven,
}

// Value is an immutable exact decimal number.
// The zero Value is 0. Operations always return new Values and never modify their receivers.
type Value struct {
	d *apd.Decimal
}

// ParseValue parses the decimal text s. Leading and trailing whitespace is ignored.
// Non-numeric input, NaN and infinities fail with ErrInvalidOperand.
func ParseValue(s string) (Value, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Value{}, fmt.Errorf("%w: empty value", ErrInvalidOperand)
	}

	d, _, err := apd.NewFromString(text)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidOperand, s)
	}
	if d.Form != apd.Finite {
		return Value{}, fmt.Errorf("%w: %q is not a finite number", ErrInvalidOperand, s)
	}

	return Value{d: d}, nil
}

// MustParseValue is like ParseValue but panics on invalid input.
// It is meant for constants and tests.
func MustParseValue(s string) Value {
	v, err := ParseValue(s)
	if err != nil {
		panic(err)
	}
	return v
}

// NewValueFromInt returns the Value for an integer.
func NewValueFromInt(i int64) Value {
	return Value{d: apd.New(i, 0)}
}

func (v Value) dec() *apd.Decimal {
	if v.d == nil {
		return apd.New(0, 0)
	}
	return v.d
}

// String returns the exact decimal text of v, using scientific notation only for very
// small or very large exponents.
func (v Value) String() string {
	return v.dec().String()
}

// IsZero reports whether v is exactly zero.
func (v Value) IsZero() bool {
	return v.dec().IsZero()
}

// Cmp compares v and o numerically and returns -1, 0 or +1.
func (v Value) Cmp(o Value) int {
	return v.dec().Cmp(o.dec())
}

// Equal reports whether v and o are numerically equal (2.50 equals 2.5).
func (v Value) Equal(o Value) bool {
	return v.Cmp(o) == 0
}

// Add returns v + o.
func (v Value) Add(o Value) (Value, error) {
	d := new(apd.Decimal)
	if _, err := exact.Add(d, v.dec(), o.dec()); err != nil {
		return Value{}, fmt.Errorf("add %s and %s: %w", v, o, err)
	}
	return Value{d: d}, nil
}

// Sub returns v - o.
func (v Value) Sub(o Value) (Value, error) {
	d := new(apd.Decimal)
	if _, err := exact.Sub(d, v.dec(), o.dec()); err != nil {
		return Value{}, fmt.Errorf("subtract %s from %s: %w", o, v, err)
	}
	return Value{d: d}, nil
}

// Mul returns v * o.
func (v Value) Mul(o Value) (Value, error) {
	d := new(apd.Decimal)
	if _, err := exact.Mul(d, v.dec(), o.dec()); err != nil {
		return Value{}, fmt.Errorf("multiply %s by %s: %w", v, o, err)
	}
	return Value{d: d}, nil
}

// Quo returns v / o. A zero divisor fails with ErrDivisionByZero before any division is attempted.
// The quotient keeps Precision significant digits and is reduced to its shortest exact form,
// so 10 / 4 is 2.5 and 6 / 3 is 2.
func (v Value) Quo(o Value) (Value, error) {
	if o.IsZero() {
		return Value{}, fmt.Errorf("%w: %s / %s", ErrDivisionByZero, v, o)
	}

	q := new(apd.Decimal)
	if _, err := division.Quo(q, v.dec(), o.dec()); err != nil {
		return Value{}, fmt.Errorf("divide %s by %s: %w", v, o, err)
	}
	q.Reduce(q)

	// Reduce turns 100 into 1E+2; keep whole numbers in plain form when they fit.
	if q.Exponent > 0 {
		whole := new(apd.Decimal)
		if _, err := division.Quantize(whole, q, 0); err == nil {
			q = whole
		}
	}

	return Value{d: q}, nil
}
