package calctypes

import "errors"

// Error kinds surfaced by the calculator. Callers wrap them with fmt.Errorf("...: %w", ...)
// and match them with errors.Is.
var (
	// ErrUnknownCommand is returned when a command name is not registered.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidOperand is returned when an argument is not a finite decimal number.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrInvalidInput is returned for wrong argument counts and unknown subcommands.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionByZero is returned when the divisor of a division is exactly zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNotFound is returned when a referenced history file does not exist.
	ErrNotFound = errors.New("history file not found")

	// ErrFormat is returned when a history file exists but its structure is invalid.
	ErrFormat = errors.New("malformed history file")

	// ErrWrite is returned when a history file cannot be written.
	ErrWrite = errors.New("history write failed")
)
