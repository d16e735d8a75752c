package query

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch reports an operator applied to a value of the wrong type.
	ErrTypeMismatch = errors.New("query: operand type mismatch")
	// ErrMalformedQuery reports a query string that cannot be decoded.
	ErrMalformedQuery = errors.New("query: malformed query string")
)

// OperandError describes the condition that could not be evaluated.
type OperandError struct {
	Field string
	Op    string
	Value any
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("query: %s on field %q: value %v (%T) is not text", e.Op, e.Field, e.Value, e.Value)
}

func (e *OperandError) Unwrap() error { return ErrTypeMismatch }
