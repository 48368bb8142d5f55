package pscal

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by RuntimeError. Use errors.Is to classify.
var (
	ErrOutOfBounds     = errors.New("index out of bounds")
	ErrIndexArity      = errors.New("wrong number of indices")
	ErrNotLValue       = errors.New("expression is not assignable")
	ErrNotRecord       = errors.New("value is not a record")
	ErrNotArray        = errors.New("value is not an array or string")
	ErrFieldNotFound   = errors.New("field not found")
	ErrNotPointer      = errors.New("value is not a pointer")
	ErrAllocation      = errors.New("allocation failed")
	ErrUndeclared      = errors.New("undeclared identifier")
	ErrConstAssign     = errors.New("cannot assign to constant")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrDanglingPointer = errors.New("dangling pointer")
	ErrNilPointer      = errors.New("nil pointer dereference")
)

// RuntimeError is a non-recoverable fault inside the value engine.
// The operation that produced it has not mutated any cell.
type RuntimeError struct {
	Kind     error
	Message  string
	Position *SourcePosition
}

func (e *RuntimeError) Error() string {
	if e.Position != nil && e.Position.Line > 0 {
		filename := e.Position.Filename
		if filename == "" {
			filename = "<unknown>"
		}
		return fmt.Sprintf("Runtime error: %s (at line %d, column %d in %s)", e.Message, e.Position.Line, e.Position.Column, filename)
	}
	return "Runtime error: " + e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.Kind
}

func runtimeErrorf(kind error, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// withPosition attaches a position to a RuntimeError that has none yet
func withPosition(err error, pos *SourcePosition) error {
	var rerr *RuntimeError
	if pos != nil && errors.As(err, &rerr) && rerr.Position == nil {
		rerr.Position = pos
	}
	return err
}
