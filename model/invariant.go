package model

import "fmt"

// InvariantError is the panic value raised when a reader observes an
// internally inconsistent state: a malformed handle, an unknown virtual
// slot, or a projected session without an anchor row.
//
// It is never returned as an error. A recovered InvariantError points at a
// defect in the layer that produced the handle.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("asmref: invariant violation in %s: %s", e.Op, e.Detail)
}

func invariantf(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Invariantf builds an InvariantError for panicking.
func Invariantf(op, format string, args ...any) *InvariantError {
	return invariantf(op, format, args...)
}
