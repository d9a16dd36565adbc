// Package host declares the boundary the engine calls out through: a
// named function registry and a display-changed notifier. Both are
// synchronous; the engine supplies no implementation of its own.
package host

import "cellgraph/coord"

// Value is an opaque value owned and interpreted by the host. The
// engine carries it through unchanged; a literal cell Value(text)
// surfaces to the host as a plain Go string, and range references
// surface as a Sequence.
type Value = any

// Sequence is the host-facing representation of a range reference's
// collected values.
type Sequence []Value

// FunctionCaller evaluates a named function against a vector of
// already-resolved argument values.
type FunctionCaller interface {
	CallHost(name string, args []Value) (Value, error)
}

// DisplayNotifier is called once a cell's resolved value has changed
// and is ready to render. A returned error aborts the propagation that
// triggered it; any store mutations committed up to that point stand.
type DisplayNotifier interface {
	CellDisplayChanged(key coord.Key, value Value) error
}

// HostError wraps an opaque error surfaced by a FunctionCaller or
// DisplayNotifier so callers can distinguish it from the engine's own
// parse/structural errors.
type HostError struct {
	Err error
}

func (e *HostError) Error() string {
	return e.Err.Error()
}

func (e *HostError) Unwrap() error {
	return e.Err
}
