package engine

import (
	"fmt"

	"cellgraph/coord"
)

// CircularDependencyError reports a cycle discovered during upsert's
// pre-write check. Chain lists the keys from the point of re-entry
// back to itself, in traversal order.
type CircularDependencyError struct {
	Chain []coord.Key
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency: %s", formatChain(e.Chain))
}

func formatChain(chain []coord.Key) string {
	s := ""
	for i, k := range chain {
		if i > 0 {
			s += " -> "
		}
		s += k.Display()
	}
	return s
}

// NotFoundError reports that a referenced cell does not exist in the
// store, for operations that require it to.
type NotFoundError struct {
	Key coord.Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cell not found: %s", e.Key.Display())
}

// BadSerializationError reports a malformed serialized document: a
// key that does not match the "<col>-<row>" form, or a structurally
// invalid document.
type BadSerializationError struct {
	Reason string
}

func (e *BadSerializationError) Error() string {
	return fmt.Sprintf("bad serialization: %s", e.Reason)
}
