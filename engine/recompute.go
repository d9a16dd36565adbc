package engine

import (
	"fmt"
	"reflect"

	"cellgraph/coord"
	"cellgraph/expr"
	"cellgraph/host"
	"cellgraph/ref"
)

// Insert parses raw and installs it as key's cell with no resolution
// performed. It is the bulk-load primitive: Upsert is the one that
// resolves and propagates.
func (s *State) Insert(key coord.Key, raw string) error {
	e, err := expr.Parse(raw)
	if err != nil {
		return err
	}
	s.cells[key] = newCell(raw, e)
	return nil
}

// Upsert parses raw, rejects it if installing it would create a
// dependency cycle, then installs it, resolves it, and propagates the
// change to its dependents. It returns the cell's newly resolved
// value.
func (s *State) Upsert(key coord.Key, raw string) (host.Value, error) {
	e, err := expr.Parse(raw)
	if err != nil {
		return nil, err
	}
	if chain := s.findCycle(key, e); chain != nil {
		return nil, &CircularDependencyError{Chain: chain}
	}
	if cell, ok := s.cells[key]; ok {
		cell.Raw = raw
		cell.Expr = e
	} else {
		s.cells[key] = newCell(raw, e)
	}
	return s.resolveCell(key, DisplayUpdateNext)
}

// Remove deletes key's cell, unlinks it from the reverse indices, and
// re-resolves everything that depended on it.
func (s *State) Remove(key coord.Key) error {
	cell, ok := s.cells[key]
	if ok {
		s.removeFromRevForKey(key, cell.Deps)
	}
	delete(s.cells, key)

	dependents := s.dependentsOf(key)

	for dep := range dependents {
		if _, err := s.resolveCell(dep, DisplayUpdate); err != nil {
			return err
		}
	}
	return nil
}

// Recalculate re-resolves every cell in the store, notifying the host
// for each one.
func (s *State) Recalculate() error {
	keys := make([]coord.Key, 0, len(s.cells))
	for k := range s.cells {
		keys = append(keys, k)
	}
	for _, k := range keys {
		if _, err := s.resolveCell(k, DisplayUpdate); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) resolveCell(key coord.Key, display Display) (host.Value, error) {
	cell, ok := s.cells[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}

	oldValue := cell.Resolved
	oldDeps := cell.Deps
	cell.Resolved = nil
	cell.Deps = nil

	newDeps := newDependencies()
	newValue, evalErr := s.evaluate(cell.Expr, newDeps)
	if evalErr != nil {
		newValue = fmt.Sprintf("resolve error: %s", evalErr.Error())
	}

	if display == DisplayUpdate && s.notifier != nil {
		if err := s.notifier.CellDisplayChanged(key, newValue); err != nil {
			return nil, err
		}
	}

	cell.Resolved = &newValue
	cell.Deps = newDeps

	diff := diffDependencies(oldDeps, newDeps)
	s.addToRev(key, diff)

	if oldValue != nil && reflect.DeepEqual(*oldValue, newValue) {
		return newValue, nil
	}

	for dep := range s.dependentsOf(key) {
		if _, err := s.resolveCell(dep, display.next()); err != nil {
			return nil, err
		}
	}
	return newValue, nil
}

// findCycle performs a DFS starting from key's candidate expression
// through the stored expressions of every transitively referenced
// cell. It returns the ordered chain from the re-entry point back to
// itself if key would end up depending on itself, or nil if the graph
// stays acyclic.
func (s *State) findCycle(key coord.Key, candidate expr.Expression) []coord.Key {
	visiting := map[coord.Key]int{key: 0}
	stack := []coord.Key{key}
	if chain := s.dfsCycle(candidate, key, visiting, &stack); chain != nil {
		return chain
	}
	return nil
}

func (s *State) dfsCycle(e expr.Expression, root coord.Key, visiting map[coord.Key]int, stack *[]coord.Key) []coord.Key {
	for _, k := range referencedSingles(e) {
		if k == root {
			chain := append(append([]coord.Key{}, (*stack)...), k)
			return chain
		}
		if _, seen := visiting[k]; seen {
			continue
		}
		cell, ok := s.cells[k]
		if !ok {
			continue
		}
		visiting[k] = len(*stack)
		*stack = append(*stack, k)
		if chain := s.dfsCycle(cell.Expr, root, visiting, stack); chain != nil {
			return chain
		}
		*stack = (*stack)[:len(*stack)-1]
		delete(visiting, k)
	}
	return nil
}

// referencedSingles collects every single-cell key an expression
// names directly, including the anchors of range references (ranges
// cannot participate in a formula cycle through cells not yet in the
// store, but their start corner can).
func referencedSingles(e expr.Expression) []coord.Key {
	var out []coord.Key
	var walk func(expr.Expression)
	walk = func(e expr.Expression) {
		switch v := e.(type) {
		case expr.Function:
			for _, in := range v.Inputs {
				walk(in)
			}
		case expr.Reference:
			out = append(out, referenceKeys(v)...)
		}
	}
	walk(e)
	return out
}

// referenceKeys extracts the cell keys a reference could contribute
// to a dependency cycle: the sole key for Single, both corners for a
// bounded range, and the start corner for an unbounded sweep (its
// open end cannot itself hold a formula that closes the loop back to
// a not-yet-written cell).
func referenceKeys(e expr.Reference) []coord.Key {
	switch rr := e.Ref.(type) {
	case ref.Single:
		return []coord.Key{rr.Key}
	case ref.BoundedRange:
		return []coord.Key{rr.Start, rr.End}
	case ref.UnboundedColRange:
		return []coord.Key{rr.Start}
	case ref.UnboundedRowRange:
		return []coord.Key{rr.Start}
	}
	return nil
}
