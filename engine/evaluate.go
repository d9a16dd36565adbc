package engine

import (
	"sort"

	"cellgraph/coord"
	"cellgraph/expr"
	"cellgraph/host"
	"cellgraph/ref"
)

// evaluate resolves an expression to a host value, recording every
// cell, column, and row it touched into deps.
func (s *State) evaluate(e expr.Expression, deps *Dependencies) (host.Value, error) {
	switch v := e.(type) {
	case expr.Value:
		return v.Text, nil

	case expr.Function:
		args := make([]host.Value, len(v.Inputs))
		for i, input := range v.Inputs {
			val, err := s.evaluate(input, deps)
			if err != nil {
				return nil, err
			}
			args[i] = val
		}
		if s.caller == nil {
			return nil, &host.HostError{Err: errNoFunctionCaller{name: v.Name}}
		}
		val, err := s.caller.CallHost(v.Name, args)
		if err != nil {
			return nil, &host.HostError{Err: err}
		}
		return val, nil

	case expr.Reference:
		return s.evaluateReference(v.Ref, deps)
	}
	return nil, &badExpressionKindError{}
}

func (s *State) evaluateReference(r ref.Reference, deps *Dependencies) (host.Value, error) {
	switch rr := r.(type) {
	case ref.Single:
		deps.addSingle(rr.Key)
		return s.resolveSingleForDeps(rr.Key)

	case ref.BoundedRange:
		minCol, maxCol := rr.Start.Col, rr.End.Col
		if minCol > maxCol {
			minCol, maxCol = maxCol, minCol
		}
		minRow, maxRow := rr.Start.Row, rr.End.Row
		if minRow > maxRow {
			minRow, maxRow = maxRow, minRow
		}
		var seq host.Sequence
		for col := minCol; col <= maxCol; col++ {
			for row := minRow; row <= maxRow; row++ {
				k := coord.Key{Col: col, Row: row}
				deps.addSingle(k)
				val, err := s.resolveSingleForDeps(k)
				if err != nil {
					return nil, err
				}
				if val == nil {
					continue
				}
				seq = append(seq, val)
			}
		}
		return seq, nil

	case ref.UnboundedColRange:
		startCol, endCol := rr.Start.Col, rr.EndCol
		if startCol > endCol {
			startCol, endCol = endCol, startCol
		}
		for col := startCol; col <= endCol; col++ {
			deps.addCol(col)
		}
		var keys []coord.Key
		for k := range s.cells {
			if k.Col >= startCol && k.Col <= endCol && k.Row >= rr.Start.Row {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Col != keys[j].Col {
				return keys[i].Col < keys[j].Col
			}
			return keys[i].Row < keys[j].Row
		})
		var seq host.Sequence
		for _, k := range keys {
			deps.addSingle(k)
			val, err := s.resolveSingleForDeps(k)
			if err != nil {
				return nil, err
			}
			if val == nil {
				continue
			}
			seq = append(seq, val)
		}
		return seq, nil

	case ref.UnboundedRowRange:
		startRow, endRow := rr.Start.Row, rr.EndRow
		if startRow > endRow {
			startRow, endRow = endRow, startRow
		}
		for row := startRow; row <= endRow; row++ {
			deps.addRow(row)
		}
		var keys []coord.Key
		for k := range s.cells {
			if k.Row >= startRow && k.Row <= endRow && k.Col >= rr.Start.Col {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Row != keys[j].Row {
				return keys[i].Row < keys[j].Row
			}
			return keys[i].Col < keys[j].Col
		})
		var seq host.Sequence
		for _, k := range keys {
			deps.addSingle(k)
			val, err := s.resolveSingleForDeps(k)
			if err != nil {
				return nil, err
			}
			if val == nil {
				continue
			}
			seq = append(seq, val)
		}
		return seq, nil
	}
	return nil, &badExpressionKindError{}
}

// resolveSingleForDeps returns a target cell's value for use as a
// dependency of the cell currently being evaluated. A missing cell
// resolves to nil (the "null/empty" policy); an existing but
// never-resolved cell (the bulk-load lazy case) is resolved and
// memoized on the spot, with its own dependency set recorded for it.
func (s *State) resolveSingleForDeps(key coord.Key) (host.Value, error) {
	target, ok := s.cells[key]
	if !ok {
		return nil, nil
	}
	if target.Resolved != nil {
		return *target.Resolved, nil
	}
	targetDeps := newDependencies()
	val, err := s.evaluate(target.Expr, targetDeps)
	if err != nil {
		return nil, err
	}
	target.Resolved = &val
	target.Deps = targetDeps
	s.addToRev(key, diffDependencies(nil, targetDeps))
	return val, nil
}

type errNoFunctionCaller struct{ name string }

func (e errNoFunctionCaller) Error() string {
	return "no function caller configured for " + e.name
}

type badExpressionKindError struct{}

func (badExpressionKindError) Error() string { return "unrecognized expression kind" }
