package engine

import (
	"cellgraph/coord"
	"cellgraph/expr"
)

// CopyCellExpression reads from's expression, translates it by the
// distance from `from` to `to`, and returns the translated formula
// text. It does not write to the destination; the caller decides
// whether and how to Upsert it.
func (s *State) CopyCellExpression(from, to coord.Key) (string, error) {
	cell, ok := s.cells[from]
	if !ok {
		return "", &NotFoundError{Key: from}
	}
	distance := from.Distance(to)
	copied, err := expr.Copy(cell.Expr, distance)
	if err != nil {
		return "", err
	}
	return expr.Display(copied), nil
}
