// Package engine implements the cell graph: the registry of cells, the
// forward/reverse dependency indices, the evaluator, the incremental
// recomputer, and serialization of the full sheet state.
package engine

import (
	"cellgraph/expr"
	"cellgraph/host"
)

// Cell holds one cell's raw text, its last successfully parsed
// expression, and the most recent evaluation outcome.
type Cell struct {
	Raw      string
	Expr     expr.Expression
	Resolved *host.Value
	Deps     *Dependencies
}

func newCell(raw string, e expr.Expression) *Cell {
	return &Cell{Raw: raw, Expr: e}
}
