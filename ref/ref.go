// Package ref implements the reference sum type and its parser: a
// syntactic target of one or more cells (single, bounded range, or
// unbounded column/row range).
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"cellgraph/coord"
)

// Reference is the closed sum type over reference shapes.
type Reference interface {
	isReference()
}

// Single targets exactly one cell.
type Single struct {
	Key coord.Key
}

// BoundedRange targets an inclusive rectangle. The corners need not be
// ordered; min/max is taken at evaluation time.
type BoundedRange struct {
	Start coord.Key
	End   coord.Key
}

// UnboundedColRange targets every cell whose column falls in
// [Start.Col, EndCol] and whose row is >= Start.Row.
type UnboundedColRange struct {
	Start  coord.Key
	EndCol uint
}

// UnboundedRowRange targets every cell whose row falls in
// [Start.Row, EndRow] and whose column is >= Start.Col.
type UnboundedRowRange struct {
	Start  coord.Key
	EndRow uint
}

func (Single) isReference()            {}
func (BoundedRange) isReference()      {}
func (UnboundedColRange) isReference() {}
func (UnboundedRowRange) isReference() {}

// BadReferenceError reports input that cannot be parsed as a Reference.
type BadReferenceError struct {
	Input  string
	Reason string
}

func (e *BadReferenceError) Error() string {
	return fmt.Sprintf("bad reference %q: %s", e.Input, e.Reason)
}

func badRef(input, reason string) error {
	return &BadReferenceError{Input: input, Reason: reason}
}

const colon = ':'

// Parse scans one or two "<letters><digits>" halves separated by a
// single colon. A bare trailing side of letters-only yields an
// UnboundedColRange, digits-only yields an UnboundedRowRange, a full
// half on both sides yields a BoundedRange, and no colon at all with a
// single half yields a Single.
func Parse(input string) (Reference, error) {
	for i := 0; i < len(input); i++ {
		if input[i] > 127 {
			return nil, badRef(input, "input is not ASCII")
		}
	}
	lowered := strings.ToLower(input)

	var alpha, numeric strings.Builder
	var first *coord.Key
	haveFirst := false

	for _, c := range lowered {
		if alpha.Len() == 0 && !haveFirst && !isAlpha(c) {
			return nil, badRef(input, fmt.Sprintf("leading character %q is not alphabetic", c))
		}

		if c == colon {
			if alpha.Len() == 0 || (!haveFirst && numeric.Len() == 0) {
				return nil, badRef(input, "colon too soon")
			}
			if haveFirst {
				return nil, badRef(input, "unexpected extra colon")
			}
			col, err := coord.ColumnToIndex(alpha.String())
			if err != nil {
				return nil, badRef(input, "invalid column letters before colon")
			}
			row, err := strconv.ParseUint(numeric.String(), 10, 64)
			if err != nil {
				return nil, badRef(input, "invalid row digits before colon")
			}
			k := coord.Key{Col: col, Row: uint(row)}
			first = &k
			haveFirst = true
			alpha.Reset()
			numeric.Reset()
			continue
		}

		switch {
		case isAlpha(c):
			if numeric.Len() > 0 {
				return nil, badRef(input, "alphabetic character after numeric")
			}
			alpha.WriteRune(c)
		case c >= '0' && c <= '9':
			numeric.WriteRune(c)
		default:
			return nil, badRef(input, fmt.Sprintf("invalid character %q", c))
		}
	}

	var firstKey coord.Key
	if haveFirst {
		firstKey = *first
	} else {
		if alpha.Len() == 0 {
			return nil, badRef(input, "empty reference")
		}
		col, err := coord.ColumnToIndex(alpha.String())
		if err != nil {
			return nil, badRef(input, "invalid column letters")
		}
		row, err := strconv.ParseUint(numeric.String(), 10, 64)
		if err != nil {
			return nil, badRef(input, "missing row digits")
		}
		firstKey = coord.Key{Col: col, Row: uint(row)}
		alpha.Reset()
		numeric.Reset()
	}

	switch {
	case alpha.Len() > 0 && numeric.Len() > 0:
		col, err := coord.ColumnToIndex(alpha.String())
		if err != nil {
			return nil, badRef(input, "invalid column letters after colon")
		}
		row, err := strconv.ParseUint(numeric.String(), 10, 64)
		if err != nil {
			return nil, badRef(input, "invalid row digits after colon")
		}
		return BoundedRange{Start: firstKey, End: coord.Key{Col: col, Row: uint(row)}}, nil
	case alpha.Len() > 0:
		col, err := coord.ColumnToIndex(alpha.String())
		if err != nil {
			return nil, badRef(input, "invalid column letters after colon")
		}
		return UnboundedColRange{Start: firstKey, EndCol: col}, nil
	case numeric.Len() > 0:
		row, err := strconv.ParseUint(numeric.String(), 10, 64)
		if err != nil {
			return nil, badRef(input, "invalid row digits after colon")
		}
		return UnboundedRowRange{Start: firstKey, EndRow: uint(row)}, nil
	default:
		return Single{Key: firstKey}, nil
	}
}

func isAlpha(c rune) bool {
	return c >= 'a' && c <= 'z'
}

// Display renders a Reference back into its textual form.
func Display(r Reference) string {
	switch v := r.(type) {
	case Single:
		return v.Key.Display()
	case BoundedRange:
		return v.Start.Display() + ":" + v.End.Display()
	case UnboundedColRange:
		return v.Start.Display() + ":" + strings.ToUpper(coord.IndexToColumn(v.EndCol))
	case UnboundedRowRange:
		return v.Start.Display() + ":" + strconv.FormatUint(uint64(v.EndRow), 10)
	default:
		return ""
	}
}
