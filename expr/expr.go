// Package expr implements the expression tree, a closed sum type over
// function calls, references, and literal values, together with its
// recursive-descent parser and copy-with-distance translation.
package expr

import (
	"fmt"
	"strings"

	"cellgraph/coord"
	"cellgraph/ref"
)

// Expression is the closed sum type over Function, Reference, and Value.
type Expression interface {
	isExpression()
}

// Function is a named call over zero or more argument expressions.
type Function struct {
	Name   string
	Inputs []Expression
}

// Reference wraps a parsed reference target.
type Reference struct {
	Ref ref.Reference
}

// Value is a literal; it remains textual, numeric parsing is the
// host's responsibility.
type Value struct {
	Text string
}

func (Function) isExpression()  {}
func (Reference) isExpression() {}
func (Value) isExpression()     {}

// BadExpressionError reports a parse failure with a short reason,
// matching the taxonomy in the expression grammar: unclosed bracket,
// root comma, empty argument, unbalanced quote.
type BadExpressionError struct {
	Input  string
	Reason string
}

func (e *BadExpressionError) Error() string {
	return fmt.Sprintf("bad expression %q: %s", e.Input, e.Reason)
}

func badExpr(input, reason string) error {
	return &BadExpressionError{Input: input, Reason: reason}
}

const (
	equalSign      = '='
	comma          = ','
	openingBracket = '('
	closingBracket = ')'
	doubleQuote    = '"'
)

// Parse parses raw cell text into an Expression. A leading '=' is
// stripped and the remainder parsed as a function call or atom; absent
// the leading '=', the whole input is returned unchanged as a Value.
func Parse(input string) (Expression, error) {
	return parseInner(input, true)
}

// parseInner implements the single left-to-right scanning pass
// described by the grammar: it maintains bracket depth, an accumulator
// of untokenized text, whether it is inside a quoted literal, and the
// function node currently under construction. Nested function bodies
// are handled by recursively parsing the accumulated argument text
// once a separating comma or the closing bracket at depth 1 is seen.
func parseInner(input string, root bool) (Expression, error) {
	body, hadEqual := strings.CutPrefix(input, string(equalSign))
	if !hadEqual {
		if root {
			return Value{Text: input}, nil
		}
		body = input
	}

	var taken strings.Builder
	var quoted *strings.Builder
	var fn *Function
	depth := 0

	for _, c := range body {
		if c == doubleQuote {
			if quoted != nil {
				text := quoted.String()
				quoted = nil
				if fn != nil {
					fn.Inputs = append(fn.Inputs, Value{Text: text})
				} else {
					taken.WriteString(text)
				}
			} else {
				quoted = &strings.Builder{}
			}
			continue
		}

		if quoted != nil {
			quoted.WriteRune(c)
			continue
		}

		switch c {
		case comma:
			if depth == 0 {
				return nil, badExpr(input, "comma at root")
			}
			if depth > 1 {
				taken.WriteRune(c)
				continue
			}
			if taken.Len() == 0 {
				return nil, badExpr(input, "empty argument")
			}
			if strings.TrimSpace(taken.String()) != "" {
				arg, err := parseInner(taken.String(), false)
				if err != nil {
					return nil, err
				}
				fn.Inputs = append(fn.Inputs, arg)
			}
			taken.Reset()
		case openingBracket:
			depth++
			if depth > 1 {
				taken.WriteRune(c)
				continue
			}
			name := strings.TrimSpace(taken.String())
			fn = &Function{Name: name, Inputs: []Expression{}}
			taken.Reset()
		case closingBracket:
			depth--
			if depth > 0 {
				taken.WriteRune(c)
				continue
			}
			if depth < 0 {
				return nil, badExpr(input, "unmatched closing bracket")
			}
			if strings.TrimSpace(taken.String()) != "" {
				arg, err := parseInner(strings.TrimSpace(taken.String()), false)
				if err != nil {
					return nil, err
				}
				fn.Inputs = append(fn.Inputs, arg)
			}
			if fn == nil {
				return nil, badExpr(input, "unclosed function")
			}
			return *fn, nil
		default:
			taken.WriteRune(c)
		}
	}

	if quoted != nil {
		return nil, badExpr(input, "unbalanced quote")
	}
	if depth > 0 {
		return nil, badExpr(input, "unclosed function")
	}

	trimmed := strings.TrimSpace(taken.String())
	if parsed, err := ref.Parse(trimmed); err == nil {
		return Reference{Ref: parsed}, nil
	}
	return Value{Text: trimmed}, nil
}

// Copy applies a coordinate distance to every reference and
// row-translatable numeric literal in e, used by copy-with-distance
// drag-fill semantics. Numeric literals translate only by the row
// delta, supporting the "drag down a fill series" intuition.
func Copy(e Expression, d coord.Distance) (Expression, error) {
	switch v := e.(type) {
	case Function:
		inputs := make([]Expression, len(v.Inputs))
		for i, in := range v.Inputs {
			copied, err := Copy(in, d)
			if err != nil {
				return nil, err
			}
			inputs[i] = copied
		}
		return Function{Name: v.Name, Inputs: inputs}, nil
	case Reference:
		copied, err := copyRef(v.Ref, d)
		if err != nil {
			return nil, err
		}
		return Reference{Ref: copied}, nil
	case Value:
		if n, ok := parseSignedInt(v.Text); ok {
			return Value{Text: fmt.Sprintf("%d", n+d.DRow)}, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown expression variant %T", e)
	}
}

func copyRef(r ref.Reference, d coord.Distance) (ref.Reference, error) {
	switch v := r.(type) {
	case ref.Single:
		k, err := v.Key.Add(d)
		if err != nil {
			return nil, err
		}
		return ref.Single{Key: k}, nil
	case ref.BoundedRange:
		start, err := v.Start.Add(d)
		if err != nil {
			return nil, err
		}
		end, err := v.End.Add(d)
		if err != nil {
			return nil, err
		}
		return ref.BoundedRange{Start: start, End: end}, nil
	case ref.UnboundedColRange:
		start, err := v.Start.Add(d)
		if err != nil {
			return nil, err
		}
		endCol, err := coord.AddCol(v.EndCol, d.DCol)
		if err != nil {
			return nil, err
		}
		return ref.UnboundedColRange{Start: start, EndCol: endCol}, nil
	case ref.UnboundedRowRange:
		start, err := v.Start.Add(d)
		if err != nil {
			return nil, err
		}
		endRow, err := coord.AddRow(v.EndRow, d.DRow)
		if err != nil {
			return nil, err
		}
		return ref.UnboundedRowRange{Start: start, EndRow: endRow}, nil
	default:
		return nil, fmt.Errorf("unknown reference variant %T", r)
	}
}

func parseSignedInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

// Display renders e back into text. A Function renders as
// "=name(arg,...)"; a Reference or Value renders as its bare text with
// no leading '='. Value text is written as is: quotes around a literal
// are not restored.
func Display(e Expression) string {
	switch v := e.(type) {
	case Function:
		var b strings.Builder
		b.WriteByte(equalSign)
		b.WriteString(v.Name)
		b.WriteByte(openingBracket)
		for i, in := range v.Inputs {
			b.WriteString(Display(in))
			if i < len(v.Inputs)-1 {
				b.WriteByte(comma)
			}
		}
		b.WriteByte(closingBracket)
		return b.String()
	case Reference:
		return ref.Display(v.Ref)
	case Value:
		return v.Text
	default:
		return ""
	}
}
