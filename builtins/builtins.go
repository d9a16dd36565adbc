// Package builtins implements a host.FunctionCaller with the
// arithmetic and text functions a sheet formula can name.
package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"cellgraph/host"
)

// Func is a single named host function: it receives its arguments
// already evaluated and returns a host value or an error.
type Func func(args []host.Value) (host.Value, error)

// Registry is a thread-safe, mutable table of named host functions. A
// fresh Registry carries no functions; use NewDefaultRegistry for the
// standard arithmetic/text set.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// NewDefaultRegistry creates a registry pre-loaded with add, sub, div,
// mul, pow, sum, avg, med, and concat_with.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("add", func(args []host.Value) (host.Value, error) { return binaryNumeric(args, func(a, b float64) float64 { return a + b }) })
	r.Register("sub", func(args []host.Value) (host.Value, error) { return binaryNumeric(args, func(a, b float64) float64 { return a - b }) })
	r.Register("mul", func(args []host.Value) (host.Value, error) { return binaryNumeric(args, func(a, b float64) float64 { return a * b }) })
	r.Register("div", func(args []host.Value) (host.Value, error) { return binaryNumeric(args, func(a, b float64) float64 { return a / b }) })
	r.Register("pow", pow)
	r.Register("sum", sum)
	r.Register("avg", avg)
	r.Register("med", med)
	r.Register("concat_with", concatWith)
	return r
}

// Register installs or replaces a named function.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()
}

// CallHost implements host.FunctionCaller.
func (r *Registry) CallHost(name string, args []host.Value) (host.Value, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown function %q", name)
	}
	return fn(args)
}

func binaryNumeric(args []host.Value, op func(a, b float64) float64) (host.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	a, err := coerceFloat(args[0])
	if err != nil {
		return nil, err
	}
	b, err := coerceFloat(args[1])
	if err != nil {
		return nil, err
	}
	return op(a, b), nil
}

func pow(args []host.Value) (host.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("pow: expected 2 arguments, got %d", len(args))
	}
	a, err := coerceFloat(args[0])
	if err != nil {
		return nil, err
	}
	n, err := coerceFloat(args[1])
	if err != nil {
		return nil, err
	}
	return math.Pow(a, n), nil
}

func sum(args []host.Value) (host.Value, error) {
	nums, err := flattenNumeric(args)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, n := range nums {
		total += n
	}
	return total, nil
}

func avg(args []host.Value) (host.Value, error) {
	nums, err := flattenNumeric(args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return 0.0, nil
	}
	var total float64
	for _, n := range nums {
		total += n
	}
	return total / float64(len(nums)), nil
}

// med is a discrete median: the element at the midpoint index of the
// flattened argument list, not an interpolated average of the two
// central elements.
func med(args []host.Value) (host.Value, error) {
	nums, err := flattenNumeric(args)
	if err != nil {
		return nil, err
	}
	if len(nums) == 0 {
		return 0.0, nil
	}
	return nums[len(nums)/2], nil
}

func concatWith(args []host.Value) (host.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("concat_with: expected 2 arguments, got %d", len(args))
	}
	sep, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("concat_with: separator must be text")
	}
	parts := flattenStrings(args[0])
	return strings.Join(parts, sep), nil
}

// flattenNumeric coerces every argument to float64, expanding any
// host.Sequence in place and skipping nil (missing-reference) entries.
func flattenNumeric(args []host.Value) ([]float64, error) {
	var out []float64
	for _, a := range args {
		if seq, ok := a.(host.Sequence); ok {
			for _, v := range seq {
				if v == nil {
					continue
				}
				n, err := coerceFloat(v)
				if err != nil {
					return nil, err
				}
				out = append(out, n)
			}
			continue
		}
		if a == nil {
			continue
		}
		n, err := coerceFloat(a)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func flattenStrings(v host.Value) []string {
	if seq, ok := v.(host.Sequence); ok {
		out := make([]string, 0, len(seq))
		for _, e := range seq {
			out = append(out, coerceString(e))
		}
		return out
	}
	return []string{coerceString(v)}
}

func coerceString(v host.Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func coerceFloat(v host.Value) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v", t)
	}
}
