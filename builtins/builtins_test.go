package builtins

import (
	"testing"

	"cellgraph/host"
)

func call(t *testing.T, r *Registry, name string, args ...host.Value) host.Value {
	t.Helper()
	v, err := r.CallHost(name, args)
	if err != nil {
		t.Fatalf("CallHost(%s): %v", name, err)
	}
	return v
}

func TestArithmetic(t *testing.T) {
	r := NewDefaultRegistry()
	if got := call(t, r, "add", "2", "3"); got != 5.0 {
		t.Errorf("add(2,3) = %v, want 5", got)
	}
	if got := call(t, r, "sub", "5", "2"); got != 3.0 {
		t.Errorf("sub(5,2) = %v, want 3", got)
	}
	if got := call(t, r, "mul", "4", "2"); got != 8.0 {
		t.Errorf("mul(4,2) = %v, want 8", got)
	}
	if got := call(t, r, "pow", "2", "10"); got != 1024.0 {
		t.Errorf("pow(2,10) = %v, want 1024", got)
	}
}

func TestAddTreatsMissingReferenceAsZero(t *testing.T) {
	r := NewDefaultRegistry()
	if got := call(t, r, "add", nil, "3"); got != 3.0 {
		t.Errorf("add(nil,3) = %v, want 3", got)
	}
}

func TestAvg(t *testing.T) {
	r := NewDefaultRegistry()
	if got := call(t, r, "avg", host.Sequence{}); got != 0.0 {
		t.Errorf("avg([]) = %v, want 0", got)
	}
	if got := call(t, r, "avg", host.Sequence{"1", "2", "3"}); got != 2.0 {
		t.Errorf("avg([1,2,3]) = %v, want 2", got)
	}
}

func TestMedIsDiscrete(t *testing.T) {
	r := NewDefaultRegistry()
	if got := call(t, r, "med", host.Sequence{}); got != 0.0 {
		t.Errorf("med([]) = %v, want 0", got)
	}
	if got := call(t, r, "med", host.Sequence{"1", "2", "3", "4", "5"}); got != 3.0 {
		t.Errorf("med(1..5) = %v, want 3", got)
	}
	if got := call(t, r, "med", host.Sequence{"1", "2", "3", "4", "5", "6"}); got != 4.0 {
		t.Errorf("med(1..6) = %v, want 4 (discrete, not averaged)", got)
	}
}

func TestConcatWith(t *testing.T) {
	r := NewDefaultRegistry()
	got := call(t, r, "concat_with", host.Sequence{"I", "want", "to", "join", "some", "text."}, " ")
	if got != "I want to join some text." {
		t.Errorf("concat_with = %q", got)
	}
	got = call(t, r, "concat_with", host.Sequence{"a", "list", "of", "items"}, ", ")
	if got != "a, list, of, items" {
		t.Errorf("concat_with = %q", got)
	}
}

func TestUnknownFunction(t *testing.T) {
	r := NewDefaultRegistry()
	if _, err := r.CallHost("nope", nil); err == nil {
		t.Error("expected error for unknown function")
	}
}

func TestRegisterInstallsFunction(t *testing.T) {
	r := NewRegistry()
	r.Register("always5", func(args []host.Value) (host.Value, error) { return 5.0, nil })
	if got := call(t, r, "always5"); got != 5.0 {
		t.Errorf("always5() = %v, want 5", got)
	}
}
