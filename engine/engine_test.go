package engine

import (
	"testing"

	"cellgraph/builtins"
	"cellgraph/coord"
	"cellgraph/host"
)

func mustKey(t *testing.T, display string) coord.Key {
	t.Helper()
	k, err := coord.ParseDisplay(display)
	if err != nil {
		t.Fatalf("ParseDisplay(%s): %v", display, err)
	}
	return k
}

type recordingNotifier struct {
	events []event
}

type event struct {
	key   coord.Key
	value host.Value
}

func (r *recordingNotifier) CellDisplayChanged(key coord.Key, value host.Value) error {
	r.events = append(r.events, event{key, value})
	return nil
}

func newTestState(notifier host.DisplayNotifier) *State {
	return New(builtins.NewDefaultRegistry(), notifier)
}

func TestChainedArithmetic(t *testing.T) {
	n := &recordingNotifier{}
	s := newTestState(n)

	a1, a2, b1 := mustKey(t, "A1"), mustKey(t, "A2"), mustKey(t, "B1")
	if _, err := s.Upsert(a1, "2"); err != nil {
		t.Fatalf("upsert A1: %v", err)
	}
	if _, err := s.Upsert(a2, "3"); err != nil {
		t.Fatalf("upsert A2: %v", err)
	}
	if _, err := s.Upsert(b1, "=add(A1,A2)"); err != nil {
		t.Fatalf("upsert B1: %v", err)
	}
	got, ok := s.GetResolved(b1)
	if !ok || got != 5.0 {
		t.Fatalf("B1 = %v, ok=%v, want 5", got, ok)
	}

	n.events = nil
	if _, err := s.Upsert(a1, "10"); err != nil {
		t.Fatalf("upsert A1 again: %v", err)
	}
	got, ok = s.GetResolved(b1)
	if !ok || got != 13.0 {
		t.Fatalf("B1 = %v, ok=%v, want 13", got, ok)
	}
	found := false
	for _, e := range n.events {
		if e.key == b1 && e.value == 13.0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected cell_display_changed(B1, 13), got %+v", n.events)
	}
}

func TestCycleRejection(t *testing.T) {
	s := newTestState(nil)
	a1, a2 := mustKey(t, "A1"), mustKey(t, "A2")

	if _, err := s.Upsert(a1, "=A2"); err != nil {
		t.Fatalf("upsert A1: %v", err)
	}
	_, err := s.Upsert(a2, "=A1")
	if err == nil {
		t.Fatal("expected CircularDependencyError")
	}
	cycleErr, ok := err.(*CircularDependencyError)
	if !ok {
		t.Fatalf("expected *CircularDependencyError, got %T (%v)", err, err)
	}
	want := []coord.Key{a2, a1, a2}
	if len(cycleErr.Chain) != len(want) {
		t.Fatalf("chain = %v, want %v", cycleErr.Chain, want)
	}
	for i := range want {
		if cycleErr.Chain[i] != want[i] {
			t.Fatalf("chain = %v, want %v", cycleErr.Chain, want)
		}
	}

	if _, ok := s.GetRaw(a2); ok {
		t.Error("A2 should not have been written")
	}
	resolved, ok := s.GetResolved(a1)
	if !ok {
		t.Fatal("A1 should have resolved once")
	}
	if resolved != nil {
		t.Errorf("A1 should resolve to the null/empty sentinel, got %v", resolved)
	}
}

func TestUnboundedColumnRange(t *testing.T) {
	s := newTestState(nil)
	a1, a2, a3, a4, b1 := mustKey(t, "A1"), mustKey(t, "A2"), mustKey(t, "A3"), mustKey(t, "A4"), mustKey(t, "B1")

	for _, kv := range []struct {
		k coord.Key
		v string
	}{{a1, "1"}, {a2, "2"}, {a3, "3"}} {
		if _, err := s.Upsert(kv.k, kv.v); err != nil {
			t.Fatalf("upsert %v: %v", kv.k, err)
		}
	}
	if _, err := s.Upsert(b1, "=avg(A1:A)"); err != nil {
		t.Fatalf("upsert B1: %v", err)
	}
	got, _ := s.GetResolved(b1)
	if got != 2.0 {
		t.Fatalf("B1 = %v, want 2", got)
	}

	if _, err := s.Upsert(a4, "6"); err != nil {
		t.Fatalf("upsert A4: %v", err)
	}
	got, _ = s.GetResolved(b1)
	if got != 3.0 {
		t.Fatalf("B1 after A4 = %v, want 3", got)
	}
}

func TestRemovePropagates(t *testing.T) {
	s := newTestState(nil)
	a1, a2, b1 := mustKey(t, "A1"), mustKey(t, "A2"), mustKey(t, "B1")
	if _, err := s.Upsert(a1, "2"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(a2, "3"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(b1, "=add(A1,A2)"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(a1); err != nil {
		t.Fatalf("remove A1: %v", err)
	}
	if _, ok := s.GetRaw(a1); ok {
		t.Error("A1 should be gone")
	}
	got, ok := s.GetResolved(b1)
	if !ok {
		t.Fatal("B1 should have re-resolved")
	}
	if got != 3.0 {
		t.Fatalf("B1 after removing A1 = %v, want 3 (add(nil,3))", got)
	}
}

func TestCopyWithDistance(t *testing.T) {
	s := newTestState(nil)
	c1, c2 := mustKey(t, "C1"), mustKey(t, "C2")
	if _, err := s.Upsert(c1, "=add(A1,B1)"); err != nil {
		t.Fatal(err)
	}
	text, err := s.CopyCellExpression(c1, c2)
	if err != nil {
		t.Fatalf("CopyCellExpression: %v", err)
	}
	if text != "=add(A2,B2)" {
		t.Errorf("copied expression = %q, want =add(A2,B2)", text)
	}
	if _, ok := s.GetRaw(c2); ok {
		t.Error("copy must not write the destination cell")
	}
}

func TestQuotedStringLiteral(t *testing.T) {
	s := newTestState(nil)
	a1, x1 := mustKey(t, "A1"), mustKey(t, "X1")
	if _, err := s.Upsert(a1, "hello"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Upsert(x1, `=concat_with(A1:A, ", ")`)
	if err != nil {
		t.Fatalf("upsert X1: %v", err)
	}
	if got != "hello" {
		t.Errorf("X1 = %v, want %q", got, "hello")
	}
}

func TestIdempotentUpsert(t *testing.T) {
	s := newTestState(nil)
	a1, a2, b1 := mustKey(t, "A1"), mustKey(t, "A2"), mustKey(t, "B1")
	if _, err := s.Upsert(a1, "2"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(a2, "3"); err != nil {
		t.Fatal(err)
	}
	first, err := s.Upsert(b1, "=add(A1,A2)")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Upsert(b1, "=add(A1,A2)")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("idempotent upsert produced different values: %v vs %v", first, second)
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	s := newTestState(nil)
	a1, a2, b1 := mustKey(t, "A1"), mustKey(t, "A2"), mustKey(t, "B1")
	if _, err := s.Upsert(a1, "2"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(a2, "3"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(b1, "=add(A1,A2)"); err != nil {
		t.Fatal(err)
	}

	doc := s.ToSerializable()
	loaded, err := FromSerializable(doc, builtins.NewDefaultRegistry(), nil)
	if err != nil {
		t.Fatalf("FromSerializable: %v", err)
	}
	if loaded.SheetBounds != s.SheetBounds {
		t.Errorf("sheet bounds = %v, want %v", loaded.SheetBounds, s.SheetBounds)
	}
	for _, k := range []coord.Key{a1, a2, b1} {
		wantRaw, _ := s.GetRaw(k)
		gotRaw, ok := loaded.GetRaw(k)
		if !ok || gotRaw != wantRaw {
			t.Errorf("raw[%v] = %q, want %q", k, gotRaw, wantRaw)
		}
	}
	got, ok := loaded.GetResolved(b1)
	if !ok || got != 5.0 {
		t.Errorf("loaded B1 = %v, ok=%v, want 5", got, ok)
	}
}

func TestFromSerializableRejectsMalformedKey(t *testing.T) {
	doc := Document{SheetBounds: [2]uint{27, 65}, Data: map[string]string{"not-a-key": "1"}}
	if _, err := FromSerializable(doc, nil, nil); err == nil {
		t.Fatal("expected BadSerializationError")
	} else if _, ok := err.(*BadSerializationError); !ok {
		t.Fatalf("got %T, want *BadSerializationError", err)
	}
}

func TestBadExpressionLeavesStoreUnchanged(t *testing.T) {
	s := newTestState(nil)
	a1 := mustKey(t, "A1")
	if _, err := s.Upsert(a1, "=add(1,2"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, ok := s.GetRaw(a1); ok {
		t.Error("cell should not be written after a parse error")
	}
}
