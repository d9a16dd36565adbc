package coord

import "testing"

func TestColumnToIndexValues(t *testing.T) {
	cases := map[string]uint{
		"A":   1,
		"a":   1,
		"Z":   26,
		"AA":  27,
		"AAB": 54,
	}
	for name, want := range cases {
		got, err := ColumnToIndex(name)
		if err != nil {
			t.Fatalf("ColumnToIndex(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ColumnToIndex(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestColumnRoundTrip(t *testing.T) {
	for _, name := range []string{"a", "b", "ab", "aax", "z", "aa"} {
		idx, err := ColumnToIndex(name)
		if err != nil {
			t.Fatalf("ColumnToIndex(%q): %v", name, err)
		}
		if got := IndexToColumn(idx); got != name {
			t.Errorf("IndexToColumn(ColumnToIndex(%q)) = %q, want %q", name, got, name)
		}
	}
	for _, idx := range []uint{1, 2, 26, 27, 28, 52, 53, 54, 676} {
		name := IndexToColumn(idx)
		got, err := ColumnToIndex(name)
		if err != nil {
			t.Fatalf("ColumnToIndex(%q): %v", name, err)
		}
		if got != idx {
			t.Errorf("ColumnToIndex(IndexToColumn(%d)) = %d, want %d", idx, got, idx)
		}
	}
}

func TestColumnToIndexRejectsBadShapes(t *testing.T) {
	for _, bad := range []string{"", "abx", "1", "a1", "a-b"} {
		if _, err := ColumnToIndex(bad); err == nil {
			t.Errorf("ColumnToIndex(%q) expected error, got nil", bad)
		}
	}
}

func TestKeyDistanceAndAdd(t *testing.T) {
	if d := (Key{1, 1}).Distance(Key{2, 1}); d != (Distance{1, 0}) {
		t.Errorf("got %+v", d)
	}
	if d := (Key{10, 10}).Distance(Key{8, 12}); d != (Distance{-2, 2}) {
		t.Errorf("got %+v", d)
	}

	x := Key{0, 0}
	for _, tc := range []struct {
		d    Distance
		want Key
	}{
		{Distance{1, 0}, Key{1, 0}},
		{Distance{0, 1}, Key{0, 1}},
		{Distance{3, 3}, Key{3, 3}},
	} {
		got, err := x.Add(tc.d)
		if err != nil {
			t.Fatalf("Add(%+v): %v", tc.d, err)
		}
		if got != tc.want {
			t.Errorf("Add(%+v) = %+v, want %+v", tc.d, got, tc.want)
		}
	}

	y := Key{10, 10}
	if got, err := y.Add(Distance{-1, 0}); err != nil || got != (Key{9, 10}) {
		t.Errorf("got %+v, %v", got, err)
	}

	start := Key{9, 76}
	end := Key{1382, 21}
	got, err := start.Add(start.Distance(end))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got != end {
		t.Errorf("round trip distance = %+v, want %+v", got, end)
	}
}

func TestKeyAddUnderflows(t *testing.T) {
	if _, err := (Key{0, 0}).Add(Distance{-1, 0}); err == nil {
		t.Error("expected underflow error")
	}
	if _, err := (Key{0, 0}).Add(Distance{0, -1}); err == nil {
		t.Error("expected underflow error")
	}
}

func TestDisplayAndSerializeForms(t *testing.T) {
	k := Key{Col: 28, Row: 12}
	if got := k.Display(); got != "AB12" {
		t.Errorf("Display() = %q, want AB12", got)
	}
	if got := k.Serialize(); got != "28-12" {
		t.Errorf("Serialize() = %q, want 28-12", got)
	}

	parsed, err := ParseDisplay("AB12")
	if err != nil || parsed != k {
		t.Errorf("ParseDisplay(AB12) = %+v, %v", parsed, err)
	}

	parsedSer, err := ParseSerialized("28-12")
	if err != nil || parsedSer != k {
		t.Errorf("ParseSerialized(28-12) = %+v, %v", parsedSer, err)
	}

	if _, err := ParseSerialized("x-y"); err == nil {
		t.Error("expected error for malformed serialized key")
	}
}
