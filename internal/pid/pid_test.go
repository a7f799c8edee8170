package pid

import "testing"

func TestGUIDOrdering(t *testing.T) {
	a := GUID{DatabaseID: 1, Serial: 5}
	b := GUID{DatabaseID: 1, Serial: 6}
	c := GUID{DatabaseID: 2, Serial: 0}

	if !a.Less(b) {
		t.Fatalf("expected %v < %v", a, b)
	}
	if !b.Less(c) {
		t.Fatalf("expected %v < %v", b, c)
	}
	if a.Less(a) {
		t.Fatalf("expected %v not < itself", a)
	}
}

func TestGUIDZero(t *testing.T) {
	if !Zero.IsZero() {
		t.Fatal("Zero should be zero")
	}
	g := GUID{DatabaseID: 1}
	if g.IsZero() {
		t.Fatal("non-zero GUID reported as zero")
	}
}

func TestInGenerationRange(t *testing.T) {
	cases := []struct {
		g, lo, hi uint64
		want      bool
	}{
		{5, 0, 0, true},
		{5, 10, 0, false},
		{5, 0, 3, false},
		{5, 1, 10, true},
		{5, 5, 5, true},
	}
	for _, c := range cases {
		if got := InGenerationRange(c.g, c.lo, c.hi); got != c.want {
			t.Errorf("InGenerationRange(%d,%d,%d) = %v, want %v", c.g, c.lo, c.hi, got, c.want)
		}
	}
}

func TestPIDValid(t *testing.T) {
	if None.Valid() {
		t.Fatal("None should not be valid")
	}
	if !PID(1).Valid() {
		t.Fatal("PID(1) should be valid")
	}
}
