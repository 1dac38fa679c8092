package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTripBinary(t *testing.T) {
	c, err := New(4, []int{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if c.Total() != 6 {
		t.Fatalf("Total() = %d, want 6", c.Total())
	}
	for r := int64(0); r < c.Total(); r++ {
		a, err := c.Decode(r)
		if err != nil {
			t.Fatalf("Decode(%d): %v", r, err)
		}
		got, err := c.Encode(a)
		if err != nil {
			t.Fatalf("Encode(%v): %v", a, err)
		}
		if got != r {
			t.Errorf("Encode(Decode(%d)) = %d, want %d (a=%v)", r, got, r, a)
		}
	}
}

func TestRoundTripMultinomial(t *testing.T) {
	c, err := New(6, []int{2, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if c.Total() != 90 {
		t.Fatalf("Total() = %d, want 90", c.Total())
	}
	seen := make(map[[6]int]int64)
	for r := int64(0); r < c.Total(); r++ {
		a, err := c.Decode(r)
		if err != nil {
			t.Fatalf("Decode(%d): %v", r, err)
		}
		var key [6]int
		copy(key[:], a)
		if prev, ok := seen[key]; ok {
			t.Fatalf("A-form %v produced by both rank %d and %d", a, prev, r)
		}
		seen[key] = r

		counts := map[int]int{}
		for _, v := range a {
			counts[v]++
		}
		if counts[0] != 2 || counts[1] != 2 || counts[2] != 2 {
			t.Fatalf("Decode(%d) = %v has wrong composition", r, a)
		}

		got, err := c.Encode(a)
		if err != nil {
			t.Fatalf("Encode(%v): %v", a, err)
		}
		if got != r {
			t.Errorf("Encode(Decode(%d)) = %d, want %d", r, got, r)
		}
	}
	if len(seen) != 90 {
		t.Fatalf("saw %d distinct A-forms, want 90", len(seen))
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	c, err := New(4, []int{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode(-1); err == nil {
		t.Error("Decode(-1) should fail")
	}
	if _, err := c.Decode(6); err == nil {
		t.Error("Decode(6) should fail (N=6)")
	}
}

func TestEncodeBadComposition(t *testing.T) {
	c, err := New(4, []int{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Encode([]int{0, 0, 0, 1}); err == nil {
		t.Error("Encode with wrong multiplicities should fail")
	}
	if _, err := c.Encode([]int{0, 0, 1}); err == nil {
		t.Error("Encode with wrong length should fail")
	}
}

func TestNewRejectsBadComposition(t *testing.T) {
	if _, err := New(4, []int{2, 1}); err == nil {
		t.Error("New should reject composition not summing to n")
	}
	if _, err := New(4, []int{2, 0}); err == nil {
		t.Error("New should reject a zero multiplicity")
	}
}

func TestDecodeExampleShape(t *testing.T) {
	c, err := New(4, []int{2, 2})
	if err != nil {
		t.Fatal(err)
	}
	a0, err := c.Decode(0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{0, 0, 1, 1}, a0); diff != "" {
		t.Errorf("Decode(0) mismatch (-want +got):\n%s", diff)
	}
}
