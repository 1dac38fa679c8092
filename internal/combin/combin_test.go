package combin

import (
	"testing"
)

func TestBinomialOutOfDomain(t *testing.T) {
	tests := []struct {
		n, k int
		want int64
	}{
		{5, -1, 0},
		{5, 6, 0},
		{-1, 0, 0},
		{5, 0, 1},
		{5, 5, 1},
		{5, 2, 10},
		{0, 0, 1},
	}
	for _, tc := range tests {
		got := Binomial(tc.n, tc.k)
		if got != tc.want {
			t.Errorf("Binomial(%d,%d) = %d, want %d", tc.n, tc.k, got, tc.want)
		}
	}
}

func TestColexRankUnrankRoundTrip(t *testing.T) {
	n, k := 7, 3
	total := Binomial(n, k)
	for r := int64(0); r < total; r++ {
		s := ColexUnrank(n, k, r)
		if len(s) != k {
			t.Fatalf("ColexUnrank(%d,%d,%d) returned %d elements, want %d", n, k, r, len(s), k)
		}
		for i := 1; i < len(s); i++ {
			if s[i-1] >= s[i] {
				t.Fatalf("ColexUnrank(%d,%d,%d) = %v not ascending", n, k, r, s)
			}
		}
		got := ColexRank(s)
		if got != r {
			t.Errorf("ColexRank(ColexUnrank(%d,%d,%d)) = %d, want %d", n, k, r, got, r)
		}
	}
}

func TestColexRankKnownValues(t *testing.T) {
	// {1,2} is the first (rank 0) 2-subset under colex order.
	if r := ColexRank([]int{1, 2}); r != 0 {
		t.Errorf("ColexRank({1,2}) = %d, want 0", r)
	}
	// {1,3} comes next: C(0,1)+C(2,2) = 0+1 = 1.
	if r := ColexRank([]int{1, 3}); r != 1 {
		t.Errorf("ColexRank({1,3}) = %d, want 1", r)
	}
	// {2,3}: C(1,1)+C(2,2) = 1+1 = 2.
	if r := ColexRank([]int{2, 3}); r != 2 {
		t.Errorf("ColexRank({2,3}) = %d, want 2", r)
	}
}

func TestSortInts(t *testing.T) {
	a := []int{5, 3, 1, 4, 2}
	SortInts(a)
	want := []int{1, 2, 3, 4, 5}
	for i := range want {
		if a[i] != want[i] {
			t.Fatalf("SortInts = %v, want %v", a, want)
		}
	}
}

func TestBinarySearchLE(t *testing.T) {
	a := []int{2, 4, 6, 8, 10}
	tests := []struct {
		v    int
		want int
	}{
		{1, -1},
		{2, 0},
		{3, 0},
		{7, 2},
		{10, 4},
		{99, 4},
	}
	for _, tc := range tests {
		if got := BinarySearchLE(a, tc.v); got != tc.want {
			t.Errorf("BinarySearchLE(%v, %d) = %d, want %d", a, tc.v, got, tc.want)
		}
	}
}

func TestComplement(t *testing.T) {
	got := Complement([]int{2, 4}, 5)
	want := []int{1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("Complement = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Complement = %v, want %v", got, want)
		}
	}
}
