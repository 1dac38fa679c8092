// Package codec implements the bijection between an integer rank in
// [0, N) and an "actual form" (A-form) assignment vector of a given
// composition, via a nested colex-subset encoding in mixed radix.
package codec

import (
	"fmt"

	"github.com/matsci/indsod/internal/combin"
	"github.com/matsci/indsod/internal/xerrors"
)

// Codec holds everything precomputed from n and the composition k so that
// Decode/Encode never recompute a binomial coefficient on the hot path:
// the remaining-sites-count m[j] for every species, the per-species
// radix C(m[j], k[j]), the suffix-product place values used to split a
// rank into mixed-radix digits, and the last-configuration offset L[j]
// (the maximum colex rank of a k[j]-subset of an m[j]-set), carried for
// parity with the data model even though Decode/Encode consume the
// ascending colex convention directly and never need to subtract it.
type Codec struct {
	n int
	k []int // composition, len s, sum n

	m      []int   // m[j] = sites remaining before species j is placed
	radix  []int64 // radix[j] = C(m[j], k[j]), j = 0..s-2 (species s-1 has radix 1, implicit)
	place  []int64 // place[j] = product of radix[j+1:], the mixed-radix place value
	L      []int64 // L[j] = C(m[j], k[j]) - 1
	N      int64   // total number of A-forms of this composition
}

// New builds a Codec for n sites and composition k (k[j] >= 1, sum(k) == n).
func New(n int, k []int) (*Codec, error) {
	if n <= 0 {
		return nil, xerrors.New(xerrors.InputValidation, "codec.New", "n must be positive")
	}
	sum := 0
	for _, kj := range k {
		if kj < 1 {
			return nil, xerrors.New(xerrors.InputValidation, "codec.New", "composition entries must be >= 1")
		}
		sum += kj
	}
	if sum != n {
		return nil, xerrors.New(xerrors.InputValidation, "codec.New", fmt.Sprintf("composition sums to %d, want %d", sum, n))
	}

	s := len(k)
	c := &Codec{n: n, k: append([]int(nil), k...)}
	c.m = make([]int, s)
	c.radix = make([]int64, s)
	c.L = make([]int64, s)

	remaining := n
	for j := 0; j < s; j++ {
		c.m[j] = remaining
		c.radix[j] = combin.Binomial(remaining, k[j])
		c.L[j] = c.radix[j] - 1
		remaining -= k[j]
	}

	c.place = make([]int64, s)
	place := int64(1)
	for j := s - 1; j >= 0; j-- {
		c.place[j] = place
		if j > 0 {
			place *= c.radix[j]
		}
	}
	c.N = place * c.radix[0]
	// Species s-1 always has radix 1 (it fills whatever remains), so
	// c.N equals the product over j=0..s-2 of radix[j].
	return c, nil
}

// Total returns N, the number of A-forms (the multinomial coefficient).
func (c *Codec) Total() int64 { return c.N }

// Decode turns a rank r in [0, N) into an A-form assignment a[0..n-1],
// a[i] in [0, s), 0-indexed site i corresponding to absolute label i+1.
func (c *Codec) Decode(r int64) ([]int, error) {
	if r < 0 || r >= c.N {
		return nil, xerrors.New(xerrors.InputValidation, "codec.Decode", "rank out of range").
			WithContext("rank", r).WithContext("N", c.N)
	}
	s := len(c.k)
	a := make([]int, c.n)
	for i := range a {
		a[i] = -1
	}
	remaining := make([]int, c.n)
	for i := range remaining {
		remaining[i] = i + 1
	}

	rem := r
	for j := 0; j < s-1; j++ {
		digit := rem / c.place[j]
		rem -= digit * c.place[j]

		mj, kj := len(remaining), c.k[j]
		positions := combin.ColexUnrank(mj, kj, digit)
		for _, p := range positions {
			a[remaining[p-1]-1] = j
		}
		remaining = removeAt(remaining, positions)
	}
	// Whatever is left is the last species.
	last := s - 1
	for i, v := range a {
		if v == -1 {
			a[i] = last
		}
	}
	return a, nil
}

// Encode is the inverse of Decode: given a full A-form, return its rank.
func (c *Codec) Encode(a []int) (int64, error) {
	if len(a) != c.n {
		return 0, xerrors.New(xerrors.InputValidation, "codec.Encode", "A-form length mismatch").
			WithContext("got", len(a)).WithContext("want", c.n)
	}
	s := len(c.k)
	counts := make([]int, s)
	for _, v := range a {
		if v < 0 || v >= s {
			return 0, xerrors.New(xerrors.InputValidation, "codec.Encode", "species label out of range").
				WithContext("label", v)
		}
		counts[v]++
	}
	for j, kj := range c.k {
		if counts[j] != kj {
			return 0, xerrors.New(xerrors.InputValidation, "codec.Encode", "A-form multiplicities disagree with composition").
				WithContext("species", j).WithContext("got", counts[j]).WithContext("want", kj)
		}
	}

	remaining := make([]int, c.n)
	for i := range remaining {
		remaining[i] = i + 1
	}

	var rank int64
	for j := 0; j < s-1; j++ {
		positions := make([]int, 0, c.k[j])
		for idx, lab := range remaining {
			if a[lab-1] == j {
				positions = append(positions, idx+1)
			}
		}
		digit := combin.ColexRank(positions)
		rank += digit * c.place[j]

		remaining = removeAt(remaining, positions)
	}
	return rank, nil
}

// removeAt returns remaining with the elements at the given 1-based
// positions (ascending) deleted, preserving order.
func removeAt(remaining []int, positions []int) []int {
	out := make([]int, 0, len(remaining)-len(positions))
	pi := 0
	for idx, v := range remaining {
		if pi < len(positions) && positions[pi] == idx+1 {
			pi++
			continue
		}
		out = append(out, v)
	}
	return out
}
