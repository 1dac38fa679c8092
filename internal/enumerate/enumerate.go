// Package enumerate implements the irreducible enumerator (spec.md
// component D): walking rank space pruned by the orbit-of-first-atom
// argument, marking every rank reachable from a chosen canonical
// representative by applying group operations, and reporting canonical
// representatives with their orbit sizes ("degeneracies").
package enumerate

import (
	"context"
	"sort"

	"github.com/matsci/indsod/internal/codec"
	"github.com/matsci/indsod/internal/combin"
	"github.com/matsci/indsod/internal/orbit"
	"github.com/matsci/indsod/internal/xerrors"
)

// Representative is one emitted orbit: the canonical (minimum-rank) member
// and the orbit's size.
type Representative struct {
	Rank       int64
	Degeneracy int64
}

// Options configures a single enumeration call.
type Options struct {
	// Progress, if non-nil, is called after each outer iteration with
	// the 0-indexed first-species rank just processed and the total
	// count of first-species ranks (C(n,k1)). It must not mutate
	// enumerator state (spec.md §5).
	Progress func(current, total int64)
	// Cancel, if non-nil, is checked between outer iterations; a closed
	// channel aborts the walk and Result.Partial is set true.
	Cancel <-chan struct{}
}

// Result is the enumerator's output: representatives in strictly
// increasing rank order, and whether the walk was cut short.
type Result struct {
	Representatives []Representative
	Partial         bool
}

// Enumerate runs the sequential reference algorithm against an
// orbit-contiguous table (the output of orbit.Partition) and composition
// k. It validates the codec's round-trip on a handful of sample ranks
// during its precompute phase, per spec.md §4.4 ("the enumerator
// validates round-trip on a sample during PRECOMPUTE").
func Enumerate(tbl *orbit.Table, G []int, k []int, opts Options) (*Result, error) {
	c, err := codec.New(tbl.N, k)
	if err != nil {
		return nil, err
	}
	if err := sampleRoundTrip(c); err != nil {
		return nil, err
	}

	n, k1 := tbl.N, k[0]
	cFirst := combin.Binomial(n, k1)
	if cFirst <= 0 {
		return nil, xerrors.New(xerrors.Overflow, "enumerate.Enumerate", "C(n,k1) is non-positive; cannot allocate occ")
	}

	occFirst := newBitset(cFirst)
	// The pruning filter needs the boundary of the exposed orbit
	// *prefix*, not just the first block: orbit.Partition's policy
	// guarantees the prefix covers >= n-k1+1 sites, so by pigeonhole
	// every k1-subset must intersect it (spec.md §4.3 step 5's
	// rationale) — using only block 1's boundary would prune too much,
	// dropping valid orbits, whenever the prefix needs more than one block.
	prefixOrbits, err := orbit.FirstOrbitPrefix(G, n, k1)
	if err != nil {
		return nil, err
	}
	firstOrbitEnd := G[prefixOrbits] // sites in [0, firstOrbitEnd) form the exposed prefix

	subK := append([]int(nil), k[1:]...)
	subCodec, err := subCodecFor(n-k1, subK)
	if err != nil {
		return nil, err
	}

	reps := make([]Representative, 0)
	for i1 := int64(0); i1 < cFirst; i1++ {
		select {
		case <-cancelOrNil(opts.Cancel):
			return &Result{Representatives: reps, Partial: true}, nil
		default:
		}

		base := combin.ColexUnrank(n, k1, i1) // 1-indexed labels, ascending
		if base[0]-1 >= firstOrbitEnd {
			if opts.Progress != nil {
				opts.Progress(i1, cFirst)
			}
			continue
		}
		if occFirst.test(i1) {
			if opts.Progress != nil {
				opts.Progress(i1, cFirst)
			}
			continue
		}

		remainingSites := combin.Complement(base, n)
		localOcc := newBitset(subCodec.Total())

		for local := int64(0); local < subCodec.Total(); local++ {
			if localOcc.test(local) {
				continue
			}
			relA, err := subCodec.Decode(local)
			if err != nil {
				return nil, err
			}
			a := assemble(n, base, remainingSites, relA)

			members, err := orbitMembers(tbl, c, a)
			if err != nil {
				return nil, err
			}

			ranks := make([]int64, 0, len(members))
			for r := range members {
				ranks = append(ranks, r)
			}
			sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
			rmin := ranks[0]

			for _, r := range ranks {
				memberA := members[r]
				speciesRank := firstSpeciesRank(memberA, k1)
				occFirst.set(speciesRank)
				if speciesRank == i1 {
					relMember := relativize(memberA, remainingSites)
					localIdx, err := subCodec.Encode(relMember)
					if err == nil {
						localOcc.set(localIdx)
					}
				}
			}

			reps = append(reps, Representative{Rank: rmin, Degeneracy: int64(len(ranks))})
		}

		if opts.Progress != nil {
			opts.Progress(i1, cFirst)
		}
	}

	sort.Slice(reps, func(i, j int) bool { return reps[i].Rank < reps[j].Rank })
	return &Result{Representatives: reps}, nil
}

func cancelOrNil(ch <-chan struct{}) <-chan struct{} {
	if ch == nil {
		return nil
	}
	return ch
}

// subCodecFor builds the codec for the sub-problem over the n sites not
// claimed by species 0, with the remaining composition k (k[0] here is
// original species 1, and so on). When only one species remains, k has a
// single entry equal to n and codec.New degenerates correctly to a space
// of size 1 (there is exactly one way to place the last species: take
// everything left).
func subCodecFor(n int, k []int) (*codec.Codec, error) {
	return codec.New(n, k)
}

// assemble builds a full n-length A-form from the fixed species-0
// placement (base, 1-indexed labels) and the relative A-form decoded for
// the remaining sites (species indices shifted down by one, 0 meaning
// "species 1" in the original composition).
func assemble(n int, base, remainingSites []int, relA []int) []int {
	a := make([]int, n)
	for _, lab := range base {
		a[lab-1] = 0
	}
	for idx, lab := range remainingSites {
		a[lab-1] = relA[idx] + 1
	}
	return a
}

// relativize is the inverse of assemble's second half: given a full
// A-form and the ascending list of sites that are not species 0, build
// the relative A-form (species indices shifted down by one) restricted
// to those sites, in the order remainingSites lists them.
func relativize(a []int, remainingSites []int) []int {
	rel := make([]int, len(remainingSites))
	for idx, lab := range remainingSites {
		rel[idx] = a[lab-1] - 1
	}
	return rel
}

// firstSpeciesRank returns the colex rank of the species-0 positions of a.
func firstSpeciesRank(a []int, k1 int) int64 {
	positions := make([]int, 0, k1)
	for i, v := range a {
		if v == 0 {
			positions = append(positions, i+1)
		}
	}
	return combin.ColexRank(positions)
}

// orbitMembers applies every operation in tbl to a and returns the
// distinct resulting A-forms keyed by rank. Because distinctness is
// decided on the rank (not on which operation produced it), this count
// already is the true configuration-orbit size: duplicate images from
// different operations collapse naturally, so no further arithmetic
// correction for mixed orbits is needed on top of it (see DESIGN.md).
func orbitMembers(tbl *orbit.Table, c *codec.Codec, a []int) (map[int64][]int, error) {
	n := tbl.N
	members := make(map[int64][]int)
	aPrime := make([]int, n)
	for q := 0; q < tbl.O; q++ {
		for i := 0; i < n; i++ {
			aPrime[i] = a[tbl.M[i][q]]
		}
		r, err := c.Encode(aPrime)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodecRoundtrip, "enumerate.orbitMembers", "failed to encode orbit image", err)
		}
		if _, ok := members[r]; !ok {
			cp := make([]int, n)
			copy(cp, aPrime)
			members[r] = cp
		}
	}
	return members, nil
}

// sampleRoundTrip checks Decode/Encode agree on a handful of ranks spread
// across [0, N), failing fast (CodecRoundtrip) before the expensive walk
// begins, per spec.md §4.4's precompute-phase self-check.
func sampleRoundTrip(c *codec.Codec) error {
	total := c.Total()
	if total == 0 {
		return xerrors.New(xerrors.Overflow, "enumerate.sampleRoundTrip", "N is zero")
	}
	samples := []int64{0, total - 1}
	if total > 2 {
		samples = append(samples, total/2)
	}
	for _, r := range samples {
		a, err := c.Decode(r)
		if err != nil {
			return xerrors.Wrap(xerrors.CodecRoundtrip, "enumerate.sampleRoundTrip", "decode failed during precompute sample", err).
				WithContext("rank", r)
		}
		got, err := c.Encode(a)
		if err != nil {
			return xerrors.Wrap(xerrors.CodecRoundtrip, "enumerate.sampleRoundTrip", "encode failed during precompute sample", err).
				WithContext("rank", r)
		}
		if got != r {
			return xerrors.New(xerrors.CodecRoundtrip, "enumerate.sampleRoundTrip", "round trip mismatch during precompute sample").
				WithContext("rank", r).WithContext("got", got)
		}
	}
	return nil
}

// Context-aware convenience wrapper so callers that already have a
// context.Context (e.g. the CLI) can cancel without building a channel by
// hand.
func EnumerateContext(ctx context.Context, tbl *orbit.Table, G []int, k []int, progress func(current, total int64)) (*Result, error) {
	return Enumerate(tbl, G, k, Options{Progress: progress, Cancel: ctx.Done()})
}
