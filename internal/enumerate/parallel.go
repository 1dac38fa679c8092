package enumerate

import (
	"context"
	"sort"

	"github.com/matsci/indsod/internal/codec"
	"github.com/matsci/indsod/internal/combin"
	"github.com/matsci/indsod/internal/orbit"
	"github.com/matsci/indsod/internal/xerrors"
	"golang.org/x/sync/errgroup"
)

// ParallelEnumerate shards the outer i1 walk spec.md §5 names as "the
// natural parallelism axis" across shards goroutines, each running the same
// rank-space-pruned sieve as Enumerate over its own contiguous slice of
// first-species subsets with its own private occ bitset. Shards do not
// share pruning state, so the same orbit can surface from more than one
// shard; the merge step below deduplicates by rank (the canonical
// representative of an orbit is unique, so two shards reporting the same
// rank are reporting the same orbit) before sorting. If shards<=0 it
// defaults to 1 (sequential, but via the sharded code path — useful for
// testing the merge logic itself).
func ParallelEnumerate(ctx context.Context, tbl *orbit.Table, G []int, k []int, shards int, progress func(current, total int64)) (*Result, error) {
	if shards <= 0 {
		shards = 1
	}

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
		return nil, xerrors.New(xerrors.Overflow, "enumerate.ParallelEnumerate", "C(n,k1) is non-positive; cannot allocate occ")
	}

	prefixOrbits, err := orbit.FirstOrbitPrefix(G, n, k1)
	if err != nil {
		return nil, err
	}
	firstOrbitEnd := G[prefixOrbits]

	subK := append([]int(nil), k[1:]...)
	subCodec, err := subCodecFor(n-k1, subK)
	if err != nil {
		return nil, err
	}

	bounds := shardBounds(cFirst, shards)

	g, gctx := errgroup.WithContext(ctx)
	shardReps := make([][]Representative, len(bounds))
	for s := range bounds {
		s := s
		lo, hi := bounds[s][0], bounds[s][1]
		g.Go(func() error {
			reps, err := enumerateRange(gctx, tbl, c, subCodec, n, k1, firstOrbitEnd, lo, hi, cFirst, progress)
			if err != nil {
				return err
			}
			shardReps[s] = reps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int64]Representative)
	for _, reps := range shardReps {
		for _, r := range reps {
			seen[r.Rank] = r
		}
	}
	merged := make([]Representative, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Rank < merged[j].Rank })

	partial := false
	select {
	case <-ctx.Done():
		partial = true
	default:
	}

	return &Result{Representatives: merged, Partial: partial}, nil
}

// shardBounds splits [0,total) into up to shards contiguous, roughly equal
// half-open ranges.
func shardBounds(total int64, shards int) [][2]int64 {
	if int64(shards) > total {
		shards = int(total)
	}
	if shards < 1 {
		shards = 1
	}
	bounds := make([][2]int64, 0, shards)
	base := total / int64(shards)
	rem := total % int64(shards)
	var cur int64
	for i := 0; i < shards; i++ {
		size := base
		if int64(i) < rem {
			size++
		}
		bounds = append(bounds, [2]int64{cur, cur + size})
		cur += size
	}
	return bounds
}

// enumerateRange runs the sequential sieve body over i1 in [lo,hi) with its
// own private occFirst bitset scoped to just its [lo,hi) range — a shard
// never tests or sets a first-species rank outside the range it owns, so
// there is no reason to pay for the full [0,cFirst) bitset shards times
// over. Index i and any speciesRank in [lo,hi) are rebased to i-lo before
// touching occFirst.
func enumerateRange(ctx context.Context, tbl *orbit.Table, c *codec.Codec, subCodec *codec.Codec, n, k1 int, firstOrbitEnd int, lo, hi, cFirst int64, progress func(current, total int64)) ([]Representative, error) {
	occFirst := newBitset(hi - lo)
	reps := make([]Representative, 0)

	for i1 := lo; i1 < hi; i1++ {
		select {
		case <-ctx.Done():
			return reps, nil
		default:
		}

		base := combin.ColexUnrank(n, k1, i1)
		if base[0]-1 >= firstOrbitEnd {
			if progress != nil {
				progress(i1, cFirst)
			}
			continue
		}
		if occFirst.test(i1 - lo) {
			if progress != nil {
				progress(i1, cFirst)
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
				if speciesRank >= lo && speciesRank < hi {
					occFirst.set(speciesRank - lo)
				}
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

		if progress != nil {
			progress(i1, cFirst)
		}
	}

	return reps, nil
}
