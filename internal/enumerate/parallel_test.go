package enumerate

import (
	"context"
	"testing"

	"github.com/matsci/indsod/internal/orbit"
)

func TestParallelEnumerateMatchesSequential(t *testing.T) {
	tbl := &orbit.Table{N: 6, O: 6, M: rotationTable6()}
	res, err := orbit.Partition(tbl, nil)
	if err != nil {
		t.Fatal(err)
	}
	partitioned := &orbit.Table{N: 6, O: 6, M: res.M}

	seq, err := Enumerate(partitioned, res.G, []int{2, 2, 2}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	par, err := ParallelEnumerate(context.Background(), partitioned, res.G, []int{2, 2, 2}, 4, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(seq.Representatives) != len(par.Representatives) {
		t.Fatalf("sequential found %d orbits, parallel found %d", len(seq.Representatives), len(par.Representatives))
	}
	for i := range seq.Representatives {
		if seq.Representatives[i] != par.Representatives[i] {
			t.Errorf("representative %d differs: sequential %+v, parallel %+v", i, seq.Representatives[i], par.Representatives[i])
		}
	}
}

func TestParallelEnumerateSingleShardMatchesShardOf1(t *testing.T) {
	tbl := &orbit.Table{N: 4, O: 1, M: identityTable(4, 1)}
	res, err := orbit.Partition(tbl, nil)
	if err != nil {
		t.Fatal(err)
	}
	partitioned := &orbit.Table{N: 4, O: 1, M: res.M}

	par, err := ParallelEnumerate(context.Background(), partitioned, res.G, []int{2, 2}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(par.Representatives) != 6 {
		t.Fatalf("got %d orbits, want 6", len(par.Representatives))
	}
}

func TestShardBoundsCoversWholeRange(t *testing.T) {
	bounds := shardBounds(10, 3)
	var total int64
	for i, b := range bounds {
		if i > 0 && b[0] != bounds[i-1][1] {
			t.Fatalf("gap between shard %d and %d: %v", i-1, i, bounds)
		}
		total += b[1] - b[0]
	}
	if total != 10 {
		t.Errorf("total covered = %d, want 10", total)
	}
}

func TestShardBoundsFewerItemsThanShards(t *testing.T) {
	bounds := shardBounds(2, 8)
	var total int64
	for _, b := range bounds {
		total += b[1] - b[0]
	}
	if total != 2 {
		t.Errorf("total covered = %d, want 2", total)
	}
}

// rotationTable6 is the full cyclic group Z6 acting on six sites: column q
// shifts every site by q.
func rotationTable6() [][]int {
	n := 6
	m := make([][]int, n)
	for i := 0; i < n; i++ {
		row := make([]int, n)
		for q := 0; q < n; q++ {
			row[q] = (i + q) % n
		}
		m[i] = row
	}
	return m
}
