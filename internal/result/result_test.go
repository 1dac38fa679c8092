package result

import (
	"strings"
	"testing"

	"github.com/matsci/indsod/internal/enumerate"
)

func sampleResult() *enumerate.Result {
	return &enumerate.Result{
		Representatives: []enumerate.Representative{
			{Rank: 0, Degeneracy: 1},
			{Rank: 3, Degeneracy: 4},
			{Rank: 5, Degeneracy: 1},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResult())
	if s.N != 3 {
		t.Errorf("N = %d, want 3", s.N)
	}
	if s.TotalCoverage != 6 {
		t.Errorf("TotalCoverage = %d, want 6", s.TotalCoverage)
	}
	if s.MinDegeneracy != 1 || s.MaxDegeneracy != 4 {
		t.Errorf("min/max = %d/%d, want 1/4", s.MinDegeneracy, s.MaxDegeneracy)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(&enumerate.Result{})
	if s.N != 0 || s.TotalCoverage != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestWriteCONFGLAndCONFGD(t *testing.T) {
	r := sampleResult()
	decode := func(rank int64) ([]int, error) {
		return []int{int(rank), int(rank) + 1}, nil
	}

	var lBuf, dBuf strings.Builder
	if err := WriteCONFGL(&lBuf, r, decode); err != nil {
		t.Fatal(err)
	}
	if err := WriteCONFGD(&dBuf, r); err != nil {
		t.Fatal(err)
	}

	wantL := "0 1\n3 4\n5 6\n"
	if lBuf.String() != wantL {
		t.Errorf("CONFGL = %q, want %q", lBuf.String(), wantL)
	}
	wantD := "1\n4\n1\n"
	if dBuf.String() != wantD {
		t.Errorf("CONFGD = %q, want %q", dBuf.String(), wantD)
	}
}

func TestSortByDegeneracy(t *testing.T) {
	sorted := SortByDegeneracy(sampleResult().Representatives)
	if sorted[0].Degeneracy != 4 {
		t.Errorf("first degeneracy = %d, want 4", sorted[0].Degeneracy)
	}
	if sorted[1].Rank != 0 || sorted[2].Rank != 5 {
		t.Errorf("tie-break order wrong: %+v", sorted)
	}
}
