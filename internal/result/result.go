// Package result collects and persists the enumerator's output: the
// CONFGL/CONFGD files spec.md §6 names, plus a run summary. It plays the
// role the teacher's pkg/result package plays for optimization rules, but
// the table it holds is the enumerator's representative list and it writes
// plain line-oriented text rather than JSON/gob, matching the file formats
// the configuration collaborator contract calls for.
package result

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/matsci/indsod/internal/enumerate"
)

// Summary aggregates a completed enumeration for reporting.
type Summary struct {
	N             int   // number of emitted orbits
	TotalCoverage int64 // sum of degeneracies; should equal the codec's total space N (spec.md §8)
	MinDegeneracy int64
	MaxDegeneracy int64
	Partial       bool
}

// Summarize computes a Summary from a completed Result. Representatives is
// assumed already sorted ascending by rank, as Enumerate guarantees.
func Summarize(r *enumerate.Result) Summary {
	s := Summary{N: len(r.Representatives), Partial: r.Partial}
	if s.N == 0 {
		return s
	}
	s.MinDegeneracy = r.Representatives[0].Degeneracy
	s.MaxDegeneracy = r.Representatives[0].Degeneracy
	for _, rep := range r.Representatives {
		s.TotalCoverage += rep.Degeneracy
		if rep.Degeneracy < s.MinDegeneracy {
			s.MinDegeneracy = rep.Degeneracy
		}
		if rep.Degeneracy > s.MaxDegeneracy {
			s.MaxDegeneracy = rep.Degeneracy
		}
	}
	return s
}

// WriteCONFGL writes one line per orbit: the A-form of its canonical
// (minimum-rank) representative, decoded via decode. Orbits are written in
// the order they appear in r.Representatives (ascending rank).
func WriteCONFGL(w io.Writer, r *enumerate.Result, decode func(rank int64) ([]int, error)) error {
	bw := bufio.NewWriter(w)
	for _, rep := range r.Representatives {
		a, err := decode(rep.Rank)
		if err != nil {
			return fmt.Errorf("result.WriteCONFGL: decode rank %d: %w", rep.Rank, err)
		}
		for i, v := range a {
			if i > 0 {
				if _, err := bw.WriteString(" "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "%d", v); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCONFGD writes one line per orbit: its degeneracy, in the same order
// WriteCONFGL uses, so line N of CONFGD corresponds to line N of CONFGL.
func WriteCONFGD(w io.Writer, r *enumerate.Result) error {
	bw := bufio.NewWriter(w)
	for _, rep := range r.Representatives {
		if _, err := fmt.Fprintf(bw, "%d\n", rep.Degeneracy); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SortByDegeneracy returns a copy of reps ordered by descending degeneracy
// (most-common configuration first), breaking ties by ascending rank. This
// is a reporting convenience only; CONFGL/CONFGD preserve rank order.
func SortByDegeneracy(reps []enumerate.Representative) []enumerate.Representative {
	out := make([]enumerate.Representative, len(reps))
	copy(out, reps)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Degeneracy != out[j].Degeneracy {
			return out[i].Degeneracy > out[j].Degeneracy
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}
