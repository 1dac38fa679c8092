// Package orbit implements the "grouping" step: partitioning substitution
// sites into orbits of the symmetry group and relabeling them so orbits
// become contiguous blocks, which turns first-orbit membership into a
// cheap prefix test for the enumerator (internal/enumerate).
package orbit

import (
	"fmt"

	"github.com/matsci/indsod/internal/combin"
	"github.com/matsci/indsod/internal/xerrors"
)

// Table is the equivalent-site mapping M: Table.M[i][q] is the 0-indexed
// image of site i under operation q. Each column M[·][q] must be a
// permutation of 0..n-1, and the identity permutation must appear among
// the columns.
type Table struct {
	N int
	O int
	M [][]int // len N, each len O
}

// Reorderer lets an external collaborator (e.g. the structural collaborator
// holding atomic coordinates) rewrite its own per-site arrays under the
// permutation Partition computes, so all per-site data stays consistent
// with the new, orbit-contiguous labeling.
type Reorderer interface {
	Reorder(perm []int) error
}

// Validate checks the structural invariants of M: every column is a
// permutation of 0..n-1, and the identity is present among the columns.
func (t *Table) Validate() error {
	seen := make([]bool, t.N)
	identityFound := false
	for q := 0; q < t.O; q++ {
		for i := range seen {
			seen[i] = false
		}
		isIdentity := true
		for i := 0; i < t.N; i++ {
			img := t.M[i][q]
			if img < 0 || img >= t.N {
				return xerrors.New(xerrors.SymmetryIntegrity, "orbit.Validate", "image out of range").
					WithContext("site", i).WithContext("op", q).WithContext("image", img)
			}
			if seen[img] {
				return xerrors.New(xerrors.SymmetryIntegrity, "orbit.Validate", "operation column is not a permutation").
					WithContext("op", q)
			}
			seen[img] = true
			if img != i {
				isIdentity = false
			}
		}
		if isIdentity {
			identityFound = true
		}
	}
	if !identityFound {
		return xerrors.New(xerrors.SymmetryIntegrity, "orbit.Validate", "no identity operation found among columns")
	}
	return nil
}

// Result is the outcome of Partition.
type Result struct {
	G    []int   // orbit boundaries, G[0]=0, G[len(G)-1]=n, length = orbits+1
	M    [][]int // M rewritten under Perm (the input M itself if no reorder was needed)
	Perm []int   // Perm[newSite] = oldSite; identity if sites were already orbit-contiguous
}

// Partition computes the orbit partition of M's n sites, sorts each orbit
// into ascending label order, and — if the natural order differs from
// that — relabels sites so orbits become contiguous blocks, rewriting M
// (and, via reorder if non-nil, any external per-site array) under the
// permutation.
//
// Orbits are found by, for each not-yet-visited site i, collecting
// {M[i][q] : q} directly: since the columns of M form a group closed
// under composition, this one-step image already is the complete orbit
// of i, no transitive closure needed.
func Partition(t *Table, reorder Reorderer) (*Result, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	n := t.N
	unseen := make([]bool, n)
	for i := range unseen {
		unseen[i] = true
	}

	order := make([]int, 0, n)
	var boundaries []int // boundaries[b] = start index of orbit b in order
	for i := 0; i < n; i++ {
		if !unseen[i] {
			continue
		}
		boundaries = append(boundaries, len(order))
		start := len(order)
		for q := 0; q < t.O; q++ {
			img := t.M[i][q]
			if unseen[img] {
				unseen[img] = false
				order = append(order, img)
			}
		}
		// Closure check: every image under every op, of every site now
		// known to be in this orbit, must stay inside the orbit.
		for _, s := range order[start:] {
			for q := 0; q < t.O; q++ {
				img := t.M[s][q]
				inOrbit := false
				for _, m := range order[start:] {
					if m == img {
						inOrbit = true
						break
					}
				}
				if !inOrbit {
					return nil, xerrors.New(xerrors.SymmetryIntegrity, "orbit.Partition", "orbit not closed under operation set").
						WithContext("site", s).WithContext("op", q)
				}
			}
		}
		combin.SortInts(order[start:])
	}

	g := len(boundaries)
	G := make([]int, g+1)
	for b, start := range boundaries {
		G[b] = start
	}
	G[g] = n

	perm := order
	identity := true
	for i, p := range perm {
		if p != i {
			identity = false
			break
		}
	}
	if identity {
		return &Result{G: G, M: t.M, Perm: perm}, nil
	}

	invPerm := make([]int, n)
	for newIdx, oldIdx := range perm {
		invPerm[oldIdx] = newIdx
	}

	newM := make([][]int, n)
	for newI := 0; newI < n; newI++ {
		row := make([]int, t.O)
		oldI := perm[newI]
		for q := 0; q < t.O; q++ {
			row[q] = invPerm[t.M[oldI][q]]
		}
		newM[newI] = row
	}

	if reorder != nil {
		if err := reorder.Reorder(perm); err != nil {
			return nil, xerrors.Wrap(xerrors.StructuralInconsistency, "orbit.Partition", "failed to reorder external per-site data", err)
		}
	}

	return &Result{G: G, M: newM, Perm: perm}, nil
}

// FirstOrbitPrefix returns the minimal number of leading orbits whose
// cumulative size is at least n-k1+1, the pruning threshold used by the
// enumerator's outer walk (spec §4.3 step 5): at most k1-1 sites lie
// outside those leading orbits, so by pigeonhole every k1-subset of the
// sites contains at least one site inside them.
func FirstOrbitPrefix(G []int, n, k1 int) (int, error) {
	if k1 < 1 || k1 > n {
		return 0, xerrors.New(xerrors.InputValidation, "orbit.FirstOrbitPrefix", "k1 out of range").
			WithContext("k1", k1).WithContext("n", n)
	}
	need := n - k1 + 1
	orbits := len(G) - 1
	for b := 1; b <= orbits; b++ {
		if G[b] >= need {
			return b, nil
		}
	}
	return orbits, nil
}

// String renders G for diagnostics.
func (r *Result) String() string {
	return fmt.Sprintf("orbits=%d G=%v", len(r.G)-1, r.G)
}
