// Package structure implements the "structural collaborator" contract from
// spec.md §6: reading and writing VASP-format POSCAR/SPOSCAR files. The
// core enumerator never imports this package directly — it only needs the
// lattice, coordinates, and per-type counts the contract promises — but
// cmd/indsod wires this concrete implementation in as the real collaborator.
package structure

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsci/indsod/internal/xerrors"
)

// Structure is a VASP-format crystal structure: lattice vectors, the
// ordered list of species symbols and their counts, and fractional
// coordinates for every atom, grouped by species in the same order as
// Symbols/Counts.
type Structure struct {
	Comment string
	Scale   float64
	Lattice [3][3]float64
	Symbols []string
	Counts  []int
	Coords  [][3]float64 // fractional (Direct) coordinates, len == sum(Counts)
}

// Read parses a POSCAR/SPOSCAR file. Only the "Direct" coordinate mode is
// supported, matching spec.md's structural collaborator contract, which
// only ever emits fractional coordinates.
func Read(r io.Reader) (*Structure, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lines := make([]string, 0, 16)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.StructuralInconsistency, "structure.Read", "failed to read structure file", err)
	}
	if len(lines) < 8 {
		return nil, xerrors.New(xerrors.StructuralInconsistency, "structure.Read", "structure file too short").
			WithContext("lines", len(lines))
	}

	s := &Structure{Comment: lines[0]}

	scale, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.StructuralInconsistency, "structure.Read", "bad scale factor", err)
	}
	s.Scale = scale

	for i := 0; i < 3; i++ {
		vec, err := parseVector(lines[2+i])
		if err != nil {
			return nil, xerrors.Wrap(xerrors.StructuralInconsistency, "structure.Read", "bad lattice vector", err).
				WithContext("vector", i)
		}
		s.Lattice[i] = vec
	}

	s.Symbols = strings.Fields(lines[5])
	countFields := strings.Fields(lines[6])
	if len(countFields) != len(s.Symbols) {
		return nil, xerrors.New(xerrors.StructuralInconsistency, "structure.Read", "symbol count and atom count lines disagree in length").
			WithContext("symbols", len(s.Symbols)).WithContext("counts", len(countFields))
	}
	total := 0
	s.Counts = make([]int, len(countFields))
	for i, f := range countFields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.StructuralInconsistency, "structure.Read", "bad atom count", err)
		}
		s.Counts[i] = n
		total += n
	}

	mode := strings.ToLower(strings.TrimSpace(lines[7]))
	if !strings.HasPrefix(mode, "d") {
		return nil, xerrors.New(xerrors.StructuralInconsistency, "structure.Read", "only Direct coordinate mode is supported").
			WithContext("mode", lines[7])
	}

	if len(lines) < 8+total {
		return nil, xerrors.New(xerrors.StructuralInconsistency, "structure.Read", "fewer coordinate lines than the atom count declares").
			WithContext("want", total).WithContext("have", len(lines)-8)
	}
	s.Coords = make([][3]float64, total)
	for i := 0; i < total; i++ {
		vec, err := parseVector(lines[8+i])
		if err != nil {
			return nil, xerrors.Wrap(xerrors.StructuralInconsistency, "structure.Read", "bad coordinate line", err).
				WithContext("atom", i)
		}
		s.Coords[i] = vec
	}

	return s, nil
}

func parseVector(line string) ([3]float64, error) {
	var v [3]float64
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return v, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// Write emits a VASP-format structure file matching the structural
// collaborator's write contract: header comment, uniform scale "1.0",
// three lattice-vector lines in high-precision scientific notation, the
// atom-symbol line, the per-type count line, the literal "Direct" line,
// and one coordinate line per atom.
func Write(w io.Writer, s *Structure) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, s.Comment); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw, "1.0"); err != nil {
		return err
	}
	for _, vec := range s.Lattice {
		if _, err := fmt.Fprintf(bw, "  %19.14E  %19.14E  %19.14E\n", vec[0], vec[1], vec[2]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(bw, strings.Join(s.Symbols, " ")); err != nil {
		return err
	}
	counts := make([]string, len(s.Counts))
	for i, c := range s.Counts {
		counts[i] = strconv.Itoa(c)
	}
	if _, err := fmt.Fprintln(bw, strings.Join(counts, " ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw, "Direct"); err != nil {
		return err
	}
	for _, c := range s.Coords {
		if _, err := fmt.Fprintf(bw, "  %19.14E  %19.14E  %19.14E\n", c[0], c[1], c[2]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// TypeAtomCount returns the number of atoms belonging to the typeIndex'th
// species (1-indexed, matching the INDSOD "site" field's convention).
func (s *Structure) TypeAtomCount(typeIndex int) (int, error) {
	if typeIndex < 1 || typeIndex > len(s.Counts) {
		return 0, xerrors.New(xerrors.InputValidation, "structure.TypeAtomCount", "type index out of range").
			WithContext("typeIndex", typeIndex).WithContext("types", len(s.Counts))
	}
	return s.Counts[typeIndex-1], nil
}

// TypeOffset returns the coordinate index of the first atom of the
// typeIndex'th species (1-indexed), the base offset used to map
// enumerator site labels (1..n over just that species) onto Coords indices.
func (s *Structure) TypeOffset(typeIndex int) (int, error) {
	if typeIndex < 1 || typeIndex > len(s.Counts) {
		return 0, xerrors.New(xerrors.InputValidation, "structure.TypeOffset", "type index out of range").
			WithContext("typeIndex", typeIndex).WithContext("types", len(s.Counts))
	}
	offset := 0
	for i := 0; i < typeIndex-1; i++ {
		offset += s.Counts[i]
	}
	return offset, nil
}

// Sublattice is a view over the subset of a Structure's coordinates
// belonging to one atom type — the substitutional sublattice the
// enumerator's site labels index. It implements orbit.Reorderer so
// orbit.Partition can keep coordinates consistent with a relabeling.
type Sublattice struct {
	s      *Structure
	offset int
	n      int
}

// NewSublattice builds the view for the typeIndex'th species (1-indexed).
func NewSublattice(s *Structure, typeIndex int) (*Sublattice, error) {
	offset, err := s.TypeOffset(typeIndex)
	if err != nil {
		return nil, err
	}
	n, err := s.TypeAtomCount(typeIndex)
	if err != nil {
		return nil, err
	}
	return &Sublattice{s: s, offset: offset, n: n}, nil
}

// Reorder rewrites the sublattice's coordinates under perm: perm[newSite]
// is the 0-indexed old site whose coordinate moves to newSite, matching the
// convention orbit.Partition's Result.Perm uses.
func (sl *Sublattice) Reorder(perm []int) error {
	if len(perm) != sl.n {
		return xerrors.New(xerrors.StructuralInconsistency, "structure.Sublattice.Reorder", "permutation length does not match sublattice size").
			WithContext("permLen", len(perm)).WithContext("n", sl.n)
	}
	old := make([][3]float64, sl.n)
	copy(old, sl.s.Coords[sl.offset:sl.offset+sl.n])
	for newI, oldI := range perm {
		sl.s.Coords[sl.offset+newI] = old[oldI]
	}
	return nil
}
