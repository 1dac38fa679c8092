// Package symmetry reads the SPGMAT file of symmetry operation matrices and
// turns them into the EQAMAT equivalent-site table (orbit.Table) the
// enumerator consumes. It is glue, not discovery: spec.md's Non-goals
// explicitly exclude finding the symmetry group from the structure, so this
// package only ever applies operations a collaborator already supplied.
package symmetry

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matsci/indsod/internal/orbit"
	"github.com/matsci/indsod/internal/xerrors"
)

// Operation is one symmetry operation: a 3x3 rotation acting on fractional
// coordinates plus a fractional translation.
type Operation struct {
	Rotation    [3][3]float64
	Translation [3]float64
}

// Apply maps a fractional coordinate through the operation and wraps the
// result back into [0,1).
func (op Operation) Apply(c [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		v := op.Translation[i]
		for j := 0; j < 3; j++ {
			v += op.Rotation[i][j] * c[j]
		}
		out[i] = wrap01(v)
	}
	return out
}

func wrap01(v float64) float64 {
	v = math.Mod(v, 1.0)
	if v < 0 {
		v += 1.0
	}
	return v
}

// ReadSPGMAT parses a SPGMAT file: a leading line with the operation count,
// then per operation three rotation-row lines of three values each followed
// by one translation line of three values.
func ReadSPGMAT(r io.Reader) ([]Operation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.Wrap(xerrors.InputValidation, "symmetry.ReadSPGMAT", "failed to read SPGMAT", err)
	}
	if len(lines) == 0 {
		return nil, xerrors.New(xerrors.InputValidation, "symmetry.ReadSPGMAT", "empty SPGMAT file")
	}

	count, err := strconv.Atoi(lines[0])
	if err != nil {
		return nil, xerrors.Wrap(xerrors.InputValidation, "symmetry.ReadSPGMAT", "bad operation count", err)
	}
	needed := 1 + count*4
	if len(lines) < needed {
		return nil, xerrors.New(xerrors.InputValidation, "symmetry.ReadSPGMAT", "fewer lines than declared operation count requires").
			WithContext("want", needed).WithContext("have", len(lines))
	}

	ops := make([]Operation, count)
	idx := 1
	for q := 0; q < count; q++ {
		var op Operation
		for i := 0; i < 3; i++ {
			row, err := parseTriple(lines[idx])
			if err != nil {
				return nil, xerrors.Wrap(xerrors.InputValidation, "symmetry.ReadSPGMAT", "bad rotation row", err).
					WithContext("op", q).WithContext("row", i)
			}
			op.Rotation[i] = row
			idx++
		}
		tr, err := parseTriple(lines[idx])
		if err != nil {
			return nil, xerrors.Wrap(xerrors.InputValidation, "symmetry.ReadSPGMAT", "bad translation", err).
				WithContext("op", q)
		}
		op.Translation = tr
		idx++
		ops[q] = op
	}
	return ops, nil
}

func parseTriple(line string) ([3]float64, error) {
	var v [3]float64
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return v, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, err
		}
		v[i] = x
	}
	return v, nil
}

// WriteSPGMAT writes ops back out in ReadSPGMAT's format, so the operations
// a symmetry collaborator supplied can be persisted alongside EQAMAT.
func WriteSPGMAT(w io.Writer, ops []Operation) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, len(ops)); err != nil {
		return err
	}
	for _, op := range ops {
		for _, row := range op.Rotation {
			if _, err := fmt.Fprintf(bw, "%.14E %.14E %.14E\n", row[0], row[1], row[2]); err != nil {
				return err
			}
		}
		t := op.Translation
		if _, err := fmt.Fprintf(bw, "%.14E %.14E %.14E\n", t[0], t[1], t[2]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// BuildEQAMAT applies every operation to every site's fractional coordinate
// and matches the image against coords within prec to build the
// equivalent-site table orbit.Partition consumes. Sites are 0-indexed in
// the same order as coords.
func BuildEQAMAT(coords [][3]float64, ops []Operation, prec float64) (*orbit.Table, error) {
	n := len(coords)
	o := len(ops)
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, o)
	}
	for q, op := range ops {
		for i, c := range coords {
			img := op.Apply(c)
			j, err := findMatch(coords, img, prec)
			if err != nil {
				return nil, xerrors.Wrap(xerrors.SymmetryIntegrity, "symmetry.BuildEQAMAT", "operation image does not match any site", err).
					WithContext("site", i).WithContext("op", q)
			}
			m[i][q] = j
		}
	}
	return &orbit.Table{N: n, O: o, M: m}, nil
}

func findMatch(coords [][3]float64, target [3]float64, prec float64) (int, error) {
	for j, c := range coords {
		if withinPrec(c, target, prec) {
			return j, nil
		}
	}
	return 0, fmt.Errorf("no site within prec %g of (%.6f, %.6f, %.6f)", prec, target[0], target[1], target[2])
}

func withinPrec(a, b [3]float64, prec float64) bool {
	for i := 0; i < 3; i++ {
		d := math.Abs(a[i] - b[i])
		d = math.Min(d, math.Abs(1-d)) // periodic wraparound
		if d > prec {
			return false
		}
	}
	return true
}

// WriteEQAMAT persists M as n lines of O site labels, written 1-indexed
// (0-indexed site i is written as i+1).
func WriteEQAMAT(w io.Writer, tbl *orbit.Table) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < tbl.N; i++ {
		for q := 0; q < tbl.O; q++ {
			if q > 0 {
				if _, err := bw.WriteString(" "); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(bw, "%d", tbl.M[i][q]+1); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
