// Package config reads and validates the INDSOD configuration file
// (spec.md §6): a keyed record naming the substitutional species, their
// multiplicities, and which outputs to persist.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsci/indsod/internal/xerrors"
)

const maxSpecies = 5

// INDSOD is the parsed and defaulted configuration record.
type INDSOD struct {
	NSub int
	Subs [maxSpecies]int
	Symb [maxSpecies]string
	Prec float64
	Site int
	LEQA bool
	LSPG bool
	LCFG bool
	LPOS bool
	LPRO bool
}

// Default returns an INDSOD populated with spec.md §6's defaults: nsub=2,
// prec=1e-5, site=1, lcfg=true, everything else false.
func Default() INDSOD {
	return INDSOD{
		NSub: 2,
		Prec: 1e-5,
		Site: 1,
		LCFG: true,
	}
}

// ParseFile reads a minimal "key = value" record from r, one assignment per
// line, case-insensitive keys, '#' starting a comment to end of line. This
// is deliberately a small hand-rolled scanner rather than a general
// namelist parser: the INDSOD dialect is not one any library in the
// retrieved corpus targets, and the format itself is a handful of scalar
// and fixed-length array fields.
func ParseFile(r io.Reader) (INDSOD, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return cfg, xerrors.New(xerrors.InputValidation, "config.ParseFile", "malformed record: missing '='").
				WithContext("line", lineNo)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if err := assign(&cfg, key, val); err != nil {
			return cfg, xerrors.Wrap(xerrors.InputValidation, "config.ParseFile", "invalid value", err).
				WithContext("line", lineNo).WithContext("key", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, xerrors.Wrap(xerrors.InputValidation, "config.ParseFile", "failed to read config", err)
	}
	return cfg, nil
}

func assign(cfg *INDSOD, key, val string) error {
	switch key {
	case "nsub":
		v, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.NSub = v
	case "subs":
		vals := splitList(val)
		for i, s := range vals {
			if i >= maxSpecies {
				break
			}
			v, err := strconv.Atoi(s)
			if err != nil {
				return err
			}
			cfg.Subs[i] = v
		}
	case "symb":
		vals := splitList(val)
		for i, s := range vals {
			if i >= maxSpecies {
				break
			}
			cfg.Symb[i] = s
		}
	case "prec":
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return err
		}
		cfg.Prec = v
	case "site":
		v, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		cfg.Site = v
	case "leqa":
		v, err := parseBool(val)
		if err != nil {
			return err
		}
		cfg.LEQA = v
	case "lspg":
		v, err := parseBool(val)
		if err != nil {
			return err
		}
		cfg.LSPG = v
	case "lcfg":
		v, err := parseBool(val)
		if err != nil {
			return err
		}
		cfg.LCFG = v
	case "lpos":
		v, err := parseBool(val)
		if err != nil {
			return err
		}
		cfg.LPOS = v
	case "lpro":
		v, err := parseBool(val)
		if err != nil {
			return err
		}
		cfg.LPRO = v
	default:
		return fmt.Errorf("unrecognized key %q", key)
	}
	return nil
}

func splitList(val string) []string {
	fields := strings.FieldsFunc(val, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return fields
}

func parseBool(val string) (bool, error) {
	v := strings.Trim(strings.ToLower(val), ".")
	switch v {
	case "true", "t", "1", "yes":
		return true, nil
	case "false", "f", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", val)
	}
}

// Validate checks the cross-field invariants spec.md §6 names: nsub in
// [2,5], every subs/symb entry present and positive/non-empty for the first
// nsub slots, prec <= 1e-2, and the composition sums to the observed count
// of atoms of type Site in the structural input.
func (c INDSOD) Validate(siteAtomCount int) error {
	if c.NSub < 2 || c.NSub > maxSpecies {
		return xerrors.New(xerrors.InputValidation, "config.Validate", "nsub out of range [2,5]").
			WithContext("nsub", c.NSub)
	}
	sum := 0
	for i := 0; i < c.NSub; i++ {
		if c.Subs[i] <= 0 {
			return xerrors.New(xerrors.InputValidation, "config.Validate", "subs entry must be positive").
				WithContext("index", i).WithContext("value", c.Subs[i])
		}
		if strings.TrimSpace(c.Symb[i]) == "" {
			return xerrors.New(xerrors.InputValidation, "config.Validate", "symb entry must not be empty").
				WithContext("index", i)
		}
		sum += c.Subs[i]
	}
	if c.Prec > 1e-2 {
		return xerrors.New(xerrors.InputValidation, "config.Validate", "prec exceeds maximum 1e-2").
			WithContext("prec", c.Prec)
	}
	if sum != siteAtomCount {
		return xerrors.New(xerrors.InputValidation, "config.Validate", "sum of subs does not match atom count at site").
			WithContext("sum", sum).WithContext("siteAtomCount", siteAtomCount)
	}
	return nil
}

// Composition returns the first NSub entries of Subs, the form
// internal/codec and internal/enumerate expect as k.
func (c INDSOD) Composition() []int {
	k := make([]int, c.NSub)
	copy(k, c.Subs[:c.NSub])
	return k
}
