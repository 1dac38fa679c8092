package config

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	d := Default()
	if d.NSub != 2 || d.Site != 1 || !d.LCFG || d.LEQA || d.LSPG || d.LPOS || d.LPRO {
		t.Errorf("unexpected defaults: %+v", d)
	}
	if d.Prec != 1e-5 {
		t.Errorf("Prec default = %v, want 1e-5", d.Prec)
	}
}

func TestParseFile(t *testing.T) {
	input := `
# a comment
nsub = 3
subs = 4, 4, 8
symb = Fe, Co, Ni
prec = 1e-6
site = 2
leqa = .true.
lcfg = .false.
`
	cfg, err := ParseFile(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NSub != 3 {
		t.Errorf("NSub = %d, want 3", cfg.NSub)
	}
	if cfg.Subs != [5]int{4, 4, 8, 0, 0} {
		t.Errorf("Subs = %v", cfg.Subs)
	}
	if cfg.Symb[0] != "Fe" || cfg.Symb[1] != "Co" || cfg.Symb[2] != "Ni" {
		t.Errorf("Symb = %v", cfg.Symb)
	}
	if cfg.Prec != 1e-6 {
		t.Errorf("Prec = %v, want 1e-6", cfg.Prec)
	}
	if cfg.Site != 2 {
		t.Errorf("Site = %d, want 2", cfg.Site)
	}
	if !cfg.LEQA || cfg.LCFG {
		t.Errorf("LEQA/LCFG = %v/%v, want true/false", cfg.LEQA, cfg.LCFG)
	}
}

func TestParseFileMalformedLine(t *testing.T) {
	_, err := ParseFile(strings.NewReader("not a valid line"))
	if err == nil {
		t.Error("expected error for missing '='")
	}
}

func TestParseFileUnknownKey(t *testing.T) {
	_, err := ParseFile(strings.NewReader("bogus = 1"))
	if err == nil {
		t.Error("expected error for unrecognized key")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.NSub = 2
	cfg.Subs[0], cfg.Subs[1] = 4, 4
	cfg.Symb[0], cfg.Symb[1] = "Fe", "Co"
	if err := cfg.Validate(8); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := cfg.Validate(9); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestValidateRejectsBadNSub(t *testing.T) {
	cfg := Default()
	cfg.NSub = 1
	if err := cfg.Validate(0); err == nil {
		t.Error("expected error for nsub < 2")
	}
}

func TestValidateRejectsExcessivePrec(t *testing.T) {
	cfg := Default()
	cfg.Subs[0], cfg.Subs[1] = 1, 1
	cfg.Symb[0], cfg.Symb[1] = "Fe", "Co"
	cfg.Prec = 0.1
	if err := cfg.Validate(2); err == nil {
		t.Error("expected error for prec > 1e-2")
	}
}

func TestComposition(t *testing.T) {
	cfg := Default()
	cfg.NSub = 3
	cfg.Subs = [5]int{2, 3, 4, 0, 0}
	got := cfg.Composition()
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Composition length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Composition[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
