package progress

import (
	"strings"
	"testing"
)

func TestPutInProgressEndsWithCR(t *testing.T) {
	var sb strings.Builder
	b := New(&sb)
	b.Set(10)
	b.Put(3)
	out := sb.String()
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("expected carriage return terminator, got %q", out)
	}
	if strings.Contains(out, "\n") {
		t.Errorf("did not expect newline before completion, got %q", out)
	}
}

func TestPutCompleteEndsWithLF(t *testing.T) {
	var sb strings.Builder
	b := New(&sb)
	b.Set(10)
	b.Put(10)
	out := sb.String()
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("expected newline terminator at completion, got %q", out)
	}
}

func TestPutRendersFullWidthBar(t *testing.T) {
	var sb strings.Builder
	b := New(&sb)
	b.Set(4)
	b.Put(2)
	out := sb.String()
	start := strings.Index(out, "[")
	end := strings.Index(out, "]")
	if start < 0 || end < 0 {
		t.Fatalf("no bracketed bar in output %q", out)
	}
	bar := out[start+1 : end]
	if len(bar) != barWidth {
		t.Errorf("bar width = %d, want %d", len(bar), barWidth)
	}
	if strings.Count(bar, "#") != barWidth/2 {
		t.Errorf("expected half the bar filled at 50%%, got %q", bar)
	}
}

func TestPutWithoutSetIsNoop(t *testing.T) {
	var sb strings.Builder
	b := New(&sb)
	b.Put(5)
	if sb.String() != "" {
		t.Errorf("expected no output before Set, got %q", sb.String())
	}
}
