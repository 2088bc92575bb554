package main

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Album", "Score"},
		[][]string{
			{"Dummy", "0.85"},
			{"Portishead"},
		},
		1,
	)
	for _, want := range []string{"Album", "Score", "Dummy", "0.85", "Portishead"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTableNoHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"row"}}); out != "" {
		t.Fatalf("expected empty output without headers, got %q", out)
	}
}

func TestScoreCell(t *testing.T) {
	if got := scoreCell(0.6); got != "0.60" {
		t.Fatalf("scoreCell(0.6) = %q, want 0.60", got)
	}
	if got := scoreCell(1); got != "1.00" {
		t.Fatalf("scoreCell(1) = %q, want 1.00", got)
	}
}
