package render

import (
	"strings"
	"testing"

	"warroom-cli/internal/model"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestSummarySections(t *testing.T) {
	out := Summary(reportState(), 100)

	for _, want := range []string{
		"Checkout latency spike",
		"severity P1",
		"What's wrong:",
		"p99 above 4s",
		"connection pool",
		"(high)",
		"causes 2 · steps 1/2 · open actions 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryEmptyWorksheet(t *testing.T) {
	out := Summary(model.DefaultState(), 80)

	if !strings.Contains(out, "Untitled incident") {
		t.Fatalf("expected placeholder title, got:\n%s", out)
	}
	if strings.Contains(out, "What's wrong") {
		t.Fatalf("blank problem section should be omitted:\n%s", out)
	}
	if !strings.Contains(out, "causes 0 · steps 0/0 · open actions 0") {
		t.Fatalf("expected zeroed progress line, got:\n%s", out)
	}
}

func TestSummaryClipsToWidth(t *testing.T) {
	st := model.DefaultState()
	st.Pre.OneLine = strings.Repeat("x", 300)

	for _, line := range strings.Split(Summary(st, 50), "\n") {
		if w := xansi.StringWidth(line); w > 50 {
			t.Fatalf("line wider than 50 (%d): %q", w, line)
		}
	}
}
