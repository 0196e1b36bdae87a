package tui

import (
	"strings"
	"testing"
)

func TestWordWrap(t *testing.T) {
	cases := []struct {
		text  string
		width int
		want  string
	}{
		{"short line", 40, "short line"},
		{"", 10, ""},
		{"one two three four", 9, "one two\nthree\nfour"},
		{"no wrapping at zero width", 0, "no wrapping at zero width"},
	}
	for _, c := range cases {
		if got := wordWrap(c.text, c.width); got != c.want {
			t.Errorf("wordWrap(%q, %d) = %q, want %q", c.text, c.width, got, c.want)
		}
	}
}

func TestWordWrapRespectsWidth(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(wordWrap(strings.TrimSpace(text), 20), "\n") {
		if len([]rune(line)) > 20 {
			t.Errorf("line %q exceeds width", line)
		}
	}
}

func TestClassifyLine(t *testing.T) {
	cases := []struct {
		line string
		want lineKind
	}{
		{"【Stone Cell】", kindHeader},
		{"[saved]", kindSystem},
		{"You take 12 damage!", kindDanger},
		{"You collapse...", kindDanger},
		{"Game over.", kindDanger},
		{"Pleasure rises by 10...", kindBind},
		{"You climax! Your body betrays you...", kindBind},
		{"Four damp walls.", kindNarrative},
	}
	for _, c := range cases {
		if got := classifyLine(c.line); got != c.want {
			t.Errorf("classifyLine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestHistoryRecall(t *testing.T) {
	h := newHistory(3)

	if _, ok := h.older(); ok {
		t.Error("empty history has nothing older")
	}

	h.add("1")
	h.add("2")
	h.add("2") // consecutive duplicate dropped
	h.add("3")
	if len(h.lines) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(h.lines))
	}

	if got, _ := h.older(); got != "3" {
		t.Errorf("expected newest first, got %q", got)
	}
	if got, _ := h.older(); got != "2" {
		t.Errorf("expected 2, got %q", got)
	}
	if got, _ := h.newer(); got != "3" {
		t.Errorf("expected 3 stepping forward, got %q", got)
	}
	if _, ok := h.newer(); ok {
		t.Error("walking past the newest entry returns to fresh input")
	}

	h.add("4")
	if len(h.lines) != 3 || h.lines[0] != "2" {
		t.Errorf("expected trim to the limit, got %v", h.lines)
	}
}

func TestGauge(t *testing.T) {
	got := gauge("HP", 40, 80, styleGaugeHP)
	if !strings.HasPrefix(got, "HP ") || !strings.HasSuffix(got, " 40/80") {
		t.Errorf("unexpected gauge %q", got)
	}
	if n := strings.Count(got, "█"); n != 4 {
		t.Errorf("expected 4 filled cells at half, got %d", n)
	}

	got = gauge("PT", 0, 0, styleGaugePT)
	if strings.Count(got, "░") != gaugeWidth {
		t.Errorf("zero max renders an empty bar, got %q", got)
	}

	got = gauge("SP", 200, 100, styleGaugeSP)
	if strings.Count(got, "█") != gaugeWidth {
		t.Errorf("overfull clamps to a full bar, got %q", got)
	}
}
