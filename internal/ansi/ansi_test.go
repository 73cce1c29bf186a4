package ansi

import (
	"strings"
	"testing"

	"github.com/xonecas/multilight"
	"github.com/xonecas/multilight/theme"
)

func TestRender(t *testing.T) {
	fg, _ := theme.ParseColor("#ff0000")
	bg, _ := theme.ParseColor("#101010")
	h := &multilight.Highlighted{
		Background: theme.Style{Background: &bg},
		Lines: []multilight.Line{{
			Start:  0,
			Length: 5,
			Spans: []multilight.StyledSpan{
				{Start: 0, Length: 2, Style: theme.Style{}},
				{Start: 2, Length: 3, Style: theme.Style{Foreground: &fg, Bold: theme.TriOn}},
			},
		}},
	}

	out := Render(h, "abcde")
	if !strings.Contains(out, "\x1b[48;2;16;16;16m") {
		t.Error("block background sequence missing")
	}
	if !strings.Contains(out, "\x1b[38;2;255;0;0m\x1b[1mcde") {
		t.Errorf("styled span missing: %q", out)
	}
	// The background is restored after every reset so a terminal never
	// shows its own background mid-line.
	for rest := out; ; {
		i := strings.Index(rest, "\x1b[0m")
		if i < 0 {
			break
		}
		rest = rest[i+len("\x1b[0m"):]
		if rest != "" && !strings.HasPrefix(rest, "\x1b[48;2;16;16;16m") {
			t.Fatalf("reset not followed by background restore: %q", out)
		}
	}
	if got := stripSGR(out); got != "abcde" {
		t.Errorf("stripped text = %q", got)
	}
}

func TestRenderOverrideBackground(t *testing.T) {
	line, _ := theme.ParseColor("#003300")
	h := &multilight.Highlighted{
		Lines: []multilight.Line{{
			Start:    0,
			Length:   3,
			Override: &theme.Style{Background: &line},
			Spans:    []multilight.StyledSpan{{Start: 0, Length: 3}},
		}},
	}
	out := Render(h, "abc")
	if !strings.HasPrefix(out, "\x1b[48;2;0;51;0m") {
		t.Errorf("line override background missing: %q", out)
	}
}

func TestRenderNewlineOutsideStyle(t *testing.T) {
	bg, _ := theme.ParseColor("#101010")
	h := &multilight.Highlighted{
		Background: theme.Style{Background: &bg},
		Lines: []multilight.Line{
			{Start: 0, Length: 2, Spans: []multilight.StyledSpan{{Start: 0, Length: 2}}},
			{Start: 2, Length: 1, Spans: []multilight.StyledSpan{{Start: 2, Length: 1}}},
		},
	}
	out := Render(h, "a\nb")
	if !strings.Contains(out, "\x1b[0m\n") {
		t.Errorf("newline emitted inside an open style: %q", out)
	}
	if got := stripSGR(out); got != "a\nb" {
		t.Errorf("stripped text = %q", got)
	}
}

func TestRenderNumbered(t *testing.T) {
	fg, _ := theme.ParseColor("#ffffff")
	bg, _ := theme.ParseColor("#000000")
	h := &multilight.Highlighted{
		Background: theme.Style{Foreground: &fg, Background: &bg},
		Lines: []multilight.Line{
			{Start: 0, Length: 2, Spans: []multilight.StyledSpan{{Start: 0, Length: 2}}},
			{Start: 2, Length: 1, Spans: []multilight.StyledSpan{{Start: 2, Length: 1}}},
		},
	}

	out := RenderNumbered(h, "a\nb")
	if got := strings.Count(out, "\n"); got != 2 {
		t.Fatalf("got %d output lines, want 2:\n%q", got, out)
	}
	// Gutter: white faded halfway to black, then the number, then a reset.
	if !strings.Contains(out, "\x1b[38;2;128;128;128m   1\x1b[0m  ") {
		t.Errorf("line 1 gutter missing or wrong color: %q", out)
	}
	if !strings.Contains(out, "   2\x1b[0m  ") {
		t.Errorf("line 2 gutter missing: %q", out)
	}
	if got := stripSGR(out); got != "   1  a\n   2  b\n" {
		t.Errorf("stripped output = %q", got)
	}
}

func TestRenderNumberedNoDefaults(t *testing.T) {
	h := &multilight.Highlighted{
		Lines: []multilight.Line{
			{Start: 0, Length: 1, Spans: []multilight.StyledSpan{{Start: 0, Length: 1}}},
		},
	}
	out := RenderNumbered(h, "x")
	// Without default colors there is no gutter color to fade.
	if !strings.HasPrefix(out, "   1\x1b[0m  ") {
		t.Errorf("plain gutter = %q", out)
	}
}

func TestSplitLinesPropagatesState(t *testing.T) {
	block := "\x1b[1mfirst\nsecond\x1b[0m\nthird"
	lines := SplitLines(block)
	if len(lines) != 3 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "\x1b[1m") {
		t.Errorf("open bold not propagated: %q", lines[1])
	}
	if strings.HasPrefix(lines[2], "\x1b[1m") {
		t.Errorf("reset state leaked: %q", lines[2])
	}
}

func stripSGR(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
