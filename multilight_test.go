package multilight

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/x/exp/golden"
	"pgregory.net/rapid"

	"github.com/xonecas/multilight/grammar"
	"github.com/xonecas/multilight/theme"
)

func boldGrammar() *grammar.Grammar {
	return &grammar.Grammar{
		Name: "source.test",
		Root: &grammar.Rule{Patterns: []*grammar.Rule{
			{Scope: "bold", Begin: grammar.MustPattern(`<b>`), End: grammar.MustPattern(`</b>`)},
		}},
	}
}

func boldTheme() *theme.Theme {
	fg, _ := theme.ParseColor("#cccccc")
	hot, _ := theme.ParseColor("#ff0000")
	return theme.New("test", theme.Style{Foreground: &fg}, []theme.Rule{
		{Selector: "bold", Style: theme.Style{Foreground: &hot, Bold: theme.TriOn}},
	})
}

func TestHighlightNilArgs(t *testing.T) {
	if _, err := Highlight(nil, boldTheme(), "x"); err != ErrNilGrammar {
		t.Errorf("nil grammar error = %v", err)
	}
	if _, err := Highlight(boldGrammar(), nil, "x"); err != ErrNilTheme {
		t.Errorf("nil theme error = %v", err)
	}
}

func TestHighlightStyles(t *testing.T) {
	h, err := Highlight(boldGrammar(), boldTheme(), "a<b>c</b>d")
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(h.Lines))
	}
	spans := h.Lines[0].Spans
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3: %+v", len(spans), spans)
	}
	if spans[0].Style.Bold == theme.TriOn || spans[2].Style.Bold == theme.TriOn {
		t.Error("plain text picked up the bold style")
	}
	if spans[1].Style.Bold != theme.TriOn || spans[1].Style.Foreground.Hex() != "#ff0000" {
		t.Errorf("region style = %+v", spans[1].Style)
	}
	if spans[0].Style.Foreground.Hex() != "#cccccc" {
		t.Errorf("plain style = %+v", spans[0].Style)
	}
	if h.Background.Foreground.Hex() != "#cccccc" {
		t.Errorf("background = %+v", h.Background)
	}
}

func TestHighlightDump(t *testing.T) {
	h, err := Highlight(boldGrammar(), boldTheme(), "a<b>c</b>d")
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for _, line := range h.Lines {
		for _, s := range line.Spans {
			fmt.Fprintf(&b, "%d+%d\t%s\n", s.Start, s.Length, s.Scopes)
		}
	}
	golden.RequireEqual(t, []byte(b.String()))
}

func TestHighlightLineOverride(t *testing.T) {
	g := &grammar.Grammar{
		Name:      "source.diff",
		LineScope: "line",
		Root: &grammar.Rule{Patterns: []*grammar.Rule{
			{Scope: "markup.inserted", Match: grammar.MustPattern(`^\+.*`)},
		}},
	}
	bg, _ := theme.ParseColor("#103910")
	th := theme.New("diff", theme.Style{}, []theme.Rule{
		{Selector: "markup.inserted line", Style: theme.Style{Background: &bg}},
	})

	h, err := Highlight(g, th, "+added\ncontext\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Lines) != 2 {
		t.Fatalf("got %d lines", len(h.Lines))
	}
	added := h.Lines[0]
	if added.Override == nil || added.Override.Background.Hex() != "#103910" {
		t.Errorf("added line override = %+v", added.Override)
	}
	if h.Lines[1].Override != nil {
		t.Errorf("context line got an override: %+v", h.Lines[1].Override)
	}
}

func TestHighlightMultiline(t *testing.T) {
	h, err := Highlight(boldGrammar(), boldTheme(), "<b>one\ntwo</b>\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Lines) != 2 {
		t.Fatalf("got %d lines", len(h.Lines))
	}
	// The region crosses the newline: both lines carry the bold style and
	// neither leaks spans past its own bounds.
	for i, line := range h.Lines {
		if len(line.Spans) == 0 {
			t.Fatalf("line %d has no spans", i)
		}
		if line.Spans[0].Style.Bold != theme.TriOn {
			t.Errorf("line %d lost the region style", i)
		}
	}
}

func TestHighlightProperties(t *testing.T) {
	g := boldGrammar()
	th := boldTheme()
	pieces := rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "<", ">", "<b>", "</b>", "\n"}), 0, 24)

	rapid.Check(t, func(t *rapid.T) {
		src := strings.Join(pieces.Draw(t, "pieces"), "")
		h, err := Highlight(g, th, src)
		if err != nil {
			t.Fatalf("highlight: %v", err)
		}

		pos := 0
		for i, line := range h.Lines {
			if line.Start != pos {
				t.Fatalf("line %d starts at %d, want %d", i, line.Start, pos)
			}
			if line.Length <= 0 {
				t.Fatalf("line %d has length %d", i, line.Length)
			}
			at := line.Start
			for j, s := range line.Spans {
				if s.Start != at {
					t.Fatalf("line %d span %d starts at %d, want %d", i, j, s.Start, at)
				}
				if s.Length <= 0 {
					t.Fatalf("line %d span %d has length %d", i, j, s.Length)
				}
				at += s.Length
			}
			if at != line.Start+line.Length {
				t.Fatalf("line %d spans cover [%d,%d), want [%d,%d)",
					i, line.Start, at, line.Start, line.Start+line.Length)
			}
			pos += line.Length
		}
		if pos != len(src) {
			t.Fatalf("lines cover [0,%d), want [0,%d)", pos, len(src))
		}
	})
}
