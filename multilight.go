// Package multilight is a syntax-highlighting engine that is oblivious to
// where its grammars and themes came from: TextMate property-list
// grammars, line-oriented YAML grammars and tree-sitter capture streams
// all normalize into the same pipeline, and a grammar in one format can
// delegate ranges of text to a grammar in another, to any depth.
//
// The pipeline is interpreter → injection resolver → span merger → theme
// resolver; this package is the composition, the pieces live in the
// grammar, injection and theme subpackages.
package multilight

import (
	"errors"
	"iter"
	"strings"

	"github.com/xonecas/multilight/grammar"
	"github.com/xonecas/multilight/injection"
	"github.com/xonecas/multilight/theme"
)

// Hard-error preconditions. Everything else degrades inside the pipeline
// instead of failing.
var (
	ErrNilGrammar = errors.New("highlight: nil grammar")
	ErrNilTheme   = errors.New("highlight: nil theme")
)

// StyledSpan is one themed token: a byte range, the style the theme
// resolved for it, and the full scope stack that produced the style.
type StyledSpan struct {
	Start  int
	Length int
	Style  theme.Style
	Scopes grammar.ScopeStack
}

// Line groups the spans covering one source line. Override, when present,
// is a whole-line style (diff add/remove backgrounds); Start/Length cover
// the line's bytes including its newline.
type Line struct {
	Start    int
	Length   int
	Override *theme.Style
	Spans    []StyledSpan
}

// Highlighted is the output of one pipeline run: the theme's whole-block
// default style plus the per-line spans.
type Highlighted struct {
	Background theme.Style
	Lines      []Line
}

// All iterates the lines in order with their indices.
func (h *Highlighted) All() iter.Seq2[int, Line] {
	return func(yield func(int, Line) bool) {
		for i, line := range h.Lines {
			if !yield(i, line) {
				return
			}
		}
	}
}

// Highlight runs the full pipeline over src with no cross-grammar
// injection table: delegated ranges keep their host scopes.
func Highlight(g *grammar.Grammar, t *theme.Theme, src string) (*Highlighted, error) {
	return HighlightWith(g, t, src, nil)
}

// HighlightWith runs the full pipeline, resolving cross-grammar
// injections through table (usually a registry). The returned spans are
// ordered, non-overlapping and cover every byte of src.
func HighlightWith(g *grammar.Grammar, t *theme.Theme, src string, table injection.Table) (*Highlighted, error) {
	if g == nil {
		return nil, ErrNilGrammar
	}
	if t == nil {
		return nil, ErrNilTheme
	}

	spans := injection.Resolve(src, g, table)

	h := &Highlighted{Background: t.Default}
	styles := map[string]theme.Style{} // resolution cache per scope stack

	resolve := func(scopes grammar.ScopeStack) theme.Style {
		key := strings.Join(scopes, "\x00")
		if s, ok := styles[key]; ok {
			return s
		}
		s := t.Resolve(scopes)
		styles[key] = s
		return s
	}

	si := 0
	for _, bounds := range lineBounds(src) {
		line := Line{Start: bounds[0], Length: bounds[1] - bounds[0]}
		for si < len(spans) && spans[si].Start < bounds[1] {
			s := spans[si]
			start, end := s.Start, s.Start+s.Length
			if start < bounds[0] {
				start = bounds[0]
			}
			if end > bounds[1] {
				end = bounds[1]
			}
			if end > start {
				line.Spans = append(line.Spans, StyledSpan{
					Start:  start,
					Length: end - start,
					Style:  resolve(s.Scopes),
					Scopes: s.Scopes,
				})
			}
			if s.Start+s.Length <= bounds[1] {
				si++
			} else {
				break // span continues on the next line
			}
		}
		if g.LineScope != "" && len(line.Spans) > 0 {
			wrapper := line.Spans[0].Scopes.Push(g.LineScope)
			if t.HasMatch(wrapper) {
				style := resolve(wrapper)
				line.Override = &style
			}
		}
		h.Lines = append(h.Lines, line)
	}
	return h, nil
}

// lineBounds returns the [start, end) byte range of every line, newline
// included.
func lineBounds(src string) [][2]int {
	var out [][2]int
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			out = append(out, [2]int{start, i + 1})
			start = i + 1
		}
	}
	if start < len(src) {
		out = append(out, [2]int{start, len(src)})
	}
	return out
}
