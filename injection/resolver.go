// Package injection composes multiple grammars into one token stream. It
// runs a root interpreter, recursively resolves every delegated byte range
// against its target grammar or capture source, and splices the results
// back into a single flat, ordered, full-coverage span stream.
package injection

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/multilight/grammar"
)

// Span is one merged output span. Scopes runs from the root grammar's base
// scope down to the innermost scope, across grammar boundaries.
type Span struct {
	Start  int
	Length int
	Scopes grammar.ScopeStack
}

// Capture is one externally produced span, offsets relative to the range
// the source was asked about. A capture whose first scope is
// "embed:<name>" delegates its own range to <name>, which makes injection
// symmetric: capture-driven hosts can inject pattern grammars too.
type Capture struct {
	Start  int
	Length int
	Scopes []string
}

// CaptureSource adapts an externally driven parser (tree-sitter) to the
// resolver: given the bytes of an injected range, return flat, ordered,
// scope-tagged captures. Gaps are legal and come back as host-scoped text.
type CaptureSource interface {
	Captures(src []byte) ([]Capture, error)
}

// Target is one resolvable injection target: a grammar to interpret, or a
// capture source to adapt. Exactly one field is set.
type Target struct {
	Grammar *grammar.Grammar
	Source  CaptureSource
}

// Table resolves injection target names. The registry implements it; tests
// use MapTable.
type Table interface {
	Lookup(name string) (Target, bool)
}

// MapTable is a Table backed by a plain map.
type MapTable map[string]Target

// Lookup implements Table.
func (m MapTable) Lookup(name string) (Target, bool) {
	t, ok := m[name]
	return t, ok
}

// Resolve interprets src under g, recursively resolves every injection
// through table, and returns the merged stream: ordered, non-overlapping,
// covering [0, len(src)) exactly, each span carrying its full root-to-leaf
// scope stack. A nil table resolves no injections; delegated ranges keep
// their host placeholder scopes.
func Resolve(src string, g *grammar.Grammar, table Table) []Span {
	spans := resolve(src, g, table, nil, 0, len(src))
	return Coalesce(spans)
}

func resolve(src string, g *grammar.Grammar, table Table, prefix grammar.ScopeStack, depth, budget int) []Span {
	interp := grammar.NewInterpreter(g)

	var spans []Span
	var points []grammar.InjectionPoint
	for _, line := range splitLines(src) {
		toks, injs := interp.AdvanceLine(line)
		for _, t := range toks {
			spans = append(spans, Span{Start: t.Start, Length: t.Length, Scopes: prefixed(prefix, t.Scopes)})
		}
		points = append(points, injs...)
	}
	points = append(points, interp.Finish()...)

	for _, p := range points {
		if p.End <= p.Start || table == nil {
			continue
		}
		child := resolveTarget(src[p.Start:p.End], p, table, prefix, depth, budget)
		if child == nil {
			continue
		}
		for i := range child {
			child[i].Start += p.Start
		}
		spans = splice(spans, p.Start, p.End, child)
	}
	return spans
}

// resolveTarget produces the replacement spans for one injection point,
// offsets relative to the injected range. Returns nil when the target is
// unknown or the recursion budget is spent; the host's placeholder spans
// then stand, degrading rather than failing.
func resolveTarget(sub string, p grammar.InjectionPoint, table Table, prefix grammar.ScopeStack, depth, budget int) []Span {
	if budget <= 0 {
		log.Warn().Str("target", p.Target).Int("depth", depth).
			Msg("injection recursion budget exhausted")
		return nil
	}
	target, ok := table.Lookup(p.Target)
	if !ok {
		log.Warn().Str("source", p.Source).Str("target", p.Target).
			Msg("unresolved injection target")
		return nil
	}
	childPrefix := prefixed(prefix, p.Prefix)
	childBudget := min(budget-1, len(sub))
	switch {
	case target.Grammar != nil:
		return resolve(sub, target.Grammar, table, childPrefix, depth+1, childBudget)
	case target.Source != nil:
		return fromCaptures(sub, target.Source, table, childPrefix, depth+1, childBudget)
	}
	return nil
}

// fromCaptures converts an external capture stream over sub into spans.
// The stream is already flat and ordered; only re-anchoring, gap filling,
// scope prefixing and embed: recursion happen here.
func fromCaptures(sub string, cs CaptureSource, table Table, prefix grammar.ScopeStack, depth, budget int) []Span {
	caps, err := cs.Captures([]byte(sub))
	if err != nil {
		log.Warn().Err(err).Msg("capture source failed, range keeps host scopes")
		return nil
	}
	var spans []Span
	pos := 0
	for _, c := range caps {
		start, end := c.Start, c.Start+c.Length
		if start < pos {
			start = pos
		}
		if end > len(sub) {
			end = len(sub)
		}
		if end <= start {
			continue
		}
		if start > pos {
			spans = append(spans, Span{Start: pos, Length: start - pos, Scopes: prefix})
		}
		if name, ok := embedTarget(c.Scopes); ok && table != nil {
			p := grammar.InjectionPoint{Target: name, Prefix: nil, Depth: depth}
			child := resolveTarget(sub[start:end], p, table, prefix, depth, budget)
			if child != nil {
				for i := range child {
					child[i].Start += start
				}
				spans = append(spans, child...)
				pos = end
				continue
			}
		}
		spans = append(spans, Span{Start: start, Length: end - start, Scopes: prefix.PushAll(c.Scopes)})
		pos = end
	}
	if pos < len(sub) {
		spans = append(spans, Span{Start: pos, Length: len(sub) - pos, Scopes: prefix})
	}
	return spans
}

// embedTarget extracts the target name from an "embed:<name>" capture.
func embedTarget(scopes []string) (string, bool) {
	if len(scopes) == 0 {
		return "", false
	}
	name, ok := strings.CutPrefix(scopes[0], "embed:")
	return name, ok && name != ""
}

// splice replaces every span piece inside [start, end) with child, keeping
// pieces of straddling spans that fall outside the range.
func splice(spans []Span, start, end int, child []Span) []Span {
	out := make([]Span, 0, len(spans)+len(child))
	inserted := false
	for _, s := range spans {
		sEnd := s.Start + s.Length
		switch {
		case sEnd <= start:
			out = append(out, s)
		case s.Start >= end:
			if !inserted {
				out = append(out, child...)
				inserted = true
			}
			out = append(out, s)
		default:
			if s.Start < start {
				out = append(out, Span{Start: s.Start, Length: start - s.Start, Scopes: s.Scopes})
			}
			if !inserted {
				out = append(out, child...)
				inserted = true
			}
			if sEnd > end {
				out = append(out, Span{Start: end, Length: sEnd - end, Scopes: s.Scopes})
			}
		}
	}
	if !inserted {
		out = append(out, child...)
	}
	return out
}

// Coalesce merges adjacent spans with identical scope stacks, the final
// flattening step of the merger.
func Coalesce(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if last.Start+last.Length == s.Start && last.Scopes.Equal(s.Scopes) {
			last.Length += s.Length
			continue
		}
		out = append(out, s)
	}
	return out
}

func prefixed(prefix grammar.ScopeStack, scopes grammar.ScopeStack) grammar.ScopeStack {
	if len(prefix) == 0 {
		return scopes
	}
	out := make(grammar.ScopeStack, 0, len(prefix)+len(scopes))
	out = append(out, prefix...)
	return append(out, scopes...)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
