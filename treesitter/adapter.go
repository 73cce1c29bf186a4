// Package treesitter adapts a tree-sitter parse plus a highlight query to
// the injection resolver's capture-source seam. The parse and the query
// runtime come from go-tree-sitter; this package only turns query captures
// into flat, ordered, scope-tagged spans for a byte range.
package treesitter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/xonecas/multilight/injection"
)

// Adapter is an injection.CaptureSource backed by one tree-sitter language
// and one highlight query. Immutable and shareable; every Captures call
// uses its own parser and cursor.
type Adapter struct {
	lang  *sitter.Language
	query *sitter.Query
}

// New compiles the highlight query against the language. Capture names are
// used directly as scope names ("comment", "string.quoted"); a capture
// named "embed.<target>" marks its span for delegation to another grammar
// and surfaces as an "embed:<target>" scope.
func New(lang *sitter.Language, highlights []byte) (*Adapter, error) {
	q, err := sitter.NewQuery(highlights, lang)
	if err != nil {
		return nil, fmt.Errorf("compile highlight query: %w", err)
	}
	return &Adapter{lang: lang, query: q}, nil
}

// Captures implements injection.CaptureSource: parse src, run the query,
// and flatten the captures byte-wise with first-capture-wins, so an early
// specific pattern is not overwritten by a later catch-all.
func (a *Adapter) Captures(src []byte) ([]injection.Capture, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(a.lang)

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(a.query, tree.RootNode())

	// claims[i] = 1-based index into names for byte i; 0 = unclaimed.
	claims := make([]int32, len(src))
	var names []string
	index := map[string]int32{}

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			name := scopeForCapture(a.query.CaptureNameForId(c.Index))
			if name == "" {
				continue
			}
			start, end := int(c.Node.StartByte()), int(c.Node.EndByte())
			if start < 0 || end > len(src) || start >= end {
				continue
			}
			id, seen := index[name]
			if !seen {
				names = append(names, name)
				id = int32(len(names))
				index[name] = id
			}
			for i := start; i < end; i++ {
				if claims[i] == 0 {
					claims[i] = id
				}
			}
		}
	}

	return compress(claims, names), nil
}

// compress turns the per-byte claim table into ordered non-overlapping
// captures, leaving unclaimed bytes as gaps for the resolver to fill.
func compress(claims []int32, names []string) []injection.Capture {
	var out []injection.Capture
	start := 0
	for i := 1; i <= len(claims); i++ {
		if i < len(claims) && claims[i] == claims[start] {
			continue
		}
		if claims[start] != 0 {
			out = append(out, injection.Capture{
				Start:  start,
				Length: i - start,
				Scopes: []string{names[claims[start]-1]},
			})
		}
		start = i
	}
	return out
}

// scopeForCapture converts a query capture name to a scope name. Dots are
// kept as-is; "embed.x" becomes the resolver's "embed:x" marker; leading
// underscores mark helper captures that produce no scope.
func scopeForCapture(name string) string {
	if name == "" || name[0] == '_' {
		return ""
	}
	if rest, ok := strings.CutPrefix(name, "embed."); ok && rest != "" {
		return "embed:" + rest
	}
	return name
}
