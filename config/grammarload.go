package config

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/multilight/grammar"
)

// BuildGrammar turns a normalized grammar document (any source format)
// into an executable Grammar. Pattern compile errors fail the build: a
// grammar with a malformed regex never reaches an interpreter.
func BuildGrammar(doc *Document) (*grammar.Grammar, error) {
	root := doc.Root
	if root == nil || root.Kind != KindObject {
		return nil, fmt.Errorf("grammar %s: root is not an object", doc.FileName)
	}

	name := root.Field("scopeName").StringOr(root.Field("name").StringOr(""))
	if name == "" {
		return nil, fmt.Errorf("grammar %s: missing scopeName", doc.FileName)
	}

	g := &grammar.Grammar{
		Name:       name,
		FileTypes:  root.Field("fileTypes").Strings(),
		Repository: map[string]*grammar.Rule{},
		LineScope:  root.Field("lineScope").StringOr(""),
	}

	if src := root.Field("firstLineMatch").StringOr(""); src != "" {
		p, err := grammar.CompilePattern(src)
		if err != nil {
			return nil, fmt.Errorf("grammar %s: firstLineMatch: %w", doc.FileName, err)
		}
		g.FirstLine = p
	}

	if repo := root.Field("repository"); repo != nil && repo.Kind == KindObject {
		for key, n := range repo.Obj {
			r, err := buildRule(doc, n)
			if err != nil {
				return nil, fmt.Errorf("grammar %s: repository %q: %w", doc.FileName, key, err)
			}
			g.Repository[key] = r
		}
	}

	rootPatterns, err := buildRules(doc, root.Field("patterns"))
	if err != nil {
		return nil, fmt.Errorf("grammar %s: %w", doc.FileName, err)
	}
	g.Root = &grammar.Rule{Patterns: rootPatterns}

	if inj := root.Field("injections"); inj != nil && inj.Kind == KindObject {
		selectors := make([]string, 0, len(inj.Obj))
		for sel := range inj.Obj {
			selectors = append(selectors, sel)
		}
		sort.Strings(selectors)
		for _, sel := range selectors {
			r, err := buildRule(doc, inj.Obj[sel])
			if err != nil {
				return nil, fmt.Errorf("grammar %s: injection %q: %w", doc.FileName, sel, err)
			}
			g.Injections = append(g.Injections, grammar.InjectionRule{Selector: sel, Rule: r})
		}
	}
	return g, nil
}

func buildRules(doc *Document, n *Node) ([]*grammar.Rule, error) {
	if n == nil || n.Kind != KindArray {
		return nil, nil
	}
	out := make([]*grammar.Rule, 0, len(n.Arr))
	for i, item := range n.Arr {
		r, err := buildRule(doc, item)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func buildRule(doc *Document, n *Node) (*grammar.Rule, error) {
	if n == nil || n.Kind != KindObject {
		return nil, fmt.Errorf("rule is not an object")
	}
	r := &grammar.Rule{
		Scope:        n.Field("name").StringOr(""),
		ContentScope: n.Field("contentName").StringOr(""),
		Include:      n.Field("include").StringOr(""),
		Embed:        n.Field("embed").StringOr(""),
	}

	var err error
	if r.Match, err = compileField(n, "match", false); err != nil {
		return nil, err
	}
	if r.Begin, err = compileField(n, "begin", false); err != nil {
		return nil, err
	}
	if r.End, err = compileField(n, "end", true); err != nil {
		return nil, err
	}
	if r.While, err = compileField(n, "while", true); err != nil {
		return nil, err
	}

	r.Captures = buildCaptures(doc, n.Field("captures"))
	r.BeginCaptures = buildCaptures(doc, n.Field("beginCaptures"))
	r.EndCaptures = buildCaptures(doc, n.Field("endCaptures"))
	r.WhileCaptures = buildCaptures(doc, n.Field("whileCaptures"))

	if r.Patterns, err = buildRules(doc, n.Field("patterns")); err != nil {
		return nil, err
	}
	return r, nil
}

// compileField compiles one pattern field. close marks end/while patterns,
// where backreferences mean begin captures rather than the pattern's own
// groups.
func compileField(n *Node, key string, close bool) (*grammar.Pattern, error) {
	src := n.Field(key).StringOr("")
	if src == "" {
		return nil, nil
	}
	compile := grammar.CompilePattern
	if close {
		compile = grammar.CompileClosePattern
	}
	p, err := compile(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return p, nil
}

// buildCaptures reads a {"1": {"name": "scope"}, ...} object. Keys that
// are not capture indices are skipped with a warning; one bad entry does
// not sink the rule.
func buildCaptures(doc *Document, n *Node) map[int]string {
	if n == nil || n.Kind != KindObject {
		return nil
	}
	out := make(map[int]string, len(n.Obj))
	for key, entry := range n.Obj {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			log.Warn().Str("file", doc.FileName).Str("key", key).
				Msg("capture key is not an index, skipping")
			continue
		}
		scope := entry.Field("name").StringOr(entry.StringOr(""))
		if scope == "" {
			continue
		}
		out[idx] = scope
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
