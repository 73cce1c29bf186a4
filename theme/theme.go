// Package theme resolves scope stacks to concrete styles. A Theme is an
// ordered rule list; resolution picks every matching rule, orders them by
// specificity, and folds their styles field by field over the theme
// default. Themes are immutable and safe to share across parses.
package theme

import (
	"fmt"
	"strings"
)

// Tri is a tri-state decoration flag: a rule can leave a decoration
// untouched, force it on, or force it off.
type Tri int8

const (
	TriUnset Tri = iota
	TriOn
	TriOff
)

// Bool reports the effective value with unset meaning false.
func (t Tri) Bool() bool { return t == TriOn }

// Style is the resolved appearance of a span. Nil colors mean "not set",
// which is what lets field-level override composition work: a general rule
// can supply a background while a specific rule overrides only the
// foreground. Extra carries editor-specific keys the resolver does not
// interpret (caret, selection and friends) as passthrough data.
type Style struct {
	Foreground *Color
	Background *Color

	Bold          Tri
	Italic        Tri
	Underline     Tri
	Strikethrough Tri

	Extra map[string]string
}

// Merge returns s with every field that over explicitly sets replaced.
func (s Style) Merge(over Style) Style {
	out := s
	if over.Foreground != nil {
		out.Foreground = over.Foreground
	}
	if over.Background != nil {
		out.Background = over.Background
	}
	if over.Bold != TriUnset {
		out.Bold = over.Bold
	}
	if over.Italic != TriUnset {
		out.Italic = over.Italic
	}
	if over.Underline != TriUnset {
		out.Underline = over.Underline
	}
	if over.Strikethrough != TriUnset {
		out.Strikethrough = over.Strikethrough
	}
	if len(over.Extra) > 0 {
		merged := make(map[string]string, len(s.Extra)+len(over.Extra))
		for k, v := range s.Extra {
			merged[k] = v
		}
		for k, v := range over.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}

// IsZero reports whether the style sets nothing at all.
func (s Style) IsZero() bool {
	return s.Foreground == nil && s.Background == nil &&
		s.Bold == TriUnset && s.Italic == TriUnset &&
		s.Underline == TriUnset && s.Strikethrough == TriUnset &&
		len(s.Extra) == 0
}

// Rule is one theme rule: a scope selector plus the style it applies.
type Rule struct {
	// Selector is a comma-separated list of alternatives; within an
	// alternative, space-separated segments are parent qualifiers with the
	// last segment matching the innermost scope.
	Selector string
	Style    Style

	alternatives []selector
}

// Theme is an ordered, immutable rule list plus the default style used
// when nothing matches.
type Theme struct {
	Name    string
	Default Style
	rules   []Rule
}

// New builds a Theme. Rule order is meaningful: among equally specific
// matches, later rules override earlier ones.
func New(name string, def Style, rules []Rule) *Theme {
	t := &Theme{Name: name, Default: def, rules: make([]Rule, len(rules))}
	copy(t.rules, rules)
	for i := range t.rules {
		t.rules[i].alternatives = parseSelector(t.rules[i].Selector)
	}
	return t
}

// Rules returns the theme's rule list in declaration order.
func (t *Theme) Rules() []Rule { return t.rules }

func (t *Theme) String() string {
	return fmt.Sprintf("theme %q (%d rules)", t.Name, len(t.rules))
}

// selector is one parsed alternative: parent qualifiers in order, then the
// innermost segment.
type selector struct {
	parents []string
	inner   string
}

func parseSelector(s string) []selector {
	var out []selector
	for _, alt := range strings.Split(s, ",") {
		segs := strings.Fields(alt)
		if len(segs) == 0 {
			continue
		}
		out = append(out, selector{
			parents: segs[:len(segs)-1],
			inner:   segs[len(segs)-1],
		})
	}
	return out
}
