// Package grammar implements the rule-based scope-stack interpreter for
// TextMate-style grammars: a repository of match/begin/end/while rules is
// walked line by line, producing scope-tagged spans and surfacing embedded
// ranges that belong to other grammars.
package grammar

// Rule is one immutable grammar rule. Exactly one of the following shapes
// is meaningful:
//
//   - Match: a single-line pattern emitting one scoped span.
//   - Begin/End: a region opened by Begin and closed by a later End,
//     possibly spanning lines.
//   - Begin/While: a region that stays open only while the While pattern
//     keeps matching at the start of each following line.
//   - Include: a reference into the repository ("#name"), the grammar root
//     ("$self"/"$base"), or another grammar by scope name.
//   - Patterns only: a plain container.
//
// A Begin/End rule with Embed set delegates the bytes between its
// delimiters to another grammar; the interpreter surfaces the range as an
// InjectionPoint instead of tokenizing it.
type Rule struct {
	Scope        string // "name": scope applied to the whole rule
	ContentScope string // "contentName": extra scope between delimiters

	Match *Pattern
	Begin *Pattern
	End   *Pattern
	While *Pattern

	Captures      map[int]string // for Match
	BeginCaptures map[int]string
	EndCaptures   map[int]string
	WhileCaptures map[int]string

	Patterns []*Rule
	Include  string

	Embed string // target grammar name for cross-grammar delegation
}

// InjectionRule injects a rule into every context whose scope stack matches
// Selector, in the same grammar. The rule's patterns compete with the host
// context's own patterns at every candidate position.
type InjectionRule struct {
	Selector string
	Rule     *Rule
}

// Grammar is a named repository of rules plus a root rule. Immutable once
// built; any number of parses may share one Grammar concurrently.
type Grammar struct {
	// Name is the grammar's base scope, e.g. "source.css".
	Name string

	// FileTypes lists file extensions (without dot) used for detection.
	FileTypes []string

	// FirstLine, when set, matches the first line of files in this language.
	FirstLine *Pattern

	Repository map[string]*Rule
	Root       *Rule
	Injections []InjectionRule

	// LineScope, when non-empty, names the synthetic whole-line wrapper
	// scope resolved per line for themes that target full-line contexts
	// (diff add/remove backgrounds and the like).
	LineScope string
}

// lookup resolves an include reference to a concrete rule, or nil.
// References into other grammars are not resolvable here; they degrade to
// nil and the single pattern simply never matches.
func (g *Grammar) lookup(include string) *Rule {
	switch include {
	case "$self", "$base":
		return g.Root
	}
	if len(include) > 0 && include[0] == '#' {
		return g.Repository[include[1:]]
	}
	return nil
}

// children flattens a rule's patterns, resolving includes through the
// repository. Include cycles are legal in grammars (recursive includes);
// the seen set stops the flattening, not the matching, so recursion still
// works because resolution happens again at every position.
func (g *Grammar) children(r *Rule) []*Rule {
	if r == nil {
		return nil
	}
	var out []*Rule
	seen := map[*Rule]bool{}
	var walk func(rules []*Rule)
	walk = func(rules []*Rule) {
		for _, c := range rules {
			if c == nil || seen[c] {
				continue
			}
			seen[c] = true
			if c.Include != "" {
				target := g.lookup(c.Include)
				if target == nil {
					// Unresolved reference: this one pattern is inert.
					continue
				}
				if target.isContainer() {
					walk(target.Patterns)
				} else {
					out = append(out, target)
				}
				continue
			}
			if c.isContainer() {
				walk(c.Patterns)
				continue
			}
			out = append(out, c)
		}
	}
	walk(r.Patterns)
	return out
}

// isContainer reports whether the rule only groups other patterns.
func (r *Rule) isContainer() bool {
	return r.Match == nil && r.Begin == nil
}
