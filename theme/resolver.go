package theme

import "strings"

// specificity ranks a selector match. Compared lexicographically: deeper
// innermost selectors beat shallower ones, then more parent qualifiers,
// then later declaration order.
type specificity struct {
	depth   int // dot segments of the matched innermost selector
	parents int // parent qualifiers that matched
	index   int // declaration order
}

func (a specificity) less(b specificity) bool {
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	if a.parents != b.parents {
		return a.parents < b.parents
	}
	return a.index < b.index
}

// Resolve computes the effective style for a scope stack (outermost
// first). Pure: same stack and theme always produce the same style; an
// unmatched stack yields the theme default. Never fails.
func (t *Theme) Resolve(scopes []string) Style {
	type match struct {
		spec  specificity
		style Style
	}
	var matches []match
	for i := range t.rules {
		r := &t.rules[i]
		spec, ok := r.match(scopes)
		if !ok {
			continue
		}
		spec.index = i
		matches = append(matches, match{spec: spec, style: r.Style})
	}

	// Ascending specificity so every later application overrides only the
	// fields it sets.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].spec.less(matches[j-1].spec); j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	out := t.Default
	for _, m := range matches {
		out = out.Merge(m.style)
	}
	return out
}

// HasMatch reports whether any rule matches the stack at all, without
// computing the composed style. The pipeline uses it to decide whether a
// synthetic whole-line stack earns a line override.
func (t *Theme) HasMatch(scopes []string) bool {
	for i := range t.rules {
		if _, ok := t.rules[i].match(scopes); ok {
			return true
		}
	}
	return false
}

// match tests every alternative of the rule and returns the strongest.
func (r *Rule) match(scopes []string) (specificity, bool) {
	var best specificity
	found := false
	for _, alt := range r.alternatives {
		spec, ok := alt.match(scopes)
		if ok && (!found || best.less(spec)) {
			best = spec
			found = true
		}
	}
	return best, found
}

// match requires the innermost segment to prefix-match the innermost scope
// and every parent qualifier to match earlier stack entries in order.
func (s selector) match(scopes []string) (specificity, bool) {
	if len(scopes) == 0 {
		return specificity{}, false
	}
	inner := scopes[len(scopes)-1]
	if !prefixMatch(s.inner, inner) {
		return specificity{}, false
	}
	i := 0
	for _, scope := range scopes[:len(scopes)-1] {
		if i < len(s.parents) && prefixMatch(s.parents[i], scope) {
			i++
		}
	}
	if i < len(s.parents) {
		return specificity{}, false
	}
	return specificity{
		depth:   strings.Count(s.inner, ".") + 1,
		parents: len(s.parents),
	}, true
}

// prefixMatch matches selectors against scopes at dot boundaries, so
// "string.quoted" matches "string.quoted.double" but not "string.quotedx".
func prefixMatch(selector, scope string) bool {
	if !strings.HasPrefix(scope, selector) {
		return false
	}
	return len(scope) == len(selector) || scope[len(selector)] == '.'
}
