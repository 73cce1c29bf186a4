package grammar

import "strings"

// ScopeStack is the ordered list of scope names active at a text position,
// outermost first. Pushes copy, so a snapshot stored on a token stays valid
// after the interpreter pops back past it.
type ScopeStack []string

// Push returns a new stack with name appended. Empty names are dropped so
// rules without a scope don't leave holes in the stack.
func (s ScopeStack) Push(name string) ScopeStack {
	if name == "" {
		return s
	}
	out := make(ScopeStack, len(s), len(s)+1)
	copy(out, s)
	return append(out, name)
}

// PushAll appends every name in order, skipping empties.
func (s ScopeStack) PushAll(names []string) ScopeStack {
	out := make(ScopeStack, len(s), len(s)+len(names))
	copy(out, s)
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Top returns the innermost scope name, or "" for an empty stack.
func (s ScopeStack) Top() string {
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}

// Equal reports whether two stacks hold the same names in the same order.
func (s ScopeStack) Equal(other ScopeStack) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the stack space-separated, outermost first.
func (s ScopeStack) String() string {
	return strings.Join(s, " ")
}

// scopePrefixMatch reports whether selector matches scope at dot boundaries:
// "string.quoted" matches "string.quoted.double" but not "string.quotedx".
func scopePrefixMatch(selector, scope string) bool {
	if !strings.HasPrefix(scope, selector) {
		return false
	}
	return len(scope) == len(selector) || scope[len(selector)] == '.'
}

// MatchSelector reports whether a space-separated descendant selector
// matches the stack: each segment must prefix-match a scope, in stack order.
// Used for same-grammar injection selectors; theme matching adds
// specificity on top of the same primitive.
func MatchSelector(selector string, stack ScopeStack) bool {
	segs := strings.Fields(selector)
	if len(segs) == 0 {
		return false
	}
	i := 0
	for _, scope := range stack {
		if scopePrefixMatch(segs[i], scope) {
			i++
			if i == len(segs) {
				return true
			}
		}
	}
	return false
}
