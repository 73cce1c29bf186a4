package grammar

import "testing"

func TestScopeStackPush(t *testing.T) {
	base := ScopeStack{}.Push("source.test")
	child := base.Push("string.quoted")

	if got := child.String(); got != "source.test string.quoted" {
		t.Errorf("child = %q", got)
	}
	// Pushing must not alias: the snapshot on a token outlives pops.
	other := base.Push("comment.line")
	if got := child.Top(); got != "string.quoted" {
		t.Errorf("child mutated by sibling push: top = %q", got)
	}
	if got := other.String(); got != "source.test comment.line" {
		t.Errorf("other = %q", got)
	}
	if base.Push("").String() != base.String() {
		t.Error("empty scope name should be a no-op")
	}
}

func TestScopeStackEqual(t *testing.T) {
	a := ScopeStack{"source.test", "string"}
	b := ScopeStack{"source.test", "string"}
	c := ScopeStack{"source.test"}
	if !a.Equal(b) {
		t.Error("a should equal b")
	}
	if a.Equal(c) {
		t.Error("a should not equal c")
	}
}

func TestMatchSelector(t *testing.T) {
	stack := ScopeStack{"text.html", "meta.tag", "string.quoted.double"}
	tests := []struct {
		selector string
		want     bool
	}{
		{"string", true},
		{"string.quoted", true},
		{"string.quotedx", false},
		{"meta.tag string", true},
		{"text.html meta.tag string.quoted", true},
		{"string meta.tag", false}, // wrong order
		{"comment", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			if got := MatchSelector(tt.selector, stack); got != tt.want {
				t.Errorf("MatchSelector(%q) = %v, want %v", tt.selector, got, tt.want)
			}
		})
	}
}
