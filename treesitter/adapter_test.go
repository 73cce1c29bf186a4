package treesitter

import (
	"testing"

	"github.com/smacker/go-tree-sitter/golang"

	"github.com/xonecas/multilight/injection"
)

func TestScopeForCapture(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"comment", "comment"},
		{"string.quoted", "string.quoted"},
		{"embed.source.css", "embed:source.css"},
		{"embed.", "embed."},
		{"_helper", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := scopeForCapture(tt.in); got != tt.want {
			t.Errorf("scopeForCapture(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompress(t *testing.T) {
	names := []string{"a", "b"}
	claims := []int32{1, 1, 0, 2, 2, 2, 0, 0, 1}
	got := compress(claims, names)
	want := []injection.Capture{
		{Start: 0, Length: 2, Scopes: []string{"a"}},
		{Start: 3, Length: 3, Scopes: []string{"b"}},
		{Start: 8, Length: 1, Scopes: []string{"a"}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d captures, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Start != want[i].Start || got[i].Length != want[i].Length ||
			got[i].Scopes[0] != want[i].Scopes[0] {
			t.Errorf("capture %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if out := compress([]int32{0, 0, 0}, nil); len(out) != 0 {
		t.Errorf("all-gap claims produced %+v", out)
	}
}

func TestNewRejectsBadQuery(t *testing.T) {
	if _, err := New(golang.GetLanguage(), []byte(`(nonsense_node) @x`)); err == nil {
		t.Fatal("expected a query compile error")
	}
}

func TestCapturesGo(t *testing.T) {
	a, err := New(golang.GetLanguage(), []byte(`["package"] @keyword`))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	caps, err := a.Captures([]byte("package main\n"))
	if err != nil {
		t.Fatalf("Captures: %v", err)
	}
	if len(caps) != 1 {
		t.Fatalf("got %d captures, want 1: %+v", len(caps), caps)
	}
	c := caps[0]
	if c.Start != 0 || c.Length != 7 || c.Scopes[0] != "keyword" {
		t.Errorf("capture = %+v, want keyword over [0,7)", c)
	}
}

func TestCapturesFirstWins(t *testing.T) {
	// Both patterns claim the "package" keyword; the earlier one keeps it.
	a, err := New(golang.GetLanguage(), []byte(`
["package"] @keyword.package
["package"] @keyword
`))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	caps, err := a.Captures([]byte("package main\n"))
	if err != nil {
		t.Fatalf("Captures: %v", err)
	}
	if len(caps) != 1 || caps[0].Scopes[0] != "keyword.package" {
		t.Errorf("captures = %+v, want the first pattern's scope", caps)
	}
}
