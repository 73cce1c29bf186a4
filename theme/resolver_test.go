package theme

import "testing"

func testTheme() *Theme {
	return New("test", Style{Foreground: color("#cccccc"), Background: color("#111111")}, []Rule{
		{Selector: "string", Style: Style{Foreground: color("#00ff00"), Background: color("#002200")}},
		{Selector: "string.quoted.double", Style: Style{Foreground: color("#00aa00")}},
		{Selector: "comment", Style: Style{Foreground: color("#888888"), Italic: TriOn}},
		{Selector: "meta.tag string", Style: Style{Underline: TriOn}},
		{Selector: "bold", Style: Style{Bold: TriOn}},
	})
}

func TestResolveFallback(t *testing.T) {
	th := testTheme()
	got := th.Resolve([]string{"source.test", "keyword.control"})
	if got.Foreground.Hex() != "#cccccc" {
		t.Errorf("unmatched stack should fall back to default, got %s", got.Foreground.Hex())
	}
}

func TestResolveEmptyStack(t *testing.T) {
	th := testTheme()
	got := th.Resolve(nil)
	if got.Foreground.Hex() != "#cccccc" {
		t.Error("empty stack should resolve to default")
	}
}

// Specificity law: with R1 "string" and R2 "string.quoted.double", a stack
// ending in string.quoted.double takes R2's foreground but keeps R1's
// background, since R2 does not set one.
func TestSpecificityLaw(t *testing.T) {
	th := testTheme()
	got := th.Resolve([]string{"source.test", "string.quoted.double"})
	if got.Foreground.Hex() != "#00aa00" {
		t.Errorf("foreground = %s, want the more specific rule's", got.Foreground.Hex())
	}
	if got.Background.Hex() != "#002200" {
		t.Errorf("background = %s, want the general rule's", got.Background.Hex())
	}
}

func TestInnermostOnly(t *testing.T) {
	th := testTheme()
	// "string" appears in the stack but not innermost: no match.
	got := th.Resolve([]string{"source.test", "string.quoted", "constant.character.escape"})
	if got.Foreground.Hex() != "#cccccc" {
		t.Errorf("non-innermost scope matched: %s", got.Foreground.Hex())
	}
}

func TestParentQualifier(t *testing.T) {
	th := testTheme()
	with := th.Resolve([]string{"text.html", "meta.tag", "string.quoted"})
	if with.Underline != TriOn {
		t.Error("parent-qualified rule should match inside meta.tag")
	}
	without := th.Resolve([]string{"text.html", "string.quoted"})
	if without.Underline == TriOn {
		t.Error("parent-qualified rule must not match without the parent")
	}
}

func TestLaterRuleWinsAtEqualSpecificity(t *testing.T) {
	th := New("test", Style{}, []Rule{
		{Selector: "keyword", Style: Style{Foreground: color("#111111")}},
		{Selector: "keyword", Style: Style{Foreground: color("#222222")}},
	})
	got := th.Resolve([]string{"source", "keyword"})
	if got.Foreground.Hex() != "#222222" {
		t.Errorf("foreground = %s, want the later declaration", got.Foreground.Hex())
	}
}

func TestCommaAlternatives(t *testing.T) {
	th := New("test", Style{}, []Rule{
		{Selector: "constant.numeric, constant.language", Style: Style{Bold: TriOn}},
	})
	for _, inner := range []string{"constant.numeric", "constant.language.null"} {
		if got := th.Resolve([]string{"source", inner}); got.Bold != TriOn {
			t.Errorf("%s did not match comma alternative", inner)
		}
	}
}

func TestResolveIsPure(t *testing.T) {
	th := testTheme()
	stack := []string{"source.test", "meta.tag", "string.quoted.double"}
	first := th.Resolve(stack)
	th.Resolve([]string{"source.test", "comment.line"})
	th.Resolve(nil)
	again := th.Resolve(stack)
	if first.Foreground.Hex() != again.Foreground.Hex() ||
		first.Background.Hex() != again.Background.Hex() ||
		first.Bold != again.Bold || first.Italic != again.Italic ||
		first.Underline != again.Underline {
		t.Error("Resolve is not a pure function of (theme, stack)")
	}
}

func TestHasMatch(t *testing.T) {
	th := testTheme()
	if !th.HasMatch([]string{"source", "bold"}) {
		t.Error("expected match for bold")
	}
	if th.HasMatch([]string{"source", "keyword"}) {
		t.Error("unexpected match for keyword")
	}
}
