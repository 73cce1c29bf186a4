package theme

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// chromaScopes maps chroma token categories onto TextMate-style scope
// selectors. Coarse on purpose: a chroma style has no notion of scope
// stacks, so each category becomes one flat selector.
var chromaScopes = []struct {
	token chroma.TokenType
	scope string
}{
	{chroma.Comment, "comment"},
	{chroma.Keyword, "keyword"},
	{chroma.KeywordConstant, "constant.language"},
	{chroma.KeywordType, "storage.type"},
	{chroma.Operator, "keyword.operator"},
	{chroma.Punctuation, "punctuation"},
	{chroma.Name, "variable"},
	{chroma.NameFunction, "entity.name.function"},
	{chroma.NameClass, "entity.name.class"},
	{chroma.NameTag, "entity.name.tag"},
	{chroma.NameAttribute, "entity.other.attribute-name"},
	{chroma.NameBuiltin, "support.function"},
	{chroma.NameConstant, "constant.other"},
	{chroma.LiteralString, "string"},
	{chroma.LiteralStringEscape, "constant.character.escape"},
	{chroma.LiteralNumber, "constant.numeric"},
	{chroma.GenericDeleted, "markup.deleted"},
	{chroma.GenericInserted, "markup.inserted"},
	{chroma.GenericHeading, "markup.heading"},
	{chroma.GenericEmph, "markup.italic"},
	{chroma.GenericStrong, "markup.bold"},
	{chroma.Error, "invalid"},
}

// FromChromaStyle converts a chroma style into a Theme, giving callers
// access to chroma's built-in style catalog without shipping any theme
// files of our own.
func FromChromaStyle(style *chroma.Style) *Theme {
	bg := style.Get(chroma.Background)
	def := Style{
		Foreground: chromaColor(bg.Colour),
		Background: chromaColor(bg.Background),
	}

	var rules []Rule
	for _, m := range chromaScopes {
		entry := style.Get(m.token)
		s := Style{
			Foreground: chromaColor(entry.Colour),
			Background: chromaColor(entry.Background),
			Bold:       chromaTri(entry.Bold),
			Italic:     chromaTri(entry.Italic),
			Underline:  chromaTri(entry.Underline),
		}
		// Entries that just inherit the background add nothing.
		if s.IsZero() || sameColor(s.Foreground, def.Foreground) && s.Background == nil &&
			s.Bold == TriUnset && s.Italic == TriUnset && s.Underline == TriUnset {
			continue
		}
		rules = append(rules, Rule{Selector: m.scope, Style: s})
	}
	return New(style.Name, def, rules)
}

// FromChroma looks a chroma style up by name ("monokai", "dracula", ...).
func FromChroma(name string) (*Theme, error) {
	style := styles.Get(name)
	if style == nil || style.Name == "swapoff" && name != "swapoff" {
		// styles.Get falls back to "swapoff" for unknown names.
		return nil, fmt.Errorf("unknown chroma style %q", name)
	}
	return FromChromaStyle(style), nil
}

func chromaColor(c chroma.Colour) *Color {
	if !c.IsSet() {
		return nil
	}
	return &Color{R: c.Red(), G: c.Green(), B: c.Blue(), A: 0xff}
}

func chromaTri(t chroma.Trilean) Tri {
	switch t {
	case chroma.Yes:
		return TriOn
	case chroma.No:
		return TriOff
	}
	return TriUnset
}

func sameColor(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
