package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/multilight/theme"
)

// BuildTheme turns a normalized theme document into a Theme. Three shapes
// are recognized:
//
//   - classic tmTheme: {"name", "settings": [{...default...}, {scope,
//     settings}, ...]}
//   - editor JSON: {"name", "colors": {...}, "tokenColors": [...]}
//   - flat: {"name", "default": {...}, "rules": [{selector, style}, ...]}
//
// A document-level "colorSpace": "linear" declares that hex colors are
// linear RGB; they are gamma-converted to sRGB here, once, and nothing
// downstream sees any color space but sRGB.
func BuildTheme(doc *Document) (*theme.Theme, error) {
	root := doc.Root
	if root == nil || root.Kind != KindObject {
		return nil, fmt.Errorf("theme %s: root is not an object", doc.FileName)
	}
	b := themeBuilder{
		doc:    doc,
		linear: root.Field("colorSpace").StringOr("") == "linear",
	}
	name := root.Field("name").StringOr(doc.FileName)

	switch {
	case root.Field("settings") != nil:
		return b.fromSettings(name, root.Field("settings"))
	case root.Field("tokenColors") != nil:
		return b.fromTokenColors(name, root)
	case root.Field("rules") != nil:
		return b.fromFlat(name, root)
	}
	return nil, fmt.Errorf("theme %s: no settings, tokenColors or rules", doc.FileName)
}

type themeBuilder struct {
	doc    *Document
	linear bool
}

// fromSettings handles the tmTheme shape: the first entry without a scope
// supplies the defaults.
func (b themeBuilder) fromSettings(name string, settings *Node) (*theme.Theme, error) {
	if settings.Kind != KindArray {
		return nil, fmt.Errorf("theme %s: settings is not an array", b.doc.FileName)
	}
	var def theme.Style
	var rules []theme.Rule
	for _, entry := range settings.Arr {
		scope := entry.Field("scope").StringOr("")
		style := b.style(entry.Field("settings"))
		if scope == "" {
			def = def.Merge(style)
			continue
		}
		rules = append(rules, theme.Rule{Selector: scope, Style: style})
	}
	return theme.New(name, def, rules), nil
}

// fromTokenColors handles the editor JSON shape; the top-level colors map
// feeds defaults and rides along as passthrough data.
func (b themeBuilder) fromTokenColors(name string, root *Node) (*theme.Theme, error) {
	var def theme.Style
	if colors := root.Field("colors"); colors != nil && colors.Kind == KindObject {
		def.Extra = map[string]string{}
		for key, v := range colors.Obj {
			val := v.StringOr("")
			switch key {
			case "editor.foreground":
				def.Foreground = b.color(val)
			case "editor.background":
				def.Background = b.color(val)
			default:
				def.Extra[key] = val
			}
		}
	}
	tokenColors := root.Field("tokenColors")
	if tokenColors.Kind != KindArray {
		return nil, fmt.Errorf("theme %s: tokenColors is not an array", b.doc.FileName)
	}
	var rules []theme.Rule
	for _, entry := range tokenColors.Arr {
		style := b.style(entry.Field("settings"))
		scopes := entry.Field("scope").Strings()
		if len(scopes) == 0 {
			def = def.Merge(style)
			continue
		}
		rules = append(rules, theme.Rule{Selector: strings.Join(scopes, ", "), Style: style})
	}
	return theme.New(name, def, rules), nil
}

// fromFlat handles the native flat shape used by hand-written themes.
func (b themeBuilder) fromFlat(name string, root *Node) (*theme.Theme, error) {
	def := b.style(root.Field("default"))
	rulesNode := root.Field("rules")
	if rulesNode.Kind != KindArray {
		return nil, fmt.Errorf("theme %s: rules is not an array", b.doc.FileName)
	}
	var rules []theme.Rule
	for _, entry := range rulesNode.Arr {
		sel := entry.Field("selector").StringOr("")
		if sel == "" {
			continue
		}
		styleNode := entry.Field("style")
		if styleNode == nil {
			styleNode = entry.Field("settings")
		}
		rules = append(rules, theme.Rule{Selector: sel, Style: b.style(styleNode)})
	}
	return theme.New(name, def, rules), nil
}

// style reads one settings object. Unknown keys are retained as
// passthrough Extra data rather than dropped; the resolver never
// interprets them.
func (b themeBuilder) style(n *Node) theme.Style {
	var s theme.Style
	if n == nil || n.Kind != KindObject {
		return s
	}
	for key, v := range n.Obj {
		val := v.StringOr("")
		switch key {
		case "foreground":
			s.Foreground = b.color(val)
		case "background":
			s.Background = b.color(val)
		case "fontStyle":
			applyFontStyle(&s, val)
		case "bold":
			s.Bold = triOf(v)
		case "italic":
			s.Italic = triOf(v)
		case "underline":
			s.Underline = triOf(v)
		case "strikethrough":
			s.Strikethrough = triOf(v)
		default:
			if s.Extra == nil {
				s.Extra = map[string]string{}
			}
			s.Extra[key] = nodeText(v)
		}
	}
	return s
}

// color parses a hex color, converting from linear RGB when the theme
// declared it. A malformed color degrades to unset with a warning.
func (b themeBuilder) color(val string) *theme.Color {
	if val == "" {
		return nil
	}
	c, err := theme.ParseColor(val)
	if err != nil {
		log.Warn().Str("file", b.doc.FileName).Str("color", val).Msg("unparseable color, ignoring")
		return nil
	}
	if b.linear {
		c = theme.FromLinear(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
	}
	return &c
}

// applyFontStyle interprets the tmTheme fontStyle string. A present but
// empty value explicitly clears every decoration, which is how themes
// turn off an inherited italic.
func applyFontStyle(s *theme.Style, val string) {
	s.Bold, s.Italic, s.Underline, s.Strikethrough = theme.TriOff, theme.TriOff, theme.TriOff, theme.TriOff
	for _, part := range strings.Fields(val) {
		switch part {
		case "bold":
			s.Bold = theme.TriOn
		case "italic":
			s.Italic = theme.TriOn
		case "underline":
			s.Underline = theme.TriOn
		case "strikethrough":
			s.Strikethrough = theme.TriOn
		}
	}
}

func triOf(n *Node) theme.Tri {
	switch {
	case n.Kind == KindBool && n.Bool:
		return theme.TriOn
	case n.Kind == KindBool:
		return theme.TriOff
	case n.Kind == KindString && n.Str == "true":
		return theme.TriOn
	case n.Kind == KindString && n.Str == "false":
		return theme.TriOff
	}
	return theme.TriUnset
}

// nodeText flattens small values for Extra passthrough.
func nodeText(n *Node) string {
	switch n.Kind {
	case KindString:
		return n.Str
	case KindBool:
		return strconv.FormatBool(n.Bool)
	case KindArray:
		parts := make([]string, 0, len(n.Arr))
		for _, item := range n.Arr {
			parts = append(parts, nodeText(item))
		}
		return strings.Join(parts, " ")
	}
	return ""
}
