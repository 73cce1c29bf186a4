package config

import (
	"testing"

	"github.com/xonecas/multilight/theme"
)

func buildThemeFrom(t *testing.T, fileName, data string) *theme.Theme {
	t.Helper()
	doc, err := Parse(fileName, []byte(data))
	if err != nil {
		t.Fatalf("parse %s: %v", fileName, err)
	}
	th, err := BuildTheme(doc)
	if err != nil {
		t.Fatalf("build %s: %v", fileName, err)
	}
	return th
}

func TestBuildThemeTmTheme(t *testing.T) {
	th := buildThemeFrom(t, "Test.tmTheme", `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>name</key><string>Test</string>
	<key>settings</key>
	<array>
		<dict>
			<key>settings</key>
			<dict>
				<key>foreground</key><string>#cccccc</string>
				<key>background</key><string>#111111</string>
			</dict>
		</dict>
		<dict>
			<key>scope</key><string>comment</string>
			<key>settings</key>
			<dict>
				<key>foreground</key><string>#888888</string>
				<key>fontStyle</key><string>italic</string>
			</dict>
		</dict>
		<dict>
			<key>scope</key><string>markup.bold</string>
			<key>settings</key>
			<dict>
				<key>fontStyle</key><string></string>
			</dict>
		</dict>
	</array>
</dict>
</plist>`)
	if th.Name != "Test" {
		t.Errorf("name = %q", th.Name)
	}
	if th.Default.Foreground.Hex() != "#cccccc" || th.Default.Background.Hex() != "#111111" {
		t.Errorf("default = %+v", th.Default)
	}
	comment := th.Resolve([]string{"source.go", "comment.line"})
	if comment.Foreground.Hex() != "#888888" || comment.Italic != theme.TriOn {
		t.Errorf("comment style = %+v", comment)
	}
	// An empty fontStyle explicitly clears decorations.
	bold := th.Resolve([]string{"text", "markup.bold"})
	if bold.Bold != theme.TriOff || bold.Italic != theme.TriOff {
		t.Errorf("empty fontStyle should clear decorations: %+v", bold)
	}
}

func TestBuildThemeTokenColors(t *testing.T) {
	th := buildThemeFrom(t, "editor.json", `{
		"name": "ed",
		"colors": {
			"editor.foreground": "#cccccc",
			"editor.background": "#101010",
			"editor.lineHighlightBackground": "#202020"
		},
		"tokenColors": [
			{"scope": ["string", "constant.numeric"], "settings": {"foreground": "#00ff00"}},
			{"scope": "keyword", "settings": {"fontStyle": "bold underline"}}
		]
	}`)
	if th.Default.Foreground.Hex() != "#cccccc" || th.Default.Background.Hex() != "#101010" {
		t.Errorf("default = %+v", th.Default)
	}
	if th.Default.Extra["editor.lineHighlightBackground"] != "#202020" {
		t.Errorf("extra = %v", th.Default.Extra)
	}
	for _, inner := range []string{"string.quoted", "constant.numeric.float"} {
		if got := th.Resolve([]string{"source", inner}); got.Foreground.Hex() != "#00ff00" {
			t.Errorf("%s foreground = %s", inner, got.Foreground.Hex())
		}
	}
	kw := th.Resolve([]string{"source", "keyword.control"})
	if kw.Bold != theme.TriOn || kw.Underline != theme.TriOn || kw.Italic != theme.TriOff {
		t.Errorf("keyword style = %+v", kw)
	}
}

func TestBuildThemeFlatTOML(t *testing.T) {
	th := buildThemeFrom(t, "flat.toml", `
name = "flat"

[default]
foreground = "#cccccc"
background = "#000000"

[[rules]]
selector = "keyword"
[rules.style]
foreground = "#ff0000"
bold = true

[[rules]]
selector = "comment"
[rules.style]
italic = true
`)
	if th.Name != "flat" {
		t.Errorf("name = %q", th.Name)
	}
	kw := th.Resolve([]string{"source", "keyword.control"})
	if kw.Foreground.Hex() != "#ff0000" || kw.Bold != theme.TriOn {
		t.Errorf("keyword = %+v", kw)
	}
	if c := th.Resolve([]string{"source", "comment"}); c.Italic != theme.TriOn {
		t.Errorf("comment = %+v", c)
	}
}

func TestBuildThemeLinearColorSpace(t *testing.T) {
	th := buildThemeFrom(t, "linear.json", `{
		"name": "lin",
		"colorSpace": "linear",
		"default": {"foreground": "#808080"},
		"rules": []
	}`)
	// Linear mid-gray converts to a much brighter sRGB value at load time.
	if got := th.Default.Foreground.Hex(); got != "#bcbcbc" {
		t.Errorf("converted foreground = %s, want #bcbcbc", got)
	}
}

func TestBuildThemeBadColorDegrades(t *testing.T) {
	th := buildThemeFrom(t, "bad.json", `{
		"name": "b",
		"default": {"foreground": "#cccccc"},
		"rules": [{"selector": "keyword", "style": {"foreground": "not-a-color", "bold": true}}]
	}`)
	kw := th.Resolve([]string{"source", "keyword"})
	if kw.Bold != theme.TriOn {
		t.Error("rule with a bad color should still apply its other fields")
	}
	if kw.Foreground.Hex() != "#cccccc" {
		t.Errorf("foreground = %s, want the default", kw.Foreground.Hex())
	}
}

func TestBuildThemeUnrecognizedShape(t *testing.T) {
	doc, err := ParseJSON("x.json", []byte(`{"name": "x"}`), false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := BuildTheme(doc); err == nil {
		t.Error("expected an error for a shapeless theme document")
	}
}
