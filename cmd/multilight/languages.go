package main

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/multilight/registry"
	"github.com/xonecas/multilight/treesitter"
)

// Built-in tree-sitter languages with minimal highlight queries. Capture
// names are scope names; @embed.<name> delegates a range back through the
// registry, which is how the HTML source below hands <style> content to
// whatever is registered under "css".
var builtinLanguages = []struct {
	name  string
	lang  *sitter.Language
	query string
}{
	{
		name: "ts.go",
		lang: golang.GetLanguage(),
		query: `
(comment) @comment
(interpreted_string_literal) @string.quoted.double
(raw_string_literal) @string.quoted.raw
(rune_literal) @string.quoted.single
(int_literal) @constant.numeric
(float_literal) @constant.numeric
(function_declaration name: (identifier) @entity.name.function)
(type_identifier) @entity.name.type
[
  "func" "return" "if" "else" "for" "range" "package" "import"
  "type" "struct" "interface" "map" "chan" "go" "defer" "const"
  "var" "switch" "case" "break" "continue"
] @keyword
`,
	},
	{
		name: "css",
		lang: css.GetLanguage(),
		query: `
(comment) @comment
(string_value) @string.quoted
(integer_value) @constant.numeric
(float_value) @constant.numeric
(property_name) @support.type.property-name
(tag_name) @entity.name.tag
(class_name) @entity.other.attribute-name.class
(id_name) @entity.other.attribute-name.id
`,
	},
	{
		name: "ts.html",
		lang: html.GetLanguage(),
		query: `
(comment) @comment
(tag_name) @entity.name.tag
(attribute_name) @entity.other.attribute-name
(quoted_attribute_value) @string.quoted
(style_element (raw_text) @embed.css)
`,
	},
}

// registerBuiltins adds the built-in tree-sitter adapters as capture
// sources. A query that fails to compile loses that one language, not the
// run.
func registerBuiltins(reg *registry.Registry) {
	for _, b := range builtinLanguages {
		a, err := treesitter.New(b.lang, []byte(b.query))
		if err != nil {
			log.Warn().Err(err).Str("language", b.name).Msg("skipping built-in language")
			continue
		}
		reg.AddSource(b.name, a)
	}
}
