// Command multilight highlights a source file with a grammar and theme of
// the caller's choosing and writes ANSI-colored text to stdout. Grammars
// and themes may be TextMate property lists, JSON, YAML or TOML; themes
// may also be chroma style names.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/multilight"
	"github.com/xonecas/multilight/grammar"
	"github.com/xonecas/multilight/internal/ansi"
	"github.com/xonecas/multilight/registry"
	"github.com/xonecas/multilight/theme"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "multilight: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		grammarPaths multiFlag
		themeArg     = flag.String("theme", "", "theme file or chroma style name")
		langName     = flag.String("lang", "", "grammar scope name to use (skips detection)")
		configPath   = flag.String("config", DefaultConfigPath(), "config file")
		numbered     = flag.Bool("n", false, "number output lines")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Var(&grammarPaths, "grammar", "grammar file (repeatable)")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: multilight [flags] <file | ->")
	}
	srcPath := flag.Arg(0)
	src, err := readSource(srcPath)
	if err != nil {
		return err
	}

	reg := registry.New()
	registerBuiltins(reg)
	if dir := cfg.GrammarDir; dir != "" {
		reg.SetReadFile(func(name string) ([]byte, error) {
			return readGrammarByName(dir, name)
		})
	}
	for _, path := range grammarPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := reg.AddGrammarData(path, data); err != nil {
			return err
		}
	}

	t, err := loadTheme(reg, firstNonEmpty(*themeArg, cfg.ThemeOrDefault()))
	if err != nil {
		return err
	}

	g, err := pickGrammar(reg, *langName, srcPath, src)
	if err != nil {
		return err
	}

	h, err := multilight.HighlightWith(g, t, src, reg)
	if err != nil {
		return err
	}
	render := ansi.Render
	if *numbered {
		render = ansi.RenderNumbered
	}
	_, err = io.WriteString(os.Stdout, render(h, src))
	return err
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// loadTheme treats the argument as a file when it exists, otherwise as a
// chroma style name.
func loadTheme(reg *registry.Registry, arg string) (*theme.Theme, error) {
	if _, err := os.Stat(arg); err == nil {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		return reg.AddThemeData(arg, data)
	}
	return theme.FromChroma(arg)
}

func pickGrammar(reg *registry.Registry, lang, srcPath, src string) (*grammar.Grammar, error) {
	if lang != "" {
		return reg.Grammar(lang)
	}
	firstLine, _, _ := strings.Cut(src, "\n")
	if g, ok := reg.Detect(srcPath, firstLine); ok {
		return g, nil
	}
	return nil, fmt.Errorf("no grammar for %s; pass -grammar or -lang", srcPath)
}

// readGrammarByName maps a referenced grammar name ("source.css") to a
// file in the grammar directory, trying the supported extensions.
func readGrammarByName(dir, name string) ([]byte, error) {
	for _, ext := range []string{".json", ".tmLanguage.json", ".tmLanguage", ".plist", ".yaml", ".yml", ".sublime-syntax", ".toml"} {
		data, err := os.ReadFile(filepath.Join(dir, name+ext))
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("no grammar file for %q in %s", name, dir)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// multiFlag collects repeated string flags.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
