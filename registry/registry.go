// Package registry stores named grammars, themes and capture sources, and
// resolves cross-file references by name. A fully populated registry is
// read-only during a parse; the read-file callback is the mutable variant
// that fetches missing entries on demand.
package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/multilight/config"
	"github.com/xonecas/multilight/grammar"
	"github.com/xonecas/multilight/injection"
	"github.com/xonecas/multilight/theme"
)

// ErrNotFound reports a name with no registered entry and no way to load
// one.
var ErrNotFound = errors.New("not found in registry")

// ReadFile fetches the raw bytes of a grammar or theme referenced by name
// but not yet registered. The name is whatever the referencing file used
// ("source.css", "Monokai"); mapping it to storage is the caller's
// business.
type ReadFile func(name string) ([]byte, error)

// Registry maps names to grammars, themes and capture sources. Safe for
// concurrent use: lookups take a read lock, and the loaded values are
// immutable, so any number of parses can share one Registry.
type Registry struct {
	mu       sync.RWMutex
	grammars map[string]*grammar.Grammar
	order    []string // grammar registration order, keeps Detect deterministic
	themes   map[string]*theme.Theme
	sources  map[string]injection.CaptureSource
	readFile ReadFile
}

// New creates an empty registry with no read-file callback.
func New() *Registry {
	return &Registry{
		grammars: map[string]*grammar.Grammar{},
		themes:   map[string]*theme.Theme{},
		sources:  map[string]injection.CaptureSource{},
	}
}

// SetReadFile installs the on-demand loader used when a referenced
// grammar is missing.
func (r *Registry) SetReadFile(fn ReadFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readFile = fn
}

// AddGrammar registers a built grammar under its scope name.
func (r *Registry) AddGrammar(g *grammar.Grammar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.grammars[g.Name]; !ok {
		r.order = append(r.order, g.Name)
	}
	r.grammars[g.Name] = g
}

// AddTheme registers a built theme under its name.
func (r *Registry) AddTheme(t *theme.Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes[t.Name] = t
}

// AddSource registers an external capture source (a tree-sitter adapter)
// as an injection target.
func (r *Registry) AddSource(name string, src injection.CaptureSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = src
}

// AddGrammarData parses raw grammar bytes of any supported format, builds
// the grammar, and registers it.
func (r *Registry) AddGrammarData(fileName string, data []byte) (*grammar.Grammar, error) {
	doc, err := config.Parse(fileName, data)
	if err != nil {
		return nil, err
	}
	g, err := config.BuildGrammar(doc)
	if err != nil {
		return nil, err
	}
	r.AddGrammar(g)
	return g, nil
}

// AddThemeData parses raw theme bytes of any supported format, builds the
// theme, and registers it.
func (r *Registry) AddThemeData(fileName string, data []byte) (*theme.Theme, error) {
	doc, err := config.Parse(fileName, data)
	if err != nil {
		return nil, err
	}
	t, err := config.BuildTheme(doc)
	if err != nil {
		return nil, err
	}
	r.AddTheme(t)
	return t, nil
}

// Grammar resolves a grammar by name, consulting the read-file callback on
// a miss.
func (r *Registry) Grammar(name string) (*grammar.Grammar, error) {
	r.mu.RLock()
	g, ok := r.grammars[name]
	fn := r.readFile
	r.mu.RUnlock()
	if ok {
		return g, nil
	}
	if fn == nil {
		return nil, fmt.Errorf("grammar %q: %w", name, ErrNotFound)
	}
	data, err := fn(name)
	if err != nil {
		return nil, fmt.Errorf("grammar %q: %w", name, err)
	}
	g, err = r.AddGrammarData(name, data)
	if err != nil {
		return nil, err
	}
	if g.Name != name {
		// Register the reference name too, so the next lookup hits.
		r.mu.Lock()
		r.grammars[name] = g
		r.mu.Unlock()
	}
	return g, nil
}

// Theme resolves a theme by name, consulting the read-file callback on a
// miss.
func (r *Registry) Theme(name string) (*theme.Theme, error) {
	r.mu.RLock()
	t, ok := r.themes[name]
	fn := r.readFile
	r.mu.RUnlock()
	if ok {
		return t, nil
	}
	if fn == nil {
		return nil, fmt.Errorf("theme %q: %w", name, ErrNotFound)
	}
	data, err := fn(name)
	if err != nil {
		return nil, fmt.Errorf("theme %q: %w", name, err)
	}
	t, err = r.AddThemeData(name, data)
	if err != nil {
		return nil, err
	}
	if t.Name != name {
		r.mu.Lock()
		r.themes[name] = t
		r.mu.Unlock()
	}
	return t, nil
}

// Lookup implements injection.Table: capture sources take precedence over
// grammars of the same name, and misses trigger the read-file callback
// through Grammar.
func (r *Registry) Lookup(name string) (injection.Target, bool) {
	r.mu.RLock()
	src, ok := r.sources[name]
	r.mu.RUnlock()
	if ok {
		return injection.Target{Source: src}, true
	}
	g, err := r.Grammar(name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("name", name).Msg("injection target failed to load")
		}
		return injection.Target{}, false
	}
	return injection.Target{Grammar: g}, true
}

// Detect picks a grammar for a file by extension first, then by matching
// each grammar's firstLineMatch against the file's first line. Candidates
// are tried in registration order, so two grammars claiming the same
// extension resolve the same way on every run.
func (r *Registry) Detect(path, firstLine string) (*grammar.Grammar, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	r.mu.RLock()
	defer r.mu.RUnlock()
	if ext != "" {
		for _, name := range r.order {
			g := r.grammars[name]
			for _, ft := range g.FileTypes {
				if strings.ToLower(ft) == ext {
					return g, true
				}
			}
		}
	}
	if firstLine != "" {
		for _, name := range r.order {
			g := r.grammars[name]
			if g.FirstLine != nil && g.FirstLine.Find(firstLine, 0) != nil {
				return g, true
			}
		}
	}
	return nil, false
}
