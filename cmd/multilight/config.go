package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the CLI configuration, read from TOML.
type Config struct {
	// Theme is the default theme: a file path or a chroma style name.
	Theme string `toml:"theme"`

	// GrammarDir is searched by the registry's read-file callback when a
	// grammar references another grammar by name.
	GrammarDir string `toml:"grammar_dir"`
}

// ThemeOrDefault returns the configured theme or "monokai" if unset.
func (c Config) ThemeOrDefault() string {
	if c.Theme == "" {
		return "monokai"
	}
	return c.Theme
}

// DefaultConfigPath returns ~/.config/multilight/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "multilight", "config.toml")
}

// LoadConfig reads configuration from a TOML file. A missing file is not
// an error; the zero config works.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
