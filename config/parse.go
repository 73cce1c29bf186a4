package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an on-disk grammar/theme container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
	FormatPlist
)

// DetectFormat guesses the container format from the file name, falling
// back to content sniffing for extensionless input.
func DetectFormat(fileName string, data []byte) Format {
	// filepath.Ext sees only the last extension, so compound names like
	// .tmLanguage.json land in the .json case.
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml", ".sublime-syntax":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".plist", ".tmlanguage", ".tmtheme", ".xml":
		return FormatPlist
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	switch {
	case len(trimmed) == 0:
		return FormatUnknown
	case trimmed[0] == '{' || trimmed[0] == '[':
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("<plist")) || bytes.HasPrefix(trimmed, []byte("bplist")):
		return FormatPlist
	}
	return FormatYAML
}

// Parse normalizes a grammar/theme file of any supported format into a
// Document, detecting the format from the name and content.
func Parse(fileName string, data []byte) (*Document, error) {
	switch DetectFormat(fileName, data) {
	case FormatJSON:
		return ParseJSON(fileName, data, true)
	case FormatYAML:
		return ParseYAML(fileName, data)
	case FormatTOML:
		return ParseTOML(fileName, data)
	case FormatPlist:
		return ParsePlist(fileName, data)
	}
	return nil, fmt.Errorf("parse %s: unrecognized format", fileName)
}
