package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// ParseTOML decodes a TOML document into a normalized tree. The TOML
// decoder exposes no per-value positions, so the document carries no
// location table.
func ParseTOML(fileName string, data []byte) (*Document, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parse toml %s: %w", fileName, err)
	}
	return &Document{FileName: fileName, Root: fromAny(normalizeTOML(raw))}, nil
}

// normalizeTOML rewrites TOML-specific decode results (typed slices,
// datetimes, ints) into the generic shapes fromAny understands.
func normalizeTOML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalizeTOML(item)
		}
		return out
	case []map[string]any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			out = append(out, normalizeTOML(item))
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			out = append(out, normalizeTOML(item))
		}
		return out
	case time.Time:
		return x.Format(time.RFC3339)
	case int:
		return int64(x)
	default:
		return x
	}
}
