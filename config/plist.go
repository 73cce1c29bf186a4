package config

import (
	"fmt"

	"howett.net/plist"
)

// ParsePlist decodes an XML (or binary) property list — the classic
// tmLanguage/tmTheme container — into a normalized tree. The plist
// decoder reports no positions, so the document carries no location
// table.
func ParsePlist(fileName string, data []byte) (*Document, error) {
	var raw any
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse plist %s: %w", fileName, err)
	}
	return &Document{FileName: fileName, Root: fromAny(normalizePlist(raw))}, nil
}

// normalizePlist rewrites plist-specific decode results (uint64 integers,
// []interface{} of typed values, data blobs) into generic shapes.
func normalizePlist(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalizePlist(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(x))
		for _, item := range x {
			out = append(out, normalizePlist(item))
		}
		return out
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case uint64:
		return x
	default:
		return x
	}
}
