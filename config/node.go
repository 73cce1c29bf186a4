// Package config normalizes grammar and theme files from their on-disk
// formats (JSON, XML property lists, YAML, TOML) into one in-memory tree,
// so the builders and everything behind them never see format
// differences. Numbers are normalized to strings during decoding; grammar
// and theme shapes only ever consume them as text (capture indices, color
// values).
package config

import "fmt"

// Kind discriminates Node variants.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindArray
	KindObject
)

// Node is one value in a normalized document tree. ID indexes into the
// owning Document's location table when the front-end tracked positions;
// -1 otherwise.
type Node struct {
	Kind Kind
	Bool bool
	Str  string
	Arr  []*Node
	Obj  map[string]*Node
	ID   int
}

// Location is the source position of one node. Line and Column are
// 1-indexed; Byte is a 0-indexed offset, -1 when the format's decoder
// does not report offsets.
type Location struct {
	Line, Column, Byte int
}

// Document is a parsed file: the tree plus an optional location table.
type Document struct {
	Root      *Node
	Locations []Location
	FileName  string
}

// SourceLocation returns the position of a node by ID, when tracked.
func (d *Document) SourceLocation(id int) (Location, bool) {
	if id < 0 || id >= len(d.Locations) {
		return Location{}, false
	}
	return d.Locations[id], true
}

// Field returns the named child of an object node, nil-safe.
func (n *Node) Field(key string) *Node {
	if n == nil || n.Kind != KindObject {
		return nil
	}
	return n.Obj[key]
}

// StringOr returns the node's string value, or def for anything else.
func (n *Node) StringOr(def string) string {
	if n == nil || n.Kind != KindString {
		return def
	}
	return n.Str
}

// Strings flattens a node into a string list: arrays collect their string
// items, a bare string becomes a one-element list.
func (n *Node) Strings() []string {
	switch {
	case n == nil:
		return nil
	case n.Kind == KindString:
		return []string{n.Str}
	case n.Kind == KindArray:
		var out []string
		for _, item := range n.Arr {
			if item.Kind == KindString {
				out = append(out, item.Str)
			}
		}
		return out
	}
	return nil
}

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// fromAny converts a decoded generic value (what the TOML and plist
// decoders hand back) into a Node without location info.
func fromAny(v any) *Node {
	switch x := v.(type) {
	case nil:
		return &Node{Kind: KindNull, ID: -1}
	case bool:
		return &Node{Kind: KindBool, Bool: x, ID: -1}
	case string:
		return &Node{Kind: KindString, Str: x, ID: -1}
	case int64:
		return &Node{Kind: KindString, Str: fmt.Sprintf("%d", x), ID: -1}
	case uint64:
		return &Node{Kind: KindString, Str: fmt.Sprintf("%d", x), ID: -1}
	case float64:
		return &Node{Kind: KindString, Str: trimFloat(x), ID: -1}
	case []any:
		arr := make([]*Node, 0, len(x))
		for _, item := range x {
			arr = append(arr, fromAny(item))
		}
		return &Node{Kind: KindArray, Arr: arr, ID: -1}
	case map[string]any:
		obj := make(map[string]*Node, len(x))
		for k, item := range x {
			obj[k] = fromAny(item)
		}
		return &Node{Kind: KindObject, Obj: obj, ID: -1}
	default:
		return &Node{Kind: KindString, Str: fmt.Sprintf("%v", x), ID: -1}
	}
}

// trimFloat formats a float the way the original trees stored them: whole
// values lose the trailing ".0".
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
