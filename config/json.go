package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ParseJSON decodes a JSON document into a normalized tree. When
// withLocations is set, every node gets an entry in the location table,
// positioned at the decoder offset where its token ended; good enough to
// point an error message at the right area of the file.
func ParseJSON(fileName string, data []byte, withLocations bool) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	doc := &Document{FileName: fileName}
	p := &jsonParser{dec: dec, data: data, doc: doc, track: withLocations}
	root, err := p.value()
	if err != nil {
		return nil, fmt.Errorf("parse json %s: %w", fileName, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse json %s: trailing content", fileName)
	}
	doc.Root = root
	return doc, nil
}

type jsonParser struct {
	dec   *json.Decoder
	data  []byte
	doc   *Document
	track bool
}

func (p *jsonParser) value() (*Node, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, err
	}
	return p.node(tok)
}

func (p *jsonParser) node(tok json.Token) (*Node, error) {
	n := &Node{ID: p.location()}
	switch t := tok.(type) {
	case nil:
		n.Kind = KindNull
	case bool:
		n.Kind = KindBool
		n.Bool = t
	case string:
		n.Kind = KindString
		n.Str = t
	case json.Number:
		n.Kind = KindString
		n.Str = t.String()
	case json.Delim:
		switch t {
		case '[':
			n.Kind = KindArray
			for p.dec.More() {
				item, err := p.value()
				if err != nil {
					return nil, err
				}
				n.Arr = append(n.Arr, item)
			}
			if _, err := p.dec.Token(); err != nil { // closing ]
				return nil, err
			}
		case '{':
			n.Kind = KindObject
			n.Obj = map[string]*Node{}
			for p.dec.More() {
				keyTok, err := p.dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string")
				}
				val, err := p.value()
				if err != nil {
					return nil, err
				}
				n.Obj[key] = val
			}
			if _, err := p.dec.Token(); err != nil { // closing }
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
	return n, nil
}

// location records the current decoder offset and returns the new node ID,
// or -1 when tracking is off.
func (p *jsonParser) location() int {
	if !p.track {
		return -1
	}
	off := int(p.dec.InputOffset())
	if off > len(p.data) {
		off = len(p.data)
	}
	line, col := 1, 1
	for _, b := range p.data[:off] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	id := len(p.doc.Locations)
	p.doc.Locations = append(p.doc.Locations, Location{Line: line, Column: col, Byte: off})
	return id
}
