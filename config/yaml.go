package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document (the line-oriented grammar/theme
// format) into a normalized tree. YAML's decoder reports line and column
// per node, so the location table is always populated; byte offsets are
// not available from the decoder and stay -1.
func ParseYAML(fileName string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse yaml %s: %w", fileName, err)
	}
	doc := &Document{FileName: fileName}
	content := &root
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			doc.Root = &Node{Kind: KindNull, ID: -1}
			return doc, nil
		}
		content = root.Content[0]
	}
	node, err := yamlNode(doc, content)
	if err != nil {
		return nil, fmt.Errorf("parse yaml %s: %w", fileName, err)
	}
	doc.Root = node
	return doc, nil
}

func yamlNode(doc *Document, y *yaml.Node) (*Node, error) {
	n := &Node{ID: len(doc.Locations)}
	doc.Locations = append(doc.Locations, Location{Line: y.Line, Column: y.Column, Byte: -1})

	switch y.Kind {
	case yaml.ScalarNode:
		switch y.Tag {
		case "!!null":
			n.Kind = KindNull
		case "!!bool":
			n.Kind = KindBool
			n.Bool = y.Value == "true" || y.Value == "True" || y.Value == "TRUE"
		default:
			// Strings, ints and floats all normalize to the scalar text.
			n.Kind = KindString
			n.Str = y.Value
		}
	case yaml.SequenceNode:
		n.Kind = KindArray
		for _, item := range y.Content {
			child, err := yamlNode(doc, item)
			if err != nil {
				return nil, err
			}
			n.Arr = append(n.Arr, child)
		}
	case yaml.MappingNode:
		n.Kind = KindObject
		n.Obj = map[string]*Node{}
		for i := 0; i+1 < len(y.Content); i += 2 {
			key := y.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key is not a scalar", key.Line)
			}
			child, err := yamlNode(doc, y.Content[i+1])
			if err != nil {
				return nil, err
			}
			n.Obj[key.Value] = child
		}
	case yaml.AliasNode:
		return yamlNode(doc, y.Alias)
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", y.Line, y.Kind)
	}
	return n, nil
}
