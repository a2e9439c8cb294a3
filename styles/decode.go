package styles

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Description) UnmarshalYAML(node *yaml.Node) error {
	res, err := decodeDescription(node)
	if err != nil {
		return err
	}
	*d = *res
	return nil
}

// MarshalYAML implements yaml.Marshaler, key order is preserved.
func (d *Description) MarshalYAML() (any, error) {
	return encodeValue(d), nil
}

// Decode reads all YAML documents from r, each document is one layer.
func Decode(r io.Reader) ([]*Description, error) {
	dec := yaml.NewDecoder(r)
	var layers []*Description
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				return layers, nil
			}
			return nil, fmt.Errorf("unable to decode style description: %w", err)
		}
		if len(node.Content) == 0 {
			continue
		}
		d, err := decodeDescription(node.Content[0])
		if err != nil {
			return nil, err
		}
		layers = append(layers, d)
	}
}

// Parse decodes single document description.
func Parse(data []byte) (*Description, error) {
	layers, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	switch len(layers) {
	case 0:
		return New(), nil
	case 1:
		return layers[0], nil
	}
	return nil, fmt.Errorf("expected single document, got %d", len(layers))
}

// Encode writes description as YAML document.
func Encode(w io.Writer, d *Description) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(encodeValue(d)); err != nil {
		return fmt.Errorf("unable to encode style description: %w", err)
	}
	return enc.Close()
}

func nodeError(node *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", node.Line, fmt.Sprintf(format, args...))
}

func decodeDescription(node *yaml.Node) (*Description, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return New(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "style description must be a mapping")
	}
	d := New()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if val.Kind == yaml.AliasNode {
			val = val.Alias
		}
		if IsSlotKey(key) && val.Kind == yaml.MappingNode {
			slot, err := decodeDescription(val)
			if err != nil {
				return nil, fmt.Errorf("slot %q: %w", key, err)
			}
			d.Set(key, slot)
			continue
		}
		v, err := decodeValue(val, true)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		d.Set(key, v)
	}
	return d, nil
}

// decodeValue decodes property value. State maps are allowed on the top
// level and inside zone arrays, arrays are allowed on top level and as state
// map entries.
func decodeValue(node *yaml.Node, top bool) (any, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.ScalarNode:
		return decodeScalar(node)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, n := range node.Content {
			if n.Kind == yaml.SequenceNode {
				return nil, nodeError(n, "nested arrays are not allowed")
			}
			if n.Kind == yaml.MappingNode && !top {
				return nil, nodeError(n, "state map is not allowed here")
			}
			v, err := decodeValue(n, false)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		sm := NewStateMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			if key == ExtendKey {
				b, err := decodeScalar(val)
				if err != nil {
					return nil, err
				}
				ext, ok := b.(bool)
				if !ok {
					return nil, nodeError(val, "%s must be boolean", ExtendKey)
				}
				sm.Extend = ext
				continue
			}
			if val.Kind == yaml.MappingNode {
				return nil, nodeError(val, "nested state maps are not allowed")
			}
			if val.Kind == yaml.SequenceNode && !top {
				return nil, nodeError(val, "arrays are not allowed here")
			}
			v, err := decodeValue(val, false)
			if err != nil {
				return nil, err
			}
			sm.Set(key, v)
		}
		return sm, nil
	}
	return nil, nodeError(node, "unexpected value")
}

func decodeScalar(node *yaml.Node) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, nodeError(node, "scalar expected")
	}
	switch node.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		b, err := strconv.ParseBool(node.Value)
		if err != nil {
			var v bool
			if err := node.Decode(&v); err != nil {
				return nil, nodeError(node, "bad boolean %q", node.Value)
			}
			return v, nil
		}
		return b, nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, nodeError(node, "bad number %q", node.Value)
		}
		return f, nil
	}
	return node.Value, nil
}

func encodeValue(v any) *yaml.Node {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(x)}
	case float64:
		tag := "!!float"
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: strconv.FormatFloat(x, 'f', -1, 64)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x}
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, e := range x {
			n.Content = append(n.Content, encodeValue(e))
		}
		return n
	case *StateMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if x.Extend {
			n.Content = append(n.Content, encodeValue(ExtendKey), encodeValue(true))
		}
		x.Each(func(k string, v any) {
			n.Content = append(n.Content, encodeValue(k), encodeValue(v))
		})
		return n
	case *Description:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		x.Each(func(k string, v any) {
			n.Content = append(n.Content, encodeValue(k), encodeValue(v))
		})
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
}
