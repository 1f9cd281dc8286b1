package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind enumerates the shapes an example value can take.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindInteger
	KindNumber
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a JSON-representable example. The zero Value is null.
//
// Integers are kept as canonical decimal text so arbitrarily large literals
// survive a round trip. Objects keep their keys in source order.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string payload or canonical integer digits
	number  float64
	members []Member
	items   []Value
}

// Member is one key/value pair of an object Value.
type Member struct {
	Key   string
	Value Value
}

func Null() Value           { return Value{} }
func Bool(b bool) Value     { return Value{kind: KindBool, boolean: b} }
func String(s string) Value { return Value{kind: KindString, text: s} }
func Int(i int64) Value     { return Value{kind: KindInteger, text: strconv.FormatInt(i, 10)} }
func Float(f float64) Value { return Value{kind: KindNumber, number: f} }

// BigInt builds an integer Value from decimal text. It returns false when
// the text is not a valid integer literal.
func BigInt(digits string) (Value, bool) {
	n, ok := new(big.Int).SetString(strings.ReplaceAll(digits, "_", ""), 0)
	if !ok {
		return Value{}, false
	}
	return Value{kind: KindInteger, text: n.String()}, true
}

func Object(members ...Member) Value {
	return Value{kind: KindObject, members: append([]Member{}, members...)}
}

func Array(items ...Value) Value {
	return Value{kind: KindArray, items: append([]Value{}, items...)}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) AsBool() bool      { return v.boolean }
func (v Value) AsString() string  { return v.text }
func (v Value) AsInteger() string { return v.text }
func (v Value) AsNumber() float64 { return v.number }

// Members returns the object's pairs in source order. The slice is shared;
// callers must not modify it.
func (v Value) Members() []Member { return v.members }

// Items returns the array elements. The slice is shared; callers must not
// modify it.
func (v Value) Items() []Value { return v.items }

// Len reports the number of members, items or string bytes.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.members)
	case KindArray:
		return len(v.items)
	case KindString:
		return len(v.text)
	}
	return 0
}

// Truthy reports whether the value counts as "provided": null, false, zero
// numbers, empty strings and empty containers do not.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindString, KindObject, KindArray:
		return v.Len() > 0
	case KindInteger:
		return v.text != "0"
	case KindNumber:
		return v.number != 0
	}
	return false
}

// UnmarshalYAML implements yaml.Unmarshaler. Tags decide the kind, so
// `1` is an integer and `1.0` a number.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	out, err := valueFromNode(node, map[*yaml.Node]bool{})
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func valueFromNode(node *yaml.Node, resolving map[*yaml.Node]bool) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return valueFromNode(node.Content[0], resolving)
	case yaml.AliasNode:
		if resolving[node.Alias] {
			return Value{}, fmt.Errorf("line %d: alias %q refers to itself", node.Line, node.Value)
		}
		resolving[node.Alias] = true
		defer delete(resolving, node.Alias)
		return valueFromNode(node.Alias, resolving)
	case yaml.ScalarNode:
		return scalarFromNode(node)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := valueFromNode(child, resolving)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{kind: KindArray, items: items}, nil
	case yaml.MappingNode:
		return objectFromNode(node, resolving)
	}
	return Value{}, fmt.Errorf("line %d: unsupported YAML node", node.Line)
}

var intLiteral = regexp.MustCompile(`^[-+]?[0-9][0-9_]*$`)

func scalarFromNode(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int":
		if out, ok := BigInt(node.Value); ok {
			return out, nil
		}
		var i int64
		if err := node.Decode(&i); err != nil {
			return Value{}, err
		}
		return Int(i), nil
	case "!!float":
		// Integer literals too wide for uint64 resolve as floats.
		if intLiteral.MatchString(node.Value) {
			if out, ok := BigInt(node.Value); ok {
				return out, nil
			}
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp and !!binary keep their literal text.
		return String(node.Value), nil
	}
}

func objectFromNode(node *yaml.Node, resolving map[*yaml.Node]bool) (Value, error) {
	var merged, own objectBuilder
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			if err := mergeInto(&merged, valNode, resolving); err != nil {
				return Value{}, err
			}
			continue
		}
		if keyNode.Kind != yaml.ScalarNode {
			return Value{}, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		val, err := valueFromNode(valNode, resolving)
		if err != nil {
			return Value{}, err
		}
		own.set(keyNode.Value, val)
	}
	for _, m := range own.members {
		merged.set(m.Key, m.Value)
	}
	if merged.members == nil {
		merged.members = []Member{}
	}
	return Value{kind: KindObject, members: merged.members}, nil
}

func mergeInto(dst *objectBuilder, node *yaml.Node, resolving map[*yaml.Node]bool) error {
	src, err := valueFromNode(node, resolving)
	if err != nil {
		return err
	}
	switch src.kind {
	case KindObject:
		for _, m := range src.members {
			if !dst.has(m.Key) {
				dst.set(m.Key, m.Value)
			}
		}
	case KindArray:
		for _, item := range src.items {
			if item.kind != KindObject {
				return fmt.Errorf("line %d: merge key expects mappings", node.Line)
			}
			for _, m := range item.members {
				if !dst.has(m.Key) {
					dst.set(m.Key, m.Value)
				}
			}
		}
	default:
		return fmt.Errorf("line %d: merge key expects a mapping", node.Line)
	}
	return nil
}

// objectBuilder keeps first-seen key positions; a repeated key replaces the
// value in place.
type objectBuilder struct {
	members []Member
	index   map[string]int
}

func (b *objectBuilder) has(key string) bool {
	_, ok := b.index[key]
	return ok
}

func (b *objectBuilder) set(key string, val Value) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[key]; ok {
		b.members[i].Value = val
		return
	}
	b.index[key] = len(b.members)
	b.members = append(b.members, Member{Key: key, Value: val})
}

// MarshalJSON implements json.Marshaler. Object keys keep source order and
// HTML characters are not escaped. Non-finite numbers have no JSON form and
// are written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case KindString:
		return writeJSONString(buf, v.text)
	case KindInteger:
		buf.WriteString(v.text)
	case KindNumber:
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(formatFloat(v.number))
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("spec: cannot encode value of kind %s", v.kind)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// formatFloat renders a float so it always reads back as a float: 1 becomes
// "1.0", large and tiny magnitudes switch to exponent form.
func formatFloat(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// MarshalYAML implements yaml.Marshaler, preserving object key order.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.boolean)}
	case KindString:
		return StringNode(v.text)
	case KindInteger:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.text}
	case KindNumber:
		var text string
		switch {
		case math.IsNaN(v.number):
			text = ".nan"
		case math.IsInf(v.number, 1):
			text = ".inf"
		case math.IsInf(v.number, -1):
			text = "-.inf"
		default:
			text = formatFloat(v.number)
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: text}
	case KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.members {
			node.Content = append(node.Content,
				StringNode(m.Key),
				m.Value.yamlNode(),
			)
		}
		return node
	case KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.items {
			node.Content = append(node.Content, item.yamlNode())
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// StringNode builds a string scalar. YAML 1.1 booleans such as yes and on are
// double quoted so older parsers read them back as strings.
func StringNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	switch s {
	case "y", "Y", "yes", "Yes", "YES", "on", "On", "ON",
		"n", "N", "no", "No", "NO", "off", "Off", "OFF":
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}
