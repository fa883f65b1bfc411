package datafmt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLOptions configures how YAML scalars become values.
type YAMLOptions struct {
	// ResolveScalars additionally treats the YAML 1.1 plain words yes, no, on,
	// off, y, and n as booleans. Off by default: a scalar that resolves to a
	// string always stays a string.
	ResolveScalars bool
}

var yaml11Bools = map[string]bool{
	"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
	"on": true, "On": true, "ON": true,
	"n": false, "N": false, "no": false, "No": false, "NO": false,
	"off": false, "Off": false, "OFF": false,
}

// LoadYAML parses a single YAML document with string scalars kept as
// strings. Empty input is null.
func LoadYAML(data []byte) (Value, error) {
	return YAMLOptions{}.Load(data)
}

// LoadYAMLFile reads and parses the YAML file at path, decoding it with the
// named text encoding.
func LoadYAMLFile(path, encoding string) (Value, error) {
	data, err := readFile(path, encoding, YAML)
	if err != nil {
		return Value{}, err
	}
	v, err := LoadYAML(data)
	return v, withSource(err, path)
}

// Load parses a single YAML document.
func (o YAMLOptions) Load(data []byte) (Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Null(), nil
		}
		return Value{}, yamlParseError(err, 0)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return Value{}, yamlParseError(errors.New("expected a single document"), extra.Line)
		}
		return Value{}, yamlParseError(err, 0)
	}
	return o.fromNode(&doc)
}

func (o YAMLOptions) fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return o.fromNode(n.Content[0])
	case yaml.AliasNode:
		return o.fromNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, len(n.Content))
		for i, c := range n.Content {
			item, err := o.fromNode(c)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Sequence(items...), nil
	case yaml.MappingNode:
		rec := NewRecord()
		if err := o.fillMapping(rec, n, make(map[string]bool)); err != nil {
			return Value{}, err
		}
		return Mapping(rec), nil
	case yaml.ScalarNode:
		return o.scalar(n)
	default:
		return Null(), nil
	}
}

// fillMapping copies the pairs of n into rec. Explicit keys override keys
// pulled in by a "<<" merge regardless of order.
func (o YAMLOptions) fillMapping(rec *Record, n *yaml.Node, explicit map[string]bool) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		key, err := o.key(k)
		if err != nil {
			return err
		}
		if explicit[key] {
			return yamlParseError(fmt.Errorf("mapping key %q already defined", key), k.Line)
		}
		explicit[key] = true
		item, err := o.fromNode(v)
		if err != nil {
			return err
		}
		rec.Set(key, item)
	}
	for _, m := range merges {
		if err := o.merge(rec, m); err != nil {
			return err
		}
	}
	return nil
}

func (o YAMLOptions) merge(rec *Record, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		v, err := o.fromNode(n)
		if err != nil {
			return err
		}
		src, _ := v.Record()
		for k, item := range src.All() {
			if _, ok := rec.Get(k); !ok {
				rec.Set(k, item)
			}
		}
		return nil
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if err := o.merge(rec, c); err != nil {
				return err
			}
		}
		return nil
	default:
		return yamlParseError(errors.New("merge value must be a mapping or a sequence of mappings"), n.Line)
	}
}

func (o YAMLOptions) key(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", yamlParseError(errors.New("mapping keys must be scalars"), n.Line)
	}
	return n.Value, nil
}

func (o YAMLOptions) scalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!str":
		if o.ResolveScalars && n.Style == 0 {
			if b, ok := yaml11Bools[n.Value]; ok {
				return Bool(b), nil
			}
		}
		return String(n.Value), nil
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, yamlParseError(err, n.Line)
		}
		return Bool(b), nil
	case "!!int":
		var x any
		if err := n.Decode(&x); err != nil {
			return Value{}, yamlParseError(err, n.Line)
		}
		return ValueOf(x)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, yamlParseError(err, n.Line)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return Float(f), nil
		}
		if isPlainDecimal(n.Value) {
			return Number(strings.TrimPrefix(n.Value, "+")), nil
		}
		return Float(f), nil
	default:
		// timestamps, binary, and custom tags keep their text
		return String(n.Value), nil
	}
}

// isPlainDecimal reports whether s is already a valid JSON number literal
// apart from a leading plus sign.
func isPlainDecimal(s string) bool {
	s = strings.TrimPrefix(s, "+")
	s = strings.TrimPrefix(s, "-")
	if s == "" || s[0] < '0' || s[0] > '9' || (len(s) > 1 && s[0] == '0' && s[1] != '.' && s[1] != 'e' && s[1] != 'E') {
		return false
	}
	if strings.HasSuffix(s, ".") || strings.Contains(s, ".e") || strings.Contains(s, ".E") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil && !strings.ContainsAny(s, "_xXpP")
}

func yamlParseError(err error, line int) error {
	return &Error{Kind: ErrParse, Format: YAML, Line: line, Err: err}
}

// DumpYAML serializes v in block style with 2-space indentation, sorted keys,
// and sequences indented under their parent key.
func DumpYAML(v Value) (string, error) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteYAML writes [DumpYAML] output to w.
func WriteYAML(w io.Writer, v Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toNode(v)); err != nil {
		return err
	}
	return enc.Close()
}

// SaveYAMLFile writes [DumpYAML] output to path in the named encoding and
// returns path.
func SaveYAMLFile(v Value, path, encoding string) (string, error) {
	return SaveFile(path, YAML, v, Options{Encoding: encoding})
}

func toNode(v Value) *yaml.Node {
	switch v.kind {
	case NullKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case BoolKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case NumberKind:
		return numberNode(v)
	case StringKind:
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
		if _, ok := yaml11Bools[v.s]; ok {
			// YAML 1.1 readers take these plain words as booleans
			n.Style = yaml.DoubleQuotedStyle
		}
		return n
	case SequenceKind:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.seq {
			n.Content = append(n.Content, toNode(item))
		}
		return n
	default:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.rec.SortedKeys() {
			item, _ := v.rec.Get(k)
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				toNode(item),
			)
		}
		return n
	}
}

// fitsUint64 reports whether s is an integer literal above the int64 range
// that yaml.v3 still reads back as an integer.
func fitsUint64(s string) bool {
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func numberNode(v Value) *yaml.Node {
	if _, ok := v.Int64(); ok || fitsUint64(v.s) {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.s}
	}
	f, _ := v.Float64()
	switch {
	case math.IsNaN(f):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}
	case math.IsInf(f, 1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".inf"}
	case math.IsInf(f, -1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "-.inf"}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: v.s}
}
