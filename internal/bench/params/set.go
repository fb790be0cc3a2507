package params

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is an ordered mapping from parameter name to scalar value. Key order is
// the order keys were first added, which is also the YAML declaration order.
type Set struct {
	keys   []string
	values map[string]any
}

func New() *Set {
	return &Set{values: make(map[string]any)}
}

// Of builds a Set from alternating key/value arguments.
func Of(kv ...any) *Set {
	if len(kv)%2 != 0 {
		panic("params.Of: odd number of arguments")
	}
	s := New()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("params.Of: key at %d is %T, want string", i, kv[i]))
		}
		s.Put(key, kv[i+1])
	}
	return s
}

// Put sets key to value. An existing key keeps its position.
func (s *Set) Put(key string, value any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *Set) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[key]
	return v, ok
}

func (s *Set) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns the keys in insertion order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Set) Clone() *Set {
	c := &Set{
		keys:   make([]string, len(s.keys)),
		values: make(map[string]any, len(s.values)),
	}
	copy(c.keys, s.keys)
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

// Map returns an unordered copy of the set.
func (s *Set) Map() map[string]any {
	m := make(map[string]any, s.Len())
	for _, k := range s.Keys() {
		m[k] = s.values[k]
	}
	return m
}

func (s *Set) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, s.values[k])
	}
	b.WriteByte('}')
	return b.String()
}

func (s *Set) Int(key string) (int, error) {
	v, ok := s.Get(key)
	if !ok {
		return 0, fmt.Errorf("parameter %q is missing", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("parameter %q: %v is not an integer", key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("parameter %q has type %T, want integer", key, v)
	}
}

// IntOr returns def when key is absent.
func (s *Set) IntOr(key string, def int) (int, error) {
	if !s.Has(key) {
		return def, nil
	}
	return s.Int(key)
}

func (s *Set) Float(key string) (float64, error) {
	v, ok := s.Get(key)
	if !ok {
		return 0, fmt.Errorf("parameter %q is missing", key)
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("parameter %q has type %T, want number", key, v)
	}
}

func (s *Set) Str(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok {
		return "", fmt.Errorf("parameter %q is missing", key)
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q has type %T, want string", key, v)
	}
	return str, nil
}

// DType returns the resolved dtype stored under key. Only preprocessed sets
// carry DType values.
func (s *Set) DType(key string) (DType, error) {
	v, ok := s.Get(key)
	if !ok {
		return Invalid, fmt.Errorf("parameter %q is missing", key)
	}
	d, ok := v.(DType)
	if !ok {
		return Invalid, fmt.Errorf("parameter %q has type %T, want resolved dtype", key, v)
	}
	return d, nil
}

// DTypeOr returns def when key is absent.
func (s *Set) DTypeOr(key string, def DType) (DType, error) {
	if !s.Has(key) {
		return def, nil
	}
	return s.DType(key)
}

func (s *Set) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: parameter set must be a mapping", node.Line)
	}
	*s = Set{values: make(map[string]any, len(node.Content)/2)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if valNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: parameter %q must be a scalar", valNode.Line, keyNode.Value)
		}
		var v any
		if err := valNode.Decode(&v); err != nil {
			return fmt.Errorf("line %d: decode parameter %q: %w", valNode.Line, keyNode.Value, err)
		}
		s.Put(keyNode.Value, v)
	}
	return nil
}

func (s *Set) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range s.Keys() {
		v := s.values[k]
		if d, ok := v.(DType); ok {
			v = d.String()
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(v); err != nil {
			return nil, fmt.Errorf("encode parameter %q: %w", k, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, valNode)
	}
	return node, nil
}
