package sweep

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RangeSuffix marks a range-valued key; it is stripped from the generated
// parameter name.
const RangeSuffix = "_range"

// Rule is one independent sweep: every entry contributes a sequence of
// values and the rule expands to their Cartesian product.
type Rule struct {
	Entries []Entry
}

// Entry is a single key of a rule. Exactly one of Literal or Progression is
// meaningful: Progression is non-nil for range descriptors.
type Entry struct {
	Key         string
	Literal     any
	Progression *Progression
}

// Name is the output parameter name.
func (e Entry) Name() string {
	return strings.TrimSuffix(e.Key, RangeSuffix)
}

// Progression describes start, end and one of multiplier or increase_by.
// Fields are nil when absent from the document.
type Progression struct {
	Start      any `yaml:"start,omitempty"`
	End        any `yaml:"end,omitempty"`
	Multiplier any `yaml:"multiplier,omitempty"`
	IncreaseBy any `yaml:"increase_by,omitempty"`
}

func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: sweep rule must be a mapping", node.Line)
	}
	r.Entries = make([]Entry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		e := Entry{Key: keyNode.Value}
		switch valNode.Kind {
		case yaml.MappingNode:
			var p Progression
			if err := valNode.Decode(&p); err != nil {
				return fmt.Errorf("line %d: decode progression %q: %w", valNode.Line, e.Key, err)
			}
			e.Progression = &p
		case yaml.ScalarNode:
			if err := valNode.Decode(&e.Literal); err != nil {
				return fmt.Errorf("line %d: decode sweep value %q: %w", valNode.Line, e.Key, err)
			}
		default:
			return fmt.Errorf("line %d: sweep value %q must be a scalar or a progression", valNode.Line, e.Key)
		}
		r.Entries = append(r.Entries, e)
	}
	return nil
}

func (r Rule) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range r.Entries {
		var v any = e.Literal
		if e.Progression != nil {
			v = e.Progression
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(v); err != nil {
			return nil, fmt.Errorf("encode sweep value %q: %w", e.Key, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.Key}, valNode)
	}
	return node, nil
}
