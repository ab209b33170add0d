// Package catalog holds the detection rules the demo events are built to
// trigger.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"demo-data-loader/internal/model"

	"gopkg.in/yaml.v3"
)

// Prefix starts the name of every catalog rule.
const Prefix = "demo-"

// Rule is one detection & response rule. Detect and Respond keep the key
// order they were written in.
type Rule struct {
	Name    string          `json:"name"`
	Detect  *model.Object   `json:"detect"`
	Respond []*model.Object `json:"respond"`
}

//go:embed rules.yaml
var rulesYAML []byte

// Rules parses the embedded catalog.
func Rules() ([]Rule, error) {
	return Parse(rulesYAML)
}

// Parse decodes a YAML list of rules and checks that each one is usable.
func Parse(b []byte) ([]Rule, error) {
	var rules []Rule
	if err := yaml.Unmarshal(b, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("rule %d: missing name", i)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("rule %s: duplicate name", r.Name)
		}
		seen[r.Name] = struct{}{}
		if r.Detect.Len() == 0 {
			return nil, fmt.Errorf("rule %s: missing detect", r.Name)
		}
		if len(r.Respond) == 0 {
			return nil, fmt.Errorf("rule %s: missing respond", r.Name)
		}
	}
	return rules, nil
}

// Names returns the sorted rule names of the embedded catalog.
func Names() ([]string, error) {
	rules, err := Rules()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names, nil
}

// Marshal renders rules as YAML.
func Marshal(rules []Rule) ([]byte, error) {
	return yaml.Marshal(rules)
}

func (r *Rule) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: rule must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch key {
		case "name":
			if err := val.Decode(&r.Name); err != nil {
				return err
			}
		case "detect":
			obj, err := objectFromNode(val)
			if err != nil {
				return fmt.Errorf("detect: %w", err)
			}
			r.Detect = obj
		case "respond":
			if val.Kind != yaml.SequenceNode {
				return fmt.Errorf("line %d: respond must be a list", val.Line)
			}
			r.Respond = make([]*model.Object, 0, len(val.Content))
			for _, item := range val.Content {
				obj, err := objectFromNode(item)
				if err != nil {
					return fmt.Errorf("respond: %w", err)
				}
				r.Respond = append(r.Respond, obj)
			}
		default:
			return fmt.Errorf("line %d: unknown rule field %q", n.Content[i].Line, key)
		}
	}
	return nil
}

func (r Rule) MarshalYAML() (any, error) {
	respond := make([]any, len(r.Respond))
	for i, o := range r.Respond {
		respond[i] = o
	}
	out := model.NewObject(3)
	out.Set("name", r.Name)
	out.Set("detect", r.Detect)
	out.Set("respond", respond)
	return toNode(out)
}

func objectFromNode(n *yaml.Node) (*model.Object, error) {
	v, err := fromNode(n)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*model.Object)
	if !ok {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	return obj, nil
}

// fromNode converts YAML into the ordered value model: mappings become
// *model.Object, sequences []any, scalars their decoded Go value.
func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		obj := model.NewObject(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func toNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *model.Object:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, m := range t.Members() {
			val, err := toNode(m.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key}, val)
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range t {
			val, err := toNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, val)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}
