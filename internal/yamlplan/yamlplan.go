// Package yamlplan reads component descriptors from YAML plan files.
//
//	components:
//	  - name: oracle
//	  - name: coin
//	    depends_on: [oracle]
//	    config:
//	      oracle: {ref: oracle}
//	      initial_price: 2000
//
// A mapping whose only key is `ref` refers to another component's handle.
// Every other value is a literal.
package yamlplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/deploygrid/internal/component"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

const refKey = "ref"

type document struct {
	Components []componentNode `yaml:"components"`
}

type componentNode struct {
	Name      string               `yaml:"name"`
	DependsOn []string             `yaml:"depends_on"`
	Config    map[string]yaml.Node `yaml:"config"`
}

// ParseFile reads one plan file from disk.
func ParseFile(path string) ([]component.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open YAML file %s: %w", path, err)
	}
	defer f.Close()
	return Parse(path, f)
}

// Parse decodes a plan document. Unknown keys are rejected.
func Parse(filename string, r io.Reader) ([]component.Descriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}

	seen := make(map[string]struct{}, len(doc.Components))
	out := make([]component.Descriptor, 0, len(doc.Components))
	for i, node := range doc.Components {
		if node.Name == "" {
			return nil, fmt.Errorf("%s: components[%d]: name is required", filename, i)
		}
		if _, dup := seen[node.Name]; dup {
			return nil, fmt.Errorf("%s: component %q declared more than once", filename, node.Name)
		}
		seen[node.Name] = struct{}{}

		d, err := translate(node)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func translate(node componentNode) (component.Descriptor, error) {
	d := component.Descriptor{Name: node.Name, DependsOn: node.DependsOn}
	if len(node.Config) == 0 {
		return d, nil
	}

	d.Template = make(component.Template, len(node.Config))
	for param, raw := range node.Config {
		v, err := translateValue(&raw)
		if err != nil {
			return component.Descriptor{}, fmt.Errorf("component %q parameter %q (line %d): %w", node.Name, param, raw.Line, err)
		}
		d.Template[param] = v
	}
	return d, nil
}

func translateValue(node *yaml.Node) (component.Value, error) {
	if name, ok := refTarget(node); ok {
		if name == "" {
			return component.Value{}, errors.New("ref must name a component")
		}
		return component.Ref(name), nil
	}

	var raw any
	if err := node.Decode(&raw); err != nil {
		return component.Value{}, err
	}
	// Round-trip through JSON so cty can infer a type for the value.
	buf, err := json.Marshal(raw)
	if err != nil {
		return component.Value{}, fmt.Errorf("unsupported value: %w", err)
	}
	ty, err := ctyjson.ImpliedType(buf)
	if err != nil {
		return component.Value{}, err
	}
	val, err := ctyjson.Unmarshal(buf, ty)
	if err != nil {
		return component.Value{}, err
	}
	return component.Literal(val), nil
}

// refTarget reports whether node is a mapping of the form {ref: <name>}.
func refTarget(node *yaml.Node) (string, bool) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return "", false
	}
	key, val := node.Content[0], node.Content[1]
	if key.Value != refKey || val.Kind != yaml.ScalarNode {
		return "", false
	}
	return val.Value, true
}
