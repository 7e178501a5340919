package hclplan

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/funcs"
	"github.com/zclconf/go-cty/cty/function"
)

// Parser accumulates descriptors from any number of HCL files.
type Parser struct {
	parser      *hclparse.Parser
	funcs       map[string]function.Function
	descriptors []component.Descriptor
	declared    map[string]hcl.Range
}

// NewParser returns a parser with the standard plan functions in scope.
func NewParser() *Parser {
	return &Parser{
		parser:   hclparse.NewParser(),
		funcs:    funcs.Table(),
		declared: make(map[string]hcl.Range),
	}
}

// ParseFile reads and parses one file from disk.
func (p *Parser) ParseFile(filename string) error {
	file, diags := p.parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return p.decode(filename, file.Body)
}

// ParseSource parses in-memory source; filename is used in diagnostics.
func (p *Parser) ParseSource(filename string, src []byte) error {
	file, diags := p.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return p.decode(filename, file.Body)
}

// Descriptors returns everything parsed so far, sorted by name.
func (p *Parser) Descriptors() []component.Descriptor {
	out := make([]component.Descriptor, len(p.descriptors))
	copy(out, p.descriptors)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p *Parser) decode(filename string, body hcl.Body) error {
	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	for _, block := range content.Blocks {
		name := block.Labels[0]
		if prev, exists := p.declared[name]; exists {
			return fmt.Errorf("%s: component %q already declared at %s", block.DefRange, name, prev)
		}

		d, err := p.decodeComponent(name, block)
		if err != nil {
			return fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
		}
		p.declared[name] = block.DefRange
		p.descriptors = append(p.descriptors, d)
	}
	return nil
}

func (p *Parser) decodeComponent(name string, block *hcl.Block) (component.Descriptor, error) {
	var body componentBody
	if diags := gohcl.DecodeBody(block.Body, p.evalContext(), &body); diags.HasErrors() {
		return component.Descriptor{}, diags
	}

	d := component.Descriptor{Name: name, DependsOn: body.DependsOn}
	if body.Config == nil {
		return d, nil
	}

	attrs, diags := body.Config.Body.JustAttributes()
	if diags.HasErrors() {
		return component.Descriptor{}, diags
	}
	d.Template = make(component.Template, len(attrs))
	for param, attr := range attrs {
		v, err := p.translateValue(attr)
		if err != nil {
			return component.Descriptor{}, fmt.Errorf("component %q parameter %q: %w", name, param, err)
		}
		d.Template[param] = v
	}
	return d, nil
}

// evalContext exposes plan functions but no variables.
func (p *Parser) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{Functions: p.funcs}
}
