package component

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Handle is the opaque identifier (typically an on-chain address) returned
// by a successful deployment.
type Handle string

// String implements fmt.Stringer.
func (h Handle) String() string { return string(h) }

// Template maps a constructor parameter name to its unresolved value.
type Template map[string]Value

// Config is a fully resolved Template, ready to be handed to a deployer.
type Config map[string]cty.Value

// Descriptor declares one deployable component.
type Descriptor struct {
	// Name uniquely identifies the component within one batch.
	Name string
	// DependsOn lists components that must be deployed first even when the
	// template does not reference them.
	DependsOn []string
	// Template holds the constructor parameters.
	Template Template
}

// Dependencies returns the sorted, de-duplicated union of the explicit
// DependsOn entries and every component referenced from the template.
func (d Descriptor) Dependencies() []string {
	seen := make(map[string]struct{}, len(d.DependsOn))
	for _, dep := range d.DependsOn {
		seen[dep] = struct{}{}
	}
	for _, v := range d.Template {
		for _, ref := range v.References() {
			seen[ref] = struct{}{}
		}
	}

	deps := make([]string, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// ParamNames returns the template parameter names in lexical order.
func (t Template) ParamNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
