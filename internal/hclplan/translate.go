package hclplan

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/deploygrid/internal/component"
)

// translateValue classifies a config attribute as a literal, a reference or
// a deferred expression.
func (p *Parser) translateValue(attr *hcl.Attribute) (component.Value, error) {
	traversals := attr.Expr.Variables()
	if len(traversals) == 0 {
		val, diags := attr.Expr.Value(p.evalContext())
		if diags.HasErrors() {
			return component.Value{}, diags
		}
		return component.Literal(val), nil
	}

	for _, traversal := range traversals {
		if err := validateTraversal(traversal); err != nil {
			return component.Value{}, err
		}
	}

	if traversal, diags := hcl.AbsTraversalForExpr(attr.Expr); !diags.HasErrors() {
		if name, ok := handleReference(traversal); ok {
			return component.Ref(name), nil
		}
	}
	return component.Expr(attr.Expr), nil
}

// validateTraversal accepts only component.<name>, component.<name>.handle
// and component.<name>.name.
func validateTraversal(traversal hcl.Traversal) error {
	rng := traversal.SourceRange()
	if traversal.RootName() != component.RootName {
		return fmt.Errorf("%s: unsupported reference to %q; only %s.<name>.%s is available", rng, traversal.RootName(), component.RootName, component.AttrHandle)
	}
	if _, ok := component.TraversalTarget(traversal); !ok {
		return fmt.Errorf("%s: %s must be followed by a component name", rng, component.RootName)
	}
	if len(traversal) > 2 {
		attr, ok := traversal[2].(hcl.TraverseAttr)
		if !ok || (attr.Name != component.AttrHandle && attr.Name != component.AttrName) {
			return fmt.Errorf("%s: components expose only %q and %q", rng, component.AttrHandle, component.AttrName)
		}
	}
	return nil
}

// handleReference recognizes `component.<name>` and `component.<name>.handle`.
func handleReference(traversal hcl.Traversal) (string, bool) {
	name, ok := component.TraversalTarget(traversal)
	if !ok {
		return "", false
	}
	switch len(traversal) {
	case 2:
		return name, true
	case 3:
		if attr, ok := traversal[2].(hcl.TraverseAttr); ok && attr.Name == component.AttrHandle {
			return name, true
		}
	}
	return "", false
}
