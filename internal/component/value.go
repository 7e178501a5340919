package component

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// RootName is the variable under which component handles are exposed to
// template expressions, as in `component.oracle.handle`.
const RootName = "component"

// Attribute names available on a referenced component.
const (
	AttrHandle = "handle"
	AttrName   = "name"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	// KindLiteral is a constant passed through unchanged.
	KindLiteral ValueKind = iota
	// KindRef is replaced by the handle of the referenced component.
	KindRef
	// KindExpr is an expression evaluated against the handles of the
	// components it references.
	KindExpr
)

func (k ValueKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindRef:
		return "ref"
	case KindExpr:
		return "expr"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a single template parameter. Use Literal, Ref or Expr to build one.
type Value struct {
	Kind    ValueKind
	Literal cty.Value
	Ref     string
	Expr    hcl.Expression

	refs []string
}

// Literal wraps a constant value.
func Literal(v cty.Value) Value {
	return Value{Kind: KindLiteral, Literal: v}
}

// Ref refers to the resolved handle of the named component.
func Ref(name string) Value {
	return Value{Kind: KindRef, Ref: name}
}

// Expr wraps an expression. The components it depends on are derived from
// its `component.<name>` traversals.
func Expr(expr hcl.Expression) Value {
	return Value{Kind: KindExpr, Expr: expr, refs: ExpressionReferences(expr)}
}

// References returns the names of the components this value needs.
func (v Value) References() []string {
	switch v.Kind {
	case KindRef:
		return []string{v.Ref}
	case KindExpr:
		if v.refs == nil && v.Expr != nil {
			return ExpressionReferences(v.Expr)
		}
		return v.refs
	default:
		return nil
	}
}

// ExpressionReferences lists, sorted and de-duplicated, the component names
// that an expression traverses into via `component.<name>`.
func ExpressionReferences(expr hcl.Expression) []string {
	seen := make(map[string]struct{})
	for _, traversal := range expr.Variables() {
		name, ok := TraversalTarget(traversal)
		if !ok {
			continue
		}
		seen[name] = struct{}{}
	}
	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}

// TraversalTarget extracts <name> from a traversal of the form
// `component.<name>...`.
func TraversalTarget(traversal hcl.Traversal) (string, bool) {
	if len(traversal) < 2 || traversal.RootName() != RootName {
		return "", false
	}
	attr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		return "", false
	}
	return attr.Name, true
}
