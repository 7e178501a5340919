package component

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Resolve substitutes every reference in the template with the matching
// entry of handles. Expressions are evaluated with the given functions in
// scope. A reference missing from handles is an error.
func (t Template) Resolve(handles map[string]Handle, funcs map[string]function.Function) (Config, error) {
	cfg := make(Config, len(t))
	for _, name := range t.ParamNames() {
		v := t[name]
		switch v.Kind {
		case KindLiteral:
			cfg[name] = v.Literal
		case KindRef:
			h, ok := handles[v.Ref]
			if !ok {
				return nil, fmt.Errorf("parameter %q: no handle for component %q", name, v.Ref)
			}
			cfg[name] = cty.StringVal(string(h))
		case KindExpr:
			for _, ref := range v.References() {
				if _, ok := handles[ref]; !ok {
					return nil, fmt.Errorf("parameter %q: no handle for component %q", name, ref)
				}
			}
			val, diags := v.Expr.Value(EvalContext(handles, funcs))
			if diags.HasErrors() {
				return nil, fmt.Errorf("parameter %q: %w", name, diags)
			}
			cfg[name] = val
		default:
			return nil, fmt.Errorf("parameter %q: unsupported value kind %s", name, v.Kind)
		}
	}
	return cfg, nil
}

// EvalContext exposes handles as `component.<name>.handle` together with
// the given functions.
func EvalContext(handles map[string]Handle, funcs map[string]function.Function) *hcl.EvalContext {
	objs := make(map[string]cty.Value, len(handles))
	for name, h := range handles {
		objs[name] = cty.ObjectVal(map[string]cty.Value{
			AttrHandle: cty.StringVal(string(h)),
			AttrName:   cty.StringVal(name),
		})
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{RootName: cty.ObjectVal(objs)},
		Functions: funcs,
	}
}
