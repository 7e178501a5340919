package hclplan

import "github.com/hashicorp/hcl/v2"

// rootSchema describes the top-level blocks of a plan file.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "component", LabelNames: []string{"name"}},
	},
}

// componentBody is the content of a `component` block.
type componentBody struct {
	DependsOn []string     `hcl:"depends_on,optional"`
	Config    *configBlock `hcl:"config,block"`
}

// configBlock holds constructor parameters as free-form attributes.
type configBlock struct {
	Body hcl.Body `hcl:",remain"`
}
