// Package component defines the declarative model consumed by the resolver
// and the orchestrator: descriptors, their configuration templates and the
// handles produced by deploying them.
//
// The package is format-agnostic. HCL and YAML plan files are translated
// into these types by internal/hclplan and internal/yamlplan.
package component
