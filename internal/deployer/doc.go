// Package deployer provides the deploy functions the orchestrator calls for
// each component: a deterministic dry run, an HTTP deploy service client and
// a logging wrapper.
package deployer
