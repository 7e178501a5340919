// Package app wires plan loading, the orchestrator, deployers, the state
// store and metrics into one run, decoupled from any specific entrypoint
// like a CLI.
package app
