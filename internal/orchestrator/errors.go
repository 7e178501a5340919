package orchestrator

import "fmt"

// ResolutionError wraps a resolver failure. Nothing was deployed.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving deployment plan: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// DeployError reports a failure of the deploy capability for one component.
// Deployers may return it directly to control Reason; any other error is
// wrapped with its message as Reason.
type DeployError struct {
	Component string
	Reason    string
	Err       error
}

func (e *DeployError) Error() string {
	if e.Component == "" {
		return e.Reason
	}
	return fmt.Sprintf("deploying %q: %s", e.Component, e.Reason)
}

func (e *DeployError) Unwrap() error { return e.Err }

// ConfigError reports a template that could not be resolved, e.g. an
// expression that fails to evaluate once handles are known.
type ConfigError struct {
	Component string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("building config for %q: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InvariantError reports registry state that contradicts a valid plan: a
// dependency without a handle, or a handle recorded twice. It indicates a
// defect, not bad input.
type InvariantError struct {
	Component string
	Err       error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated for %q: %v", e.Component, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }
