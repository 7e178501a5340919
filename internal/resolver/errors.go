package resolver

import (
	"fmt"
	"strings"
)

// UnknownDependencyError reports a dependency on a name that is not part of
// the batch.
type UnknownDependencyError struct {
	Component  string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("component %q depends on unknown component %q", e.Component, e.Dependency)
}

// CycleError reports a dependency cycle. Cycle lists the components on the
// cycle in dependency order and repeats the first one at the end.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	if len(e.Cycle) == 0 {
		return "dependency cycle detected"
	}
	return "dependency cycle detected: " + strings.Join(e.Cycle, " -> ")
}

// DuplicateComponentError reports a name declared more than once, or an
// empty name.
type DuplicateComponentError struct {
	Name string
}

func (e *DuplicateComponentError) Error() string {
	if e.Name == "" {
		return "component name is required"
	}
	return fmt.Sprintf("component %q is declared more than once", e.Name)
}
