package registry

import "fmt"

// DuplicateError is returned when a handle is recorded twice for one name.
type DuplicateError struct {
	Name     string
	Existing string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("component %q already resolved to %q", e.Name, e.Existing)
}

// NotFoundError is returned when looking up a name that has no handle.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("component %q has not been resolved", e.Name)
}
