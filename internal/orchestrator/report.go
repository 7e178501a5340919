package orchestrator

import (
	"time"

	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/registry"
	"github.com/specialistvlad/deploygrid/internal/resolver"
)

// Status is the outcome recorded for one component.
type Status string

const (
	// StatusDeployed means the deployer was called and returned a handle.
	StatusDeployed Status = "deployed"
	// StatusReused means the handle was supplied up front and the
	// component was not deployed again.
	StatusReused Status = "reused"
	// StatusFailed means building the config or deploying failed.
	StatusFailed Status = "failed"
)

// Entry is the report line for one component.
type Entry struct {
	Name   string
	Status Status
	Handle component.Handle
	Err    error
	// Sequence is the 1-based order in which outcomes were recorded.
	Sequence int
	// Config is the resolved configuration handed to the deployer. It is
	// nil for reused components and when resolution of the template failed.
	Config   component.Config
	Started  time.Time
	Finished time.Time
}

// Report describes a run. Entries are in plan order and cover only the
// components whose outcome is known.
type Report struct {
	RunID    string
	State    State
	Plan     *resolver.Plan
	Entries  []Entry
	Registry *registry.Registry
	Started  time.Time
	Finished time.Time
}

// Succeeded returns the deployed and reused entries.
func (r *Report) Succeeded() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status != StatusFailed {
			out = append(out, e)
		}
	}
	return out
}

// Failed returns the failed entries. In sequential mode there is at most one.
func (r *Report) Failed() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			out = append(out, e)
		}
	}
	return out
}

// Entry returns the entry for name.
func (r *Report) Entry(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Resolved returns every handle known at the end of the run, suitable for
// WithResolved on a follow-up run.
func (r *Report) Resolved() map[string]component.Handle {
	if r.Registry == nil {
		return map[string]component.Handle{}
	}
	return r.Registry.Snapshot()
}
