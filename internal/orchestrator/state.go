package orchestrator

import "fmt"

// State is the lifecycle state of one run.
type State string

const (
	StatePending          State = "pending"
	StateResolving        State = "resolving"
	StateResolutionFailed State = "resolution_failed"
	StateDeploying        State = "deploying"
	StateDeployFailed     State = "deploy_failed"
	StateComplete         State = "complete"
)

var transitions = map[State][]State{
	StatePending:   {StateResolving},
	StateResolving: {StateResolutionFailed, StateDeploying},
	StateDeploying: {StateDeployFailed, StateComplete},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether s may move to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// advance moves the report to next. An illegal transition is a programming
// error and panics.
func (r *Report) advance(next State) {
	if !r.State.CanTransition(next) {
		panic(fmt.Sprintf("orchestrator: illegal state transition %s -> %s", r.State, next))
	}
	r.State = next
}
