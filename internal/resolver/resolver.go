package resolver

import (
	"container/heap"

	"github.com/specialistvlad/deploygrid/internal/component"
)

// Resolve validates descriptors and returns their deployment plan.
//
// It fails with *DuplicateComponentError, *UnknownDependencyError or
// *CycleError. Validation errors are reported in name order so the same
// broken input always produces the same error.
func Resolve(descriptors []component.Descriptor) (*Plan, error) {
	deps := make(map[string][]string, len(descriptors))
	for _, d := range descriptors {
		if d.Name == "" {
			return nil, &DuplicateComponentError{}
		}
		if _, exists := deps[d.Name]; exists {
			return nil, &DuplicateComponentError{Name: d.Name}
		}
		deps[d.Name] = d.Dependencies()
	}

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	names = sortedCopy(names)

	for _, name := range names {
		for _, dep := range deps[name] {
			if _, ok := deps[dep]; !ok {
				return nil, &UnknownDependencyError{Component: name, Dependency: dep}
			}
		}
	}

	indeg := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, name := range names {
		indeg[name] = len(deps[name])
		for _, dep := range deps[name] {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	ready := &nameHeap{}
	for _, name := range names {
		if indeg[name] == 0 {
			heap.Push(ready, name)
		}
	}

	order := make([]string, 0, len(names))
	for ready.Len() > 0 {
		name := heap.Pop(ready).(string)
		order = append(order, name)
		for _, dependent := range dependents[name] {
			indeg[dependent]--
			if indeg[dependent] == 0 {
				heap.Push(ready, dependent)
			}
		}
	}

	if len(order) != len(names) {
		return nil, &CycleError{Cycle: findCycle(names, deps, indeg)}
	}

	p := &Plan{
		order: order,
		index: make(map[string]int, len(order)),
		deps:  deps,
	}
	for i, name := range order {
		p.index[name] = i
	}
	p.computeDepth()
	return p, nil
}

// findCycle walks from the smallest unscheduled component along its
// smallest unscheduled dependency until a component repeats. Every
// unscheduled component has at least one unscheduled dependency, so the
// walk always closes a cycle.
func findCycle(names []string, deps map[string][]string, indeg map[string]int) []string {
	var start string
	for _, name := range names {
		if indeg[name] > 0 {
			start = name
			break
		}
	}
	if start == "" {
		return nil
	}

	pos := make(map[string]int)
	var path []string
	cur := start
	for {
		if i, seen := pos[cur]; seen {
			cycle := append([]string{}, path[i:]...)
			return append(cycle, cur)
		}
		pos[cur] = len(path)
		path = append(path, cur)

		next := ""
		for _, dep := range deps[cur] {
			if indeg[dep] > 0 {
				next = dep
				break
			}
		}
		if next == "" {
			return path
		}
		cur = next
	}
}

// nameHeap is a min-heap of component names.
type nameHeap []string

func (h nameHeap) Len() int           { return len(h) }
func (h nameHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h nameHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nameHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *nameHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
