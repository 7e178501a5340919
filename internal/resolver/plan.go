package resolver

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strconv"
)

// Plan is an immutable, dependency-respecting deployment order.
type Plan struct {
	order []string
	index map[string]int
	deps  map[string][]string
	depth []int
}

// Order returns the component names in deployment order.
func (p *Plan) Order() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns the number of planned components.
func (p *Plan) Len() int { return len(p.order) }

// Index returns the 0-based plan position of name.
func (p *Plan) Index(name string) (int, bool) {
	i, ok := p.index[name]
	return i, ok
}

// Dependencies returns the direct dependencies of name, sorted.
func (p *Plan) Dependencies(name string) []string {
	deps := p.deps[name]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// Depth returns the length of the longest dependency chain ending at name.
// Components without dependencies have depth 0.
func (p *Plan) Depth(name string) (int, bool) {
	i, ok := p.index[name]
	if !ok {
		return 0, false
	}
	return p.depth[i], true
}

// Levels groups the plan by depth. Components sharing a level have no edge
// between them; within a level they keep their plan order.
func (p *Plan) Levels() [][]string {
	if len(p.order) == 0 {
		return nil
	}
	maxDepth := 0
	for _, d := range p.depth {
		if d > maxDepth {
			maxDepth = d
		}
	}
	levels := make([][]string, maxDepth+1)
	for i, name := range p.order {
		levels[p.depth[i]] = append(levels[p.depth[i]], name)
	}
	return levels
}

// Hash returns a stable identity for the plan: its order and its edges.
func (p *Plan) Hash() string {
	h := sha256.New()
	for _, name := range p.order {
		writeField(h, name)
		deps := p.deps[name]
		writeField(h, strconv.Itoa(len(deps)))
		for _, dep := range deps {
			writeField(h, dep)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed field so adjacent names cannot collide.
func writeField(w io.Writer, s string) {
	n := uint32(len(s))
	w.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	w.Write([]byte(s))
}

func (p *Plan) computeDepth() {
	p.depth = make([]int, len(p.order))
	for i, name := range p.order {
		d := 0
		for _, dep := range p.deps[name] {
			if cand := p.depth[p.index[dep]] + 1; cand > d {
				d = cand
			}
		}
		p.depth[i] = d
	}
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
