package graph

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports insert actions whose foreign keys form a real cycle.
// Each entry of Cycles is one strongly connected component of arena indices.
type CycleError struct {
	Cycles   [][]int
	Entities [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Entities))
	for i, names := range e.Entities {
		parts[i] = "[" + strings.Join(names, " -> ") + "]"
	}
	return fmt.Sprintf("%v: %s", ErrCircularDependency, strings.Join(parts, ", "))
}

// Unwrap returns ErrCircularDependency so callers can use errors.Is
func (e *CycleError) Unwrap() error {
	return ErrCircularDependency
}

// newCycleError runs Tarjan's algorithm on the nodes Kahn's algorithm could not
// place and keeps the components that are real cycles. Nodes that merely
// depend on a cycle are left out.
func newCycleError(g *Graph, placed []bool) *CycleError {
	var (
		index   = 0
		stack   []int
		indices = make(map[int]int)
		lowlink = make(map[int]int)
		onStack = make(map[int]bool)
		sccs    [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Successors(v) {
			if placed[w] {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := range g.succ {
		if placed[v] {
			continue
		}
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}

	err := &CycleError{}
	for _, scc := range sccs {
		if len(scc) == 1 && !hasSelfLoop(g, scc[0]) {
			continue
		}
		sort.Ints(scc)
		err.Cycles = append(err.Cycles, scc)
	}
	sort.Slice(err.Cycles, func(i, j int) bool {
		return err.Cycles[i][0] < err.Cycles[j][0]
	})
	for _, scc := range err.Cycles {
		names := make([]string, len(scc))
		for i, v := range scc {
			names[i] = g.keys[v]
		}
		err.Entities = append(err.Entities, names)
	}
	return err
}

func hasSelfLoop(g *Graph, v int) bool {
	for _, w := range g.succ[v] {
		if w == v {
			return true
		}
	}
	return false
}
