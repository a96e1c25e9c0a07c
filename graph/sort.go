package graph

import (
	"container/heap"
	"fmt"
	"strings"
)

// TieBreak selects among several actions that are ready to be inserted
type TieBreak int

const (
	// TieBreakShape prefers an action with the same statement as the previously
	// placed one, then the earliest registered action
	TieBreakShape TieBreak = iota
	// TieBreakRegistration always picks the earliest registered action
	TieBreakRegistration
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakShape:
		return "shape"
	case TieBreakRegistration:
		return "registration"
	}
	return fmt.Sprintf("TieBreak(%d)", int(t))
}

// ParseTieBreak parses "shape" or "registration"
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shape":
		return TieBreakShape, nil
	case "registration":
		return TieBreakRegistration, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTieBreak, s)
}

// Sort returns the arena indices of g in an order that respects every edge.
// The result only depends on the graph and the registration order, so
// sorting the same flush twice gives the same order. A graph with a real
// cycle yields a *CycleError.
func Sort(g *Graph, tb TieBreak) ([]int, error) {
	n := g.Len()
	indeg := make([]int, n)
	for i := range indeg {
		indeg[i] = g.InDegree(i)
	}

	ready := &indexHeap{}
	byShape := make(map[uint64]*indexHeap)
	placed := make([]bool, n)

	push := func(i int) {
		heap.Push(ready, i)
		if tb == TieBreakShape {
			h := byShape[g.shapes[i]]
			if h == nil {
				h = &indexHeap{}
				byShape[g.shapes[i]] = h
			}
			heap.Push(h, i)
		}
	}
	// both heaps hold every ready node; whichever pops it second skips it
	pop := func(h *indexHeap) int {
		for h.Len() > 0 {
			i := heap.Pop(h).(int)
			if !placed[i] {
				return i
			}
		}
		return -1
	}

	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			push(i)
		}
	}

	order := make([]int, 0, n)
	last := -1
	for len(order) < n {
		next := -1
		if tb == TieBreakShape && last >= 0 {
			if h := byShape[g.shapes[last]]; h != nil {
				next = pop(h)
			}
		}
		if next < 0 {
			next = pop(ready)
		}
		if next < 0 {
			break
		}

		placed[next] = true
		order = append(order, next)
		last = next
		for _, s := range g.succ[next] {
			indeg[s]--
			if indeg[s] == 0 {
				push(s)
			}
		}
	}

	if len(order) < n {
		return nil, newCycleError(g, placed)
	}
	return order, nil
}

// indexHeap is a min-heap of arena indices
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
