package graph

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/mevdschee/insertorder/action"
	"github.com/mevdschee/insertorder/persister"
)

// Edge means the row of From must be inserted before the row of To
type Edge struct {
	From     int
	To       int
	Property string
}

// Graph is the insert dependency graph of one flush. Nodes are arena indices.
type Graph struct {
	succ   [][]int
	indeg  []int
	edges  []Edge
	shapes []uint64
	keys   []string
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.succ)
}

// Edges returns all edges in the order they were added
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Successors returns the nodes that must be inserted after i
func (g *Graph) Successors(i int) []int {
	return g.succ[i]
}

// InDegree returns the number of nodes that must be inserted before i
func (g *Graph) InDegree(i int) int {
	return g.indeg[i]
}

// Build derives the dependency graph of the actions in arena.
//
// For every link to another pending action the association descriptor of the
// owning persister decides the direction:
//   - an owning foreign key requires the target first
//   - a mandatory inverse side requires this action first
//   - an optional inverse side adds nothing
//
// Embedded associations are unwrapped to the descriptor they carry.
func Build(arena *action.Arena) (*Graph, error) {
	n := arena.Len()
	g := &Graph{
		succ:   make([][]int, n),
		indeg:  make([]int, n),
		shapes: make([]uint64, n),
		keys:   make([]string, n),
	}
	seen := make(map[[2]int]bool)

	addEdge := func(from, to int, property string) {
		k := [2]int{from, to}
		if seen[k] {
			return
		}
		seen[k] = true
		g.succ[from] = append(g.succ[from], to)
		g.indeg[to]++
		g.edges = append(g.edges, Edge{From: from, To: to, Property: property})
	}

	for i, a := range arena.Actions() {
		g.shapes[i] = xxhash.Sum64String(a.SQL())
		g.keys[i] = a.String()

		for _, link := range a.Links {
			if link.Target == action.Persisted || link.Target == i {
				continue
			}
			if !arena.Contains(link.Target) {
				return nil, fmt.Errorf("%w: %s.%s -> %d", ErrDanglingLink, a, link.Property, link.Target)
			}
			d, ok := a.Persister.Association(link.Property)
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s", ErrUnknownAssociation, a.Key.EntityName, link.Property)
			}
			switch fk := persister.Unwrap(d).(type) {
			case persister.OwningForeignKey:
				addEdge(link.Target, i, link.Property)
			case persister.InverseSide:
				if fk.Mandatory {
					addEdge(i, link.Target, link.Property)
				}
			}
		}
	}

	return g, nil
}
