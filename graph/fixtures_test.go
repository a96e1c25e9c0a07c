package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mevdschee/insertorder/action"
	"github.com/mevdschee/insertorder/persister"
)

type model struct {
	t        *testing.T
	registry *persister.Registry
}

func newModel(t *testing.T, persisters ...*persister.Persister) *model {
	t.Helper()
	r, err := persister.NewRegistry()
	require.NoError(t, err)
	t.Cleanup(r.Close)
	for _, p := range persisters {
		require.NoError(t, r.Register(p))
	}
	return &model{t: t, registry: r}
}

// add registers an insert of entity with identifier id and the given links
func (m *model) add(arena *action.Arena, entity string, id int, links ...action.Link) int {
	m.t.Helper()
	p, ok := m.registry.Lookup(entity)
	require.True(m.t, ok, "unknown entity %s", entity)
	return arena.Add(action.New(p, id, []action.ColumnValue{{Name: "id", Value: id}}, links...))
}

func link(property string, target int) action.Link {
	return action.Link{Property: property, Target: target}
}

func owning(column string) persister.AssociationDescriptor {
	return persister.OwningForeignKey{Column: column}
}

// positions maps arena index to its place in order
func positions(order []int) map[int]int {
	pos := make(map[int]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	return pos
}

// requireTopological checks that every edge of g is respected by order
func requireTopological(t *testing.T, g *Graph, order []int) {
	t.Helper()
	require.Len(t, order, g.Len())
	pos := positions(order)
	for _, e := range g.Edges() {
		require.Less(t, pos[e.From], pos[e.To], "edge %d -> %d (%s) violated", e.From, e.To, e.Property)
	}
}

func userGroupModel(t *testing.T) *model {
	return newModel(t,
		&persister.Persister{EntityName: "User", Table: "USERS"},
		&persister.Persister{EntityName: "Group", Table: "GROUPS"},
		&persister.Persister{
			EntityName: "Membership",
			Table:      "MEMBERSHIP",
			Associations: map[string]persister.AssociationDescriptor{
				"user":  owning("user_id"),
				"group": owning("group_id"),
			},
		},
	)
}

// conditionModel is the wrapper / condition tree / expression model whose
// wrapper also keeps a join-table collection of the same expressions.
func conditionModel(t *testing.T, mandatoryExpressions bool) *model {
	return newModel(t,
		&persister.Persister{
			EntityName: "Wrapper",
			Table:      "WRAPPER",
			Associations: map[string]persister.AssociationDescriptor{
				"condition":   owning("condition_id"),
				"expressions": persister.InverseSide{MappedBy: "wrapper_expressions", Mandatory: mandatoryExpressions},
			},
		},
		&persister.Persister{
			EntityName:    "CompoundCondition",
			Table:         "CONDITION",
			Discriminator: &persister.Discriminator{Column: "DTYPE", Value: "Compound"},
			Associations: map[string]persister.AssociationDescriptor{
				"first":  owning("first_id"),
				"second": owning("second_id"),
			},
		},
		&persister.Persister{
			EntityName:    "SimpleCondition",
			Table:         "CONDITION",
			Discriminator: &persister.Discriminator{Column: "DTYPE", Value: "Simple"},
			Associations: map[string]persister.AssociationDescriptor{
				"expression": owning("expression_id"),
			},
		},
		&persister.Persister{EntityName: "ConstantExpression", Table: "EXPRESSION"},
	)
}

// addConditionGraph registers the cascade order of persisting one wrapper:
// wrapper, compound, simple conditions and finally the expressions.
func addConditionGraph(m *model, arena *action.Arena, base int) (wrapper int) {
	wrapper = base
	compound := base + 1
	simple1, simple2 := base+2, base+3
	expr1, expr2 := base+4, base+5

	m.add(arena, "Wrapper", base, link("condition", compound), link("expressions", expr1), link("expressions", expr2))
	m.add(arena, "CompoundCondition", base+1, link("first", simple1), link("second", simple2))
	m.add(arena, "SimpleCondition", base+2, link("expression", expr1))
	m.add(arena, "SimpleCondition", base+3, link("expression", expr2))
	m.add(arena, "ConstantExpression", base+4)
	m.add(arena, "ConstantExpression", base+5)
	return wrapper
}
