package action

import (
	"fmt"

	"github.com/mevdschee/insertorder/persister"
)

// Persisted is the link target for an association that points at a row already
// in the database. Such links never impose ordering.
const Persisted = -1

// EntityKey identifies the entity an action inserts. A nil ID means the
// identifier is assigned by the database on insert.
type EntityKey struct {
	EntityName string
	ID         any
}

func (k EntityKey) String() string {
	if k.ID == nil {
		return k.EntityName + "#<pending>"
	}
	return fmt.Sprintf("%s#%v", k.EntityName, k.ID)
}

// ColumnValue is one column written by an insert
type ColumnValue struct {
	Name  string
	Value any
}

// Ref is a column value standing for the identifier of another pending
// action. It is replaced with the real identifier when parameters are bound.
type Ref struct {
	Action int
}

// Link is a non-null association value. Target is the arena index of the
// referenced pending action, or Persisted.
type Link struct {
	Property string
	Target   int
}

// InsertAction is one pending entity insert
type InsertAction struct {
	Key       EntityKey
	Persister *persister.Persister
	Columns   []ColumnValue
	Links     []Link

	// EarlyInsert is true when the identifier is known before the flush
	EarlyInsert bool

	index int
	sql   string
}

// New creates an insert action for p. The identifier is considered known when
// id is not nil.
func New(p *persister.Persister, id any, columns []ColumnValue, links ...Link) *InsertAction {
	return &InsertAction{
		Key:         EntityKey{EntityName: p.EntityName, ID: id},
		Persister:   p,
		Columns:     columns,
		Links:       links,
		EarlyInsert: id != nil,
		index:       -1,
	}
}

// Index returns the position of the action in its arena, or -1
func (a *InsertAction) Index() int {
	return a.index
}

// ColumnNames returns the column names in write order
func (a *InsertAction) ColumnNames() []string {
	names := make([]string, len(a.Columns))
	for i, c := range a.Columns {
		names[i] = c.Name
	}
	return names
}

// SQL returns the insert statement template for this action
func (a *InsertAction) SQL() string {
	if a.sql == "" {
		a.sql = a.Persister.InsertSQL(a.ColumnNames())
	}
	return a.sql
}

// DeferredIdentity reports whether the database assigns the identifier, so
// dependants must wait for this action's statement to execute.
func (a *InsertAction) DeferredIdentity() bool {
	return !a.EarlyInsert && a.Persister.HasIdentity()
}

func (a *InsertAction) String() string {
	return a.Key.String()
}
