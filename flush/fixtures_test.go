package flush

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/mevdschee/insertorder/action"
	"github.com/mevdschee/insertorder/config"
	"github.com/mevdschee/insertorder/graph"
	"github.com/mevdschee/insertorder/persister"
)

func owning(column string) persister.AssociationDescriptor {
	return persister.OwningForeignKey{Column: column}
}

func batchConfig(size int) config.BatchConfig {
	return config.BatchConfig{
		OrderInserts:       true,
		StatementBatchSize: size,
		TieBreak:           graph.TieBreakShape,
	}
}

// mappings registers every entity used by the flush tests
func mappings(t *testing.T) *persister.Registry {
	t.Helper()
	r, err := persister.NewRegistry()
	require.NoError(t, err)
	t.Cleanup(r.Close)

	for _, p := range []*persister.Persister{
		{EntityName: "Task", Table: "TASK"},
		{
			EntityName:   "TaskCategory",
			Table:        "TASK_CATEGORY",
			Associations: map[string]persister.AssociationDescriptor{"task": owning("task_id")},
		},
		{EntityName: "User", Table: "USERS"},
		{EntityName: "Group", Table: "GROUPS"},
		{
			EntityName: "Membership",
			Table:      "MEMBERSHIP",
			Associations: map[string]persister.AssociationDescriptor{
				"user":  owning("user_id"),
				"group": owning("group_id"),
			},
		},
		{
			EntityName:    "Person",
			Table:         "PERSON",
			Discriminator: &persister.Discriminator{Column: "DTYPE", Value: "Person"},
		},
		{
			EntityName:    "SpecialPerson",
			Table:         "PERSON",
			Discriminator: &persister.Discriminator{Column: "DTYPE", Value: "SpecialPerson"},
		},
		{
			EntityName: "Wrapper",
			Table:      "WRAPPER",
			Associations: map[string]persister.AssociationDescriptor{
				"condition":   owning("condition_id"),
				"expressions": persister.InverseSide{MappedBy: "WRAPPER_EXPRESSIONS"},
			},
		},
		{
			EntityName: "WrapperExpression",
			Table:      "WRAPPER_EXPRESSIONS",
			Associations: map[string]persister.AssociationDescriptor{
				"wrapper":    owning("wrapper_id"),
				"expression": owning("expression_id"),
			},
		},
		{
			EntityName:    "CompoundCondition",
			Table:         "CONDITIONS",
			Discriminator: &persister.Discriminator{Column: "DTYPE", Value: "Compound"},
			Associations: map[string]persister.AssociationDescriptor{
				"first":  owning("first_id"),
				"second": owning("second_id"),
			},
		},
		{
			EntityName:    "SimpleCondition",
			Table:         "CONDITIONS",
			Discriminator: &persister.Discriminator{Column: "DTYPE", Value: "Simple"},
			Associations: map[string]persister.AssociationDescriptor{
				"expression": persister.EmbeddedIndirect{Path: "operand", Inner: owning("expression_id")},
			},
		},
		{EntityName: "ConstantExpression", Table: "EXPRESSION"},
		{EntityName: "Post", Table: "POST", IdentityColumn: "id"},
		{
			EntityName:   "Comment",
			Table:        "COMMENT",
			Associations: map[string]persister.AssociationDescriptor{"post": owning("post_id")},
		},
		{
			EntityName:   "Husband",
			Table:        "HUSBAND",
			Associations: map[string]persister.AssociationDescriptor{"wife": owning("wife_id")},
		},
		{
			EntityName:   "Wife",
			Table:        "WIFE",
			Associations: map[string]persister.AssociationDescriptor{"husband": owning("husband_id")},
		},
	} {
		require.NoError(t, r.Register(p))
	}
	return r
}

type builder struct {
	t        *testing.T
	registry *persister.Registry
	queue    *Queue
}

func (b *builder) insert(entity string, id any, columns []action.ColumnValue, links ...action.Link) int {
	b.t.Helper()
	p, ok := b.registry.Lookup(entity)
	require.True(b.t, ok, "unknown entity %s", entity)
	return b.queue.Add(action.New(p, id, columns, links...))
}

func col(name string, value any) action.ColumnValue {
	return action.ColumnValue{Name: name, Value: value}
}

func link(property string, target int) action.Link {
	return action.Link{Property: property, Target: target}
}

// persistTask registers a task with one element collection entry
func (b *builder) persistTask(id int, category string) {
	task := b.insert("Task", id, []action.ColumnValue{col("id", id), col("name", "task")})
	b.insert("TaskCategory", nil, []action.ColumnValue{col("task_id", id), col("category", category)}, link("task", task))
}

// persistMembership registers a user, a group and the membership joining them
func (b *builder) persistMembership(id int) {
	u := b.insert("User", id, []action.ColumnValue{col("id", id), col("name", "user")})
	g := b.insert("Group", id, []action.ColumnValue{col("id", id), col("name", "group")})
	b.insert("Membership", id, []action.ColumnValue{col("id", id), col("user_id", id), col("group_id", id)},
		link("user", u), link("group", g))
}

// persistWrapper registers the cascade of persisting one wrapper whose
// condition tree uses the same expressions as its expression collection
func (b *builder) persistWrapper(base int) {
	wrapper, compound := base, base+1
	simple1, simple2 := base+2, base+3
	expr1, expr2 := base+4, base+5

	w := b.queue.Len()
	b.insert("Wrapper", wrapper, []action.ColumnValue{col("id", wrapper), col("condition_id", compound)},
		link("condition", w+1), link("expressions", w+4), link("expressions", w+5))
	b.insert("CompoundCondition", compound, []action.ColumnValue{col("id", compound), col("first_id", simple1), col("second_id", simple2)},
		link("first", w+2), link("second", w+3))
	b.insert("SimpleCondition", simple1, []action.ColumnValue{col("id", simple1), col("expression_id", expr1)},
		link("expression", w+4))
	b.insert("SimpleCondition", simple2, []action.ColumnValue{col("id", simple2), col("expression_id", expr2)},
		link("expression", w+5))
	e1 := b.insert("ConstantExpression", expr1, []action.ColumnValue{col("id", expr1), col("value", 1)})
	e2 := b.insert("ConstantExpression", expr2, []action.ColumnValue{col("id", expr2), col("value", 2)})
	b.insert("WrapperExpression", nil, []action.ColumnValue{col("wrapper_id", wrapper), col("expression_id", expr1)},
		link("wrapper", w), link("expression", e1))
	b.insert("WrapperExpression", nil, []action.ColumnValue{col("wrapper_id", wrapper), col("expression_id", expr2)},
		link("wrapper", w), link("expression", e2))
}

var schema = []string{
	`CREATE TABLE TASK (id INTEGER PRIMARY KEY, name TEXT)`,
	`CREATE TABLE TASK_CATEGORY (task_id INTEGER NOT NULL REFERENCES TASK(id), category TEXT)`,
	`CREATE TABLE USERS (id INTEGER PRIMARY KEY, name TEXT)`,
	`CREATE TABLE GROUPS (id INTEGER PRIMARY KEY, name TEXT)`,
	`CREATE TABLE MEMBERSHIP (id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES USERS(id),
		group_id INTEGER NOT NULL REFERENCES GROUPS(id))`,
	`CREATE TABLE PERSON (id INTEGER PRIMARY KEY, name TEXT, DTYPE TEXT NOT NULL)`,
	`CREATE TABLE EXPRESSION (id INTEGER PRIMARY KEY, value INTEGER)`,
	`CREATE TABLE CONDITIONS (id INTEGER PRIMARY KEY, DTYPE TEXT NOT NULL,
		first_id INTEGER REFERENCES CONDITIONS(id),
		second_id INTEGER REFERENCES CONDITIONS(id),
		expression_id INTEGER REFERENCES EXPRESSION(id))`,
	`CREATE TABLE WRAPPER (id INTEGER PRIMARY KEY, condition_id INTEGER NOT NULL REFERENCES CONDITIONS(id))`,
	`CREATE TABLE WRAPPER_EXPRESSIONS (
		wrapper_id INTEGER NOT NULL REFERENCES WRAPPER(id),
		expression_id INTEGER NOT NULL REFERENCES EXPRESSION(id))`,
	`CREATE TABLE POST (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT)`,
	`CREATE TABLE COMMENT (id INTEGER PRIMARY KEY, post_id INTEGER NOT NULL REFERENCES POST(id))`,
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, ddl := range schema {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	return db
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
