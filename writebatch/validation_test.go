package writebatch

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mevdschee/insertorder/action"
	"github.com/mevdschee/insertorder/parser"
	"github.com/mevdschee/insertorder/persister"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatal(err)
	}
	// one connection so every statement sees the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, ddl := range []string{
		`CREATE TABLE PERSON (id INTEGER PRIMARY KEY, name TEXT, DTYPE TEXT NOT NULL)`,
		`CREATE TABLE POST (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT)`,
		`CREATE TABLE COMMENT (id INTEGER PRIMARY KEY, post_id INTEGER NOT NULL REFERENCES POST(id))`,
	} {
		if _, err := db.Exec(ddl); err != nil {
			t.Fatal(err)
		}
	}
	return db
}

// TestValidation_BatchIntegrity ensures all members of a batch are written
func TestValidation_BatchIntegrity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	in := append(people(25), specialPerson(100), specialPerson(101))
	m := New(NewSQLAdapter(db, parser.PlaceholderQuestion), arenaOf(in...), Config{MaxBatchSize: 10})
	for _, a := range in {
		require.NoError(t, m.Enqueue(ctx, a))
	}
	require.NoError(t, m.Flush(ctx))
	assert.Equal(t, []int{10, 10, 5, 2}, sizes(m.Executed()))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM PERSON WHERE DTYPE = 'Person'").Scan(&count))
	assert.Equal(t, 25, count)
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM PERSON WHERE DTYPE = 'SpecialPerson'").Scan(&count))
	assert.Equal(t, 2, count)
}

// TestValidation_GeneratedKeyPropagation validates that identity values reach dependants
func TestValidation_GeneratedKeyPropagation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	comment := &persister.Persister{EntityName: "Comment", Table: "COMMENT"}
	p1, p2 := post("first"), post("second")
	c1 := action.New(comment, 1, []action.ColumnValue{{Name: "id", Value: 1}, {Name: "post_id", Value: action.Ref{Action: 1}}})
	c2 := action.New(comment, 2, []action.ColumnValue{{Name: "id", Value: 2}, {Name: "post_id", Value: action.Ref{Action: 1}}})
	arena := arenaOf(p1, p2, c1, c2)

	m := New(NewSQLAdapter(db, parser.PlaceholderQuestion), arena, Config{MaxBatchSize: 10})
	for _, a := range arena.Actions() {
		require.NoError(t, m.Enqueue(ctx, a))
	}
	require.NoError(t, m.Flush(ctx))
	assert.Equal(t, []int{1, 1, 2}, sizes(m.Executed()))

	id, ok := arena.Identifier(1)
	require.True(t, ok)

	var postID int64
	require.NoError(t, db.QueryRow("SELECT id FROM POST WHERE title = 'second'").Scan(&postID))
	assert.Equal(t, postID, id)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM COMMENT WHERE post_id = ?", postID).Scan(&count))
	assert.Equal(t, 2, count)
}

// TestValidation_ConstraintViolationPropagates checks database errors are returned unchanged
func TestValidation_ConstraintViolationPropagates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	comment := &persister.Persister{EntityName: "Comment", Table: "COMMENT"}
	orphan := action.New(comment, 1, []action.ColumnValue{{Name: "id", Value: 1}, {Name: "post_id", Value: 999}})

	m := New(NewSQLAdapter(db, parser.PlaceholderQuestion), arenaOf(orphan), DefaultConfig())
	require.NoError(t, m.Enqueue(ctx, orphan))
	err := m.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FOREIGN KEY")
}

// TestValidation_Transaction runs batches inside a transaction that is rolled back
func TestValidation_Transaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	in := people(3)
	m := New(NewSQLAdapter(tx, parser.PlaceholderQuestion), arenaOf(in...), DefaultConfig())
	for _, a := range in {
		require.NoError(t, m.Enqueue(ctx, a))
	}
	require.NoError(t, m.Flush(ctx))
	require.NoError(t, tx.Rollback())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM PERSON").Scan(&count))
	assert.Equal(t, 0, count)
}
