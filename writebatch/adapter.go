package writebatch

import (
	"context"
	"database/sql"

	"github.com/mevdschee/insertorder/parser"
)

// Adapter prepares batch statements on a database connection
type Adapter interface {
	// Prepare prepares query. When generatedKey is not empty the statement
	// must report the value the database assigned to that column for every
	// parameter set.
	Prepare(ctx context.Context, query, generatedKey string) (Statement, error)
}

// Statement is a prepared statement collecting parameter sets
type Statement interface {
	AddBatch(args ...any) error
	// ExecuteBatch runs all collected parameter sets and returns the generated
	// keys in member order (nil when no key was requested)
	ExecuteBatch(ctx context.Context) ([]int64, error)
	Close() error
}

// Preparer is implemented by *sql.DB, *sql.Tx and *sql.Conn
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// SQLAdapter executes batches through database/sql
type SQLAdapter struct {
	db    Preparer
	style parser.PlaceholderStyle
}

// NewSQLAdapter creates an adapter for db using the placeholder style of its driver
func NewSQLAdapter(db Preparer, style parser.PlaceholderStyle) *SQLAdapter {
	return &SQLAdapter{db: db, style: style}
}

// Prepare implements Adapter
func (a *SQLAdapter) Prepare(ctx context.Context, query, generatedKey string) (Statement, error) {
	returning := false
	if a.style == parser.PlaceholderDollar {
		query = parser.Rebind(query, a.style)
		if generatedKey != "" {
			// lib/pq has no LastInsertId
			query += " returning " + generatedKey
			returning = true
		}
	}
	stmt, err := a.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &sqlStatement{
		stmt:      stmt,
		wantKeys:  generatedKey != "",
		returning: returning,
	}, nil
}

type sqlStatement struct {
	stmt      *sql.Stmt
	wantKeys  bool
	returning bool
	params    [][]any
}

func (s *sqlStatement) AddBatch(args ...any) error {
	s.params = append(s.params, args)
	return nil
}

func (s *sqlStatement) ExecuteBatch(ctx context.Context) ([]int64, error) {
	params := s.params
	s.params = nil

	var keys []int64
	if s.wantKeys {
		keys = make([]int64, 0, len(params))
	}
	for _, args := range params {
		if s.returning {
			var id int64
			if err := s.stmt.QueryRowContext(ctx, args...).Scan(&id); err != nil {
				return nil, err
			}
			keys = append(keys, id)
			continue
		}

		result, err := s.stmt.ExecContext(ctx, args...)
		if err != nil {
			return nil, err
		}
		if s.wantKeys {
			id, err := result.LastInsertId()
			if err != nil {
				return nil, err
			}
			keys = append(keys, id)
		}
	}
	return keys, nil
}

func (s *sqlStatement) Close() error {
	return s.stmt.Close()
}
