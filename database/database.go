// Package database opens the connection the command line tool runs
// scenarios on.
//
// The package wraps database/sql and registers the sqlite3, mysql and
// postgres drivers. Each connection knows the placeholder style of its
// driver, so statement templates written with ? can be rebound for
// PostgreSQL.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	tx, err := db.BeginTx(ctx, nil)
//	adapter := writebatch.NewSQLAdapter(tx, db.Style())
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mevdschee/insertorder/config"
	"github.com/mevdschee/insertorder/parser"
)

// PingTimeout bounds the connection check done by Open
const PingTimeout = 2 * time.Second

// DB wraps sql.DB with the placeholder style of its driver
type DB struct {
	*sql.DB
	driver string
}

// Open opens and pings the configured database
func Open(cfg config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite3" {
		// in-memory databases exist per connection
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	log.Printf("[Database] Connected using %s", cfg.Driver)
	return &DB{DB: db, driver: cfg.Driver}, nil
}

// Wrap wraps an existing *sql.DB opened with driver
func Wrap(db *sql.DB, driver string) *DB {
	return &DB{DB: db, driver: driver}
}

// Driver returns the driver name
func (db *DB) Driver() string {
	return db.driver
}

// Style returns the placeholder style of the driver
func (db *DB) Style() parser.PlaceholderStyle {
	return parser.StyleForDriver(db.driver)
}

// Execer is implemented by *sql.DB, *sql.Tx and *sql.Conn
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ApplySchema executes DDL statements in order, stopping at the first failure
func ApplySchema(ctx context.Context, db Execer, statements []string) error {
	for i, ddl := range statements {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
