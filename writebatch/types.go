package writebatch

import (
	"github.com/cespare/xxhash/v2"

	"github.com/mevdschee/insertorder/action"
)

// Batch is a run of inserts sharing one statement template, executed with one
// addBatch call per member and a single executeBatch
type Batch struct {
	SQL     string
	Key     uint64 // xxhash of SQL
	Members []*action.InsertAction

	limit int
}

func newBatch(a *action.InsertAction, limit int) *Batch {
	sql := a.SQL()
	b := &Batch{
		SQL:     sql,
		Key:     xxhash.Sum64String(sql),
		Members: make([]*action.InsertAction, 0, min(limit, 16)),
		limit:   limit,
	}
	b.Members = append(b.Members, a)
	return b
}

// Size returns the number of members
func (b *Batch) Size() int {
	return len(b.Members)
}

// accepts reports whether a can join the batch. An insert whose identifier
// is generated by the database never joins an open batch.
func (b *Batch) accepts(a *action.InsertAction) bool {
	return len(b.Members) < b.limit && !a.DeferredIdentity() && a.SQL() == b.SQL
}

// Config holds configuration for the write batch manager
type Config struct {
	MaxBatchSize int // Maximum number of statements per batch (statement_batch_size)
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxBatchSize: 50,
	}
}
