package flush

import (
	"time"

	"github.com/google/uuid"

	"github.com/mevdschee/insertorder/action"
	"github.com/mevdschee/insertorder/graph"
	"github.com/mevdschee/insertorder/writebatch"
)

// Plan is the execution order and batching of a flush that has not run
type Plan struct {
	Order        []int // arena indices in execution order
	Batches      []*writebatch.Batch
	Dependencies []graph.Edge // empty when ordering is disabled
}

// BatchReport describes one executed batch. Key is the hash of SQL and is
// equal for batches of the same statement across flushes.
type BatchReport struct {
	SQL  string
	Key  uint64
	Size int
}

// Report describes an executed flush
type Report struct {
	FlushID  uuid.UUID
	Batches  []BatchReport
	Keys     []action.EntityKey // entity keys in registration order, generated identifiers included
	Duration time.Duration
}

// Statements returns the number of inserts executed
func (r *Report) Statements() int {
	n := 0
	for _, b := range r.Batches {
		n += b.Size
	}
	return n
}

func (r *Report) addBatches(batches []*writebatch.Batch) {
	for _, b := range batches {
		r.Batches = append(r.Batches, BatchReport{SQL: b.SQL, Key: b.Key, Size: b.Size()})
	}
}
