package writebatch

import "github.com/mevdschee/insertorder/action"

// Grouper cuts an ordered stream of inserts into batches. It never reorders:
// a batch is closed as soon as the statement changes or the size limit is
// reached.
type Grouper struct {
	max     int
	current *Batch
}

// NewGrouper creates a grouper for batches of at most max members
func NewGrouper(max int) *Grouper {
	if max < 1 {
		max = 1
	}
	return &Grouper{max: max}
}

// Add appends a to the open batch. When a cannot join, the open batch is
// closed and returned and a new batch is started with a.
//
// Inserts whose identifier is generated by the database always form a batch of
// their own, even after an insert of the same statement with a known
// identifier, so the key can be read back before dependants are bound.
func (g *Grouper) Add(a *action.InsertAction) (closed *Batch) {
	if g.current != nil && g.current.accepts(a) {
		g.current.Members = append(g.current.Members, a)
		return nil
	}
	closed = g.current
	limit := g.max
	if a.DeferredIdentity() {
		limit = 1
	}
	g.current = newBatch(a, limit)
	return closed
}

// Close closes and returns the open batch, or nil when none is open. The next
// Add starts a new batch.
func (g *Grouper) Close() *Batch {
	closed := g.current
	g.current = nil
	return closed
}

// Pending returns the number of members in the open batch
func (g *Grouper) Pending() int {
	if g.current == nil {
		return 0
	}
	return len(g.current.Members)
}

// Group splits sorted into batches of at most max members
func Group(sorted []*action.InsertAction, max int) []*Batch {
	g := NewGrouper(max)
	var batches []*Batch
	for _, a := range sorted {
		if closed := g.Add(a); closed != nil {
			batches = append(batches, closed)
		}
	}
	if last := g.Close(); last != nil {
		batches = append(batches, last)
	}
	return batches
}
