// Package flush turns the pending inserts of a unit of work into ordered
// statement batches and executes them.
//
// A flush runs in three steps on a single goroutine: the dependency graph of
// the pending inserts is built, the graph is sorted, and the sorted inserts are
// cut into batches that are executed through a writebatch.Adapter as soon as
// they close. With order_inserts disabled the first two steps are skipped and
// inserts run in registration order.
package flush

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mevdschee/insertorder/action"
	"github.com/mevdschee/insertorder/config"
	"github.com/mevdschee/insertorder/graph"
	"github.com/mevdschee/insertorder/metrics"
	"github.com/mevdschee/insertorder/writebatch"
)

// Queue collects the pending inserts of one unit of work. It is not safe for
// concurrent use.
type Queue struct {
	config  config.BatchConfig
	adapter writebatch.Adapter
	arena   *action.Arena
}

// New creates an empty queue executing through adapter
func New(cfg config.BatchConfig, adapter writebatch.Adapter) *Queue {
	if cfg.StatementBatchSize < 1 {
		cfg.StatementBatchSize = 1
	}
	return &Queue{
		config:  cfg,
		adapter: adapter,
		arena:   action.NewArena(),
	}
}

// Add registers a pending insert and returns its index, which other inserts
// of the same flush use in links and Ref column values
func (q *Queue) Add(a *action.InsertAction) int {
	return q.arena.Add(a)
}

// Len returns the number of pending inserts
func (q *Queue) Len() int {
	return q.arena.Len()
}

// Clear drops all pending inserts without executing them
func (q *Queue) Clear() {
	q.arena = action.NewArena()
}

// Plan computes the execution order and batches of the pending inserts
// without executing anything
func (q *Queue) Plan() (*Plan, error) {
	order, g, err := orderOf(q.arena, q.config)
	if err != nil {
		return nil, err
	}
	sorted := make([]*action.InsertAction, len(order))
	for i, idx := range order {
		sorted[i] = q.arena.At(idx)
	}
	plan := &Plan{
		Order:   order,
		Batches: writebatch.Group(sorted, q.config.StatementBatchSize),
	}
	if g != nil {
		plan.Dependencies = g.Edges()
	}
	return plan, nil
}

// Flush orders, batches and executes all pending inserts. The pending inserts
// are consumed whether the flush succeeds or not; on error the caller is
// expected to roll back its transaction.
func (q *Queue) Flush(ctx context.Context) (*Report, error) {
	start := time.Now()
	flushID := uuid.Must(uuid.NewV7())
	arena := q.arena
	q.arena = action.NewArena()

	report, err := q.flush(ctx, flushID, arena)
	metrics.FlushLatency.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, graph.ErrCircularDependency):
		metrics.FlushTotal.WithLabelValues("cycle").Inc()
		metrics.CircularDependencies.Inc()
		log.Printf("[Flush] %s: %v", flushID, err)
		return nil, err
	case err != nil:
		metrics.FlushTotal.WithLabelValues("error").Inc()
		log.Printf("[Flush] %s failed after %d inserts: %v", flushID, report.Statements(), err)
		return nil, err
	}

	metrics.FlushTotal.WithLabelValues("ok").Inc()
	report.Duration = time.Since(start)
	if q.config.LogFlushes {
		log.Printf("[Flush] %s: %d inserts in %d batches (%s)",
			flushID, report.Statements(), len(report.Batches), report.Duration)
	}
	return report, nil
}

func (q *Queue) flush(ctx context.Context, flushID uuid.UUID, arena *action.Arena) (*Report, error) {
	report := &Report{FlushID: flushID}

	order, _, err := orderOf(arena, q.config)
	if err != nil {
		return report, err
	}

	m := writebatch.New(q.adapter, arena, writebatch.Config{MaxBatchSize: q.config.StatementBatchSize})
	defer m.Close()

	for _, idx := range order {
		if err := m.Enqueue(ctx, arena.At(idx)); err != nil {
			report.addBatches(m.Executed())
			return report, err
		}
	}
	if err := m.Flush(ctx); err != nil {
		report.addBatches(m.Executed())
		return report, err
	}

	report.addBatches(m.Executed())
	report.Keys = make([]action.EntityKey, arena.Len())
	for i, a := range arena.Actions() {
		report.Keys[i] = a.Key
	}
	return report, nil
}

// orderOf returns the execution order of the actions in arena and the
// dependency graph it was sorted by, nil when ordering is disabled
func orderOf(arena *action.Arena, cfg config.BatchConfig) ([]int, *graph.Graph, error) {
	if !cfg.OrderInserts {
		order := make([]int, arena.Len())
		for i := range order {
			order[i] = i
		}
		return order, nil, nil
	}

	g, err := graph.Build(arena)
	if err != nil {
		return nil, nil, err
	}
	order, err := graph.Sort(g, cfg.TieBreak)
	return order, g, err
}
