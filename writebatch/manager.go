package writebatch

import (
	"context"

	"github.com/mevdschee/insertorder/action"
)

// Manager feeds an ordered stream of inserts into batches and executes every
// batch as soon as it is closed. It is used by a single flush and is not safe
// for concurrent use.
type Manager struct {
	config   Config
	adapter  Adapter
	arena    *action.Arena
	grouper  *Grouper
	executed []*Batch
	failed   error
	closed   bool
}

// New creates a new write batch manager for the actions of arena
func New(adapter Adapter, arena *action.Arena, config Config) *Manager {
	return &Manager{
		config:  config,
		adapter: adapter,
		arena:   arena,
		grouper: NewGrouper(config.MaxBatchSize),
	}
}

// Enqueue adds a to the open batch. A batch closed by a is executed before
// Enqueue returns.
func (m *Manager) Enqueue(ctx context.Context, a *action.InsertAction) error {
	if err := m.usable(); err != nil {
		return err
	}
	if b := m.grouper.Add(a); b != nil {
		return m.execute(ctx, b)
	}
	return nil
}

// Flush executes the open batch, however small, and starts a fresh one
func (m *Manager) Flush(ctx context.Context) error {
	if err := m.usable(); err != nil {
		return err
	}
	if b := m.grouper.Close(); b != nil {
		return m.execute(ctx, b)
	}
	return nil
}

// Pending returns the number of inserts waiting in the open batch
func (m *Manager) Pending() int {
	return m.grouper.Pending()
}

// Executed returns the batches executed so far, in execution order
func (m *Manager) Executed() []*Batch {
	return m.executed
}

// Close discards the open batch without executing it
func (m *Manager) Close() error {
	m.closed = true
	m.grouper.Close()
	return nil
}

func (m *Manager) usable() error {
	if m.closed {
		return ErrManagerClosed
	}
	return m.failed
}

func (m *Manager) execute(ctx context.Context, b *Batch) error {
	if err := m.executeBatch(ctx, b); err != nil {
		m.failed = err
		m.grouper.Close()
		return err
	}
	m.executed = append(m.executed, b)
	return nil
}
