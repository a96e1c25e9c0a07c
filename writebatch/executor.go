package writebatch

import (
	"context"
	"fmt"
	"time"

	"github.com/mevdschee/insertorder/metrics"
	"github.com/mevdschee/insertorder/parser"
)

// executeBatch binds every member, adds it to one prepared statement and
// executes the statement once. Failures are returned as they are; nothing is
// retried.
func (m *Manager) executeBatch(ctx context.Context, b *Batch) error {
	batchSize := len(b.Members)
	if batchSize == 0 {
		return ErrEmptyBatch
	}

	query := parser.Parse(b.SQL)
	if !query.IsBatchable() {
		return fmt.Errorf("%w: %s", ErrNotBatchable, truncateQuery(b.SQL, 50))
	}

	generatedKey := ""
	if b.Members[0].DeferredIdentity() {
		generatedKey = b.Members[0].Persister.IdentityColumn
	}

	batchStart := time.Now()
	stmt, err := m.adapter.Prepare(ctx, b.SQL, generatedKey)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", truncateQuery(b.SQL, 50), err)
	}
	defer stmt.Close()

	for _, a := range b.Members {
		idx := a.Index()
		if !m.arena.Contains(idx) || m.arena.At(idx) != a {
			return fmt.Errorf("%w: %s", ErrUnknownAction, a)
		}
		args, err := m.arena.Bind(idx)
		if err != nil {
			return err
		}
		if len(args) != query.Placeholders {
			return fmt.Errorf("%w: %s binds %d values to %d placeholders", ErrParameterCount, a, len(args), query.Placeholders)
		}
		if err := stmt.AddBatch(args...); err != nil {
			return fmt.Errorf("add batch %s: %w", truncateQuery(b.SQL, 50), err)
		}
	}

	keys, err := stmt.ExecuteBatch(ctx)
	if err != nil {
		return fmt.Errorf("execute batch %s: %w", truncateQuery(b.SQL, 50), err)
	}

	if generatedKey != "" {
		if len(keys) < batchSize {
			return fmt.Errorf("%w: got %d for %d rows", ErrGeneratedKeys, len(keys), batchSize)
		}
		for i, a := range b.Members {
			if !a.DeferredIdentity() {
				continue
			}
			if err := m.arena.ResolveIdentifier(a.Index(), keys[i]); err != nil {
				return err
			}
		}
	}

	// Record metrics
	table := tableLabel(query)
	metrics.BatchesTotal.WithLabelValues(table).Inc()
	metrics.AddBatchTotal.WithLabelValues(table).Add(float64(batchSize))
	metrics.BatchSize.WithLabelValues(table).Observe(float64(batchSize))
	metrics.BatchLatency.WithLabelValues(table).Observe(time.Since(batchStart).Seconds())

	return nil
}

// tableLabel extracts the target table of an insert for use as a metric label
func tableLabel(query *parser.ParsedQuery) string {
	if query.Table != "" {
		return query.Table
	}
	return "unknown"
}

// truncateQuery truncates a query for use in error messages
func truncateQuery(query string, maxLen int) string {
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen] + "..."
}
