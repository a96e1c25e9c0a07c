package writebatch

import (
	"context"
	"sync"
)

// RecordedBatch is one executeBatch call seen by a Recorder
type RecordedBatch struct {
	SQL          string
	GeneratedKey string
	Params       [][]any
}

// Recorder is an Adapter that records statements instead of executing them.
// Generated keys are handed out from a counter starting at 1.
type Recorder struct {
	mu       sync.Mutex
	batches  []RecordedBatch
	prepared int
	nextKey  int64
	failOn   map[string]error
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{failOn: make(map[string]error)}
}

// FailOn makes executeBatch of query return err
func (r *Recorder) FailOn(query string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn[query] = err
}

// Prepare implements Adapter
func (r *Recorder) Prepare(ctx context.Context, query, generatedKey string) (Statement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prepared++
	return &recordedStatement{recorder: r, sql: query, key: generatedKey}, nil
}

// Batches returns the executed batches in order
func (r *Recorder) Batches() []RecordedBatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedBatch, len(r.batches))
	copy(out, r.batches)
	return out
}

// Prepared returns the number of prepared statements
func (r *Recorder) Prepared() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prepared
}

// Clear forgets all recorded batches
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
	r.prepared = 0
}

type recordedStatement struct {
	recorder *Recorder
	sql      string
	key      string
	params   [][]any
}

func (s *recordedStatement) AddBatch(args ...any) error {
	s.params = append(s.params, args)
	return nil
}

func (s *recordedStatement) ExecuteBatch(ctx context.Context) ([]int64, error) {
	r := s.recorder
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failOn[s.sql]; err != nil {
		return nil, err
	}
	r.batches = append(r.batches, RecordedBatch{SQL: s.sql, GeneratedKey: s.key, Params: s.params})

	var keys []int64
	if s.key != "" {
		for range s.params {
			r.nextKey++
			keys = append(keys, r.nextKey)
		}
	}
	s.params = nil
	return keys, nil
}

func (s *recordedStatement) Close() error {
	return nil
}
