package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FlushTotal counts flushes by outcome (ok, cycle, error)
	FlushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insertorder_flush_total",
			Help: "Total number of flushes processed",
		},
		[]string{"outcome"},
	)

	// FlushLatency tracks the duration of a flush, ordering and execution included
	FlushLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insertorder_flush_latency_seconds",
			Help:    "Flush latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BatchesTotal counts executed statement batches by table
	BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insertorder_batches_total",
			Help: "Total number of executed statement batches",
		},
		[]string{"table"},
	)

	// AddBatchTotal counts bound parameter sets by table
	AddBatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insertorder_add_batch_total",
			Help: "Total number of parameter sets added to batches",
		},
		[]string{"table"},
	)

	// BatchSize tracks the number of members per executed batch
	BatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insertorder_batch_size",
			Help:    "Number of statements per executed batch",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250, 500, 1000},
		},
		[]string{"table"},
	)

	// BatchLatency tracks execution time per batch
	BatchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insertorder_batch_latency_seconds",
			Help:    "Batch execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table"},
	)

	// CircularDependencies counts flushes rejected because of a foreign key cycle
	CircularDependencies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insertorder_circular_dependencies_total",
			Help: "Total number of flushes rejected by a circular dependency",
		},
	)

	once sync.Once
)

// Init registers all metrics with Prometheus
func Init() {
	once.Do(func() {
		prometheus.MustRegister(FlushTotal)
		prometheus.MustRegister(FlushLatency)
		prometheus.MustRegister(BatchesTotal)
		prometheus.MustRegister(AddBatchTotal)
		prometheus.MustRegister(BatchSize)
		prometheus.MustRegister(BatchLatency)
		prometheus.MustRegister(CircularDependencies)
	})
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
