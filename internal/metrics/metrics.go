// Package metrics holds the Prometheus collectors for the expense store.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spese"

// ─── Repository ─────────────────────────────────────────────────────────────

// Mutations counts applied repository mutations by operation.
var Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "repository",
	Name:      "mutations_total",
	Help:      "Repository mutations applied, by operation (create, update, delete).",
}, []string{"operation"})

// Records tracks the size of the in-memory collection.
var Records = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "repository",
	Name:      "records",
	Help:      "Number of expense records currently held in memory.",
})

// Loads counts load attempts by outcome.
var Loads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "repository",
	Name:      "loads_total",
	Help:      "Initial loads by outcome (fresh, restored, decode_failed, read_failed).",
}, []string{"status"})

// ─── Persistence ────────────────────────────────────────────────────────────

// Writes counts snapshot writes by result.
var Writes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "persistence",
	Name:      "writes_total",
	Help:      "Snapshot writes attempted, by result (ok, error).",
}, []string{"result"})

// WriteDuration observes how long a snapshot write takes.
var WriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "persistence",
	Name:      "write_duration_seconds",
	Help:      "Latency of snapshot writes to the persistence adapter.",
	Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
})

// SnapshotBytes tracks the size of the last encoded snapshot.
var SnapshotBytes = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "persistence",
	Name:      "snapshot_bytes",
	Help:      "Size in bytes of the most recently encoded snapshot.",
})
