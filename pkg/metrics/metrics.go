// Package metrics exposes Prometheus counters and histograms for storage
// operations, fabric message traffic, and anti-entropy/DHT rounds, grounded
// on the corpus's per-subsystem Metrics struct pattern (e.g. its NLM
// adapter's Metrics type): a plain struct of vector metrics, a constructor
// that registers them against a Registerer, and nil-receiver methods so a
// caller that never wires metrics gets a safe no-op.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every metric this node exports, all under the fabricdb_
// prefix.
type Metrics struct {
	StorageOpsTotal     *prometheus.CounterVec
	StorageOpDuration    *prometheus.HistogramVec
	FabricMessagesTotal *prometheus.CounterVec
	SyncRoundsTotal     *prometheus.CounterVec
	SyncKeysSent        prometheus.Counter
	DHTProbesTotal      *prometheus.CounterVec
}

// New creates and registers fabricdb_ metrics against reg. Panics if
// registration fails, which only happens on a duplicate-name programming
// error at startup.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StorageOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fabricdb_storage_ops_total",
				Help: "Total storage operations by op and outcome.",
			},
			[]string{"op", "outcome"},
		),
		StorageOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fabricdb_storage_op_duration_seconds",
				Help:    "Storage operation latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		FabricMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fabricdb_fabric_messages_total",
				Help: "Total fabric messages by type and direction.",
			},
			[]string{"type", "direction"},
		),
		SyncRoundsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fabricdb_sync_rounds_total",
				Help: "Total anti-entropy rounds by outcome.",
			},
			[]string{"outcome"},
		),
		SyncKeysSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fabricdb_sync_keys_sent_total",
				Help: "Total keys streamed by the anti-entropy responder.",
			},
		),
		DHTProbesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fabricdb_dht_probes_total",
				Help: "Total DHT gossip probes by outcome.",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(
		m.StorageOpsTotal,
		m.StorageOpDuration,
		m.FabricMessagesTotal,
		m.SyncRoundsTotal,
		m.SyncKeysSent,
		m.DHTProbesTotal,
	)
	return m
}

// RecordStorageOp records one storage operation's outcome and latency.
func (m *Metrics) RecordStorageOp(op, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.StorageOpsTotal.WithLabelValues(op, outcome).Inc()
	m.StorageOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

// RecordFabricMessage records one fabric message sent or received.
func (m *Metrics) RecordFabricMessage(msgType, direction string) {
	if m == nil {
		return
	}
	m.FabricMessagesTotal.WithLabelValues(msgType, direction).Inc()
}

// RecordSyncRound records the outcome of one anti-entropy round and how
// many keys it streamed.
func (m *Metrics) RecordSyncRound(outcome string, keysSent int) {
	if m == nil {
		return
	}
	m.SyncRoundsTotal.WithLabelValues(outcome).Inc()
	m.SyncKeysSent.Add(float64(keysSent))
}

// RecordDHTProbe records the outcome of one gossip probe.
func (m *Metrics) RecordDHTProbe(outcome string) {
	if m == nil {
		return
	}
	m.DHTProbesTotal.WithLabelValues(outcome).Inc()
}

// Null returns nil, which every method above treats as a safe no-op.
func Null() *Metrics {
	return nil
}
