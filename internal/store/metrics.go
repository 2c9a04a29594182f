package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports partition record counts and backend call latency. A nil
// *Metrics records nothing.
type Metrics struct {
	records    *prometheus.GaugeVec
	opLatency  *prometheus.HistogramVec
	opFailures *prometheus.CounterVec
	fanout     *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. A nil reg gets a private
// registry so tests can build stores freely.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "workboard",
				Subsystem: "store",
				Name:      "partition_records",
				Help:      "Records held per partition table",
			},
			[]string{"collection", "table"},
		),
		opLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "workboard",
				Subsystem: "store",
				Name:      "op_latency_seconds",
				Help:      "Backend call latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"op"},
		),
		opFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "workboard",
				Subsystem: "store",
				Name:      "op_failures_total",
				Help:      "Backend calls that failed, by error class",
			},
			[]string{"op", "class"},
		),
		fanout: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "workboard",
				Subsystem: "store",
				Name:      "scatter_partitions",
				Help:      "Partitions touched by one scatter-gather query",
				Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"query"},
		),
	}

	reg.MustRegister(m.records, m.opLatency, m.opFailures, m.fanout)
	return m
}

func (m *Metrics) setRecords(collection, table string, n int64) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(collection, table).Set(float64(n))
}

func (m *Metrics) observeOp(op string, d time.Duration, class string) {
	if m == nil {
		return
	}
	m.opLatency.WithLabelValues(op).Observe(d.Seconds())
	if class != "" {
		m.opFailures.WithLabelValues(op, class).Inc()
	}
}

func (m *Metrics) observeFanout(query string, partitions int) {
	if m == nil {
		return
	}
	m.fanout.WithLabelValues(query).Observe(float64(partitions))
}
