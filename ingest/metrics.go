package ingest

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricRecords        = "records_total"
	MetricEntries        = "entries_total"
	MetricFailures       = "failures_total"
	MetricEncodeDuration = "encode_duration_seconds"
)

// Metrics holds the ingest collectors. A nil *Metrics records nothing.
type Metrics struct {
	records  *prometheus.CounterVec
	entries  *prometheus.CounterVec
	failures *prometheus.CounterVec
	encode   prometheus.Histogram
}

// NewMetrics creates the ingest collectors and registers them with reg.
// Collectors already registered with reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokey",
			Subsystem: "ingest",
			Name:      MetricRecords,
			Help:      "Records encoded, by index.",
		}, []string{"index"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokey",
			Subsystem: "ingest",
			Name:      MetricEntries,
			Help:      "Key-value entries written to the sink, by index.",
		}, []string{"index"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokey",
			Subsystem: "ingest",
			Name:      MetricFailures,
			Help:      "Failed records and sink writes, by stage.",
		}, []string{"stage"}),
		encode: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geokey",
			Subsystem: "ingest",
			Name:      MetricEncodeDuration,
			Help:      "Time to encode one record.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}

	var err error
	if m.records, err = register(reg, m.records); err != nil {
		return nil, err
	}
	if m.entries, err = register(reg, m.entries); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	if m.encode, err = register(reg, m.encode); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}

		return c, err
	}

	return c, nil
}

func (m *Metrics) recordEncoded(indexID string, seconds float64) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(indexID).Inc()
	m.encode.Observe(seconds)
}

func (m *Metrics) entriesWritten(indexID string, n int) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(indexID).Add(float64(n))
}

func (m *Metrics) failed(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}
