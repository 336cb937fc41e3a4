package ingest

import (
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/geokey/internal/options"
)

const (
	// DefaultBatchSize is the default number of entries per sink write.
	DefaultBatchSize = 1024
)

type config struct {
	concurrency int
	batchSize   int
	logger      *Logger
	registerer  prometheus.Registerer
}

func defaultConfig() config {
	return config{
		concurrency: runtime.GOMAXPROCS(0),
		batchSize:   DefaultBatchSize,
		logger:      NoopLogger(),
	}
}

// Option configures an Ingester.
type Option = options.Option[*config]

// WithConcurrency limits the number of records encoded in parallel.
func WithConcurrency(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		c.concurrency = n

		return nil
	})
}

// WithBatchSize sets the largest number of entries handed to one sink write.
func WithBatchSize(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		c.batchSize = n

		return nil
	})
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *Logger) Option {
	return options.NoError(func(c *config) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithMetrics registers ingest metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return options.NoError(func(c *config) {
		c.registerer = reg
	})
}
