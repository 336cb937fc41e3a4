package ingest

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/geokey/field"
	"github.com/arloliu/geokey/index"
	"github.com/arloliu/geokey/internal/options"
)

// Input is one record addressed to an index.
type Input struct {
	IndexID string
	Record  field.Record
	// Visibility is an optional label applied to the whole record.
	Visibility string
}

// Sink is the storage collaborator receiving encoded entries.
type Sink interface {
	Write(ctx context.Context, indexID string, entries []index.Entry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, indexID string, entries []index.Entry) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, indexID string, entries []index.Entry) error {
	return f(ctx, indexID, entries)
}

// Stats summarizes an ingest run.
type Stats struct {
	Records int
	Entries int
	Batches int
}

func (s *Stats) add(o Stats) {
	s.Records += o.Records
	s.Entries += o.Entries
	s.Batches += o.Batches
}

// Ingester encodes records with the adapters of a Registry and writes the
// entries to a Sink. It is safe for concurrent use when the sink is.
type Ingester struct {
	registry *Registry
	sink     Sink
	cfg      config
	metrics  *Metrics
}

// New creates an ingester.
func New(registry *Registry, sink Sink, opts ...Option) (*Ingester, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	in := &Ingester{registry: registry, sink: sink, cfg: cfg}
	if cfg.registerer != nil {
		m, err := NewMetrics(cfg.registerer)
		if err != nil {
			return nil, err
		}
		in.metrics = m
	}

	return in, nil
}

type encoded struct {
	indexID string
	entries []index.Entry
}

// Ingest encodes inputs in parallel and writes their entries in input order.
// Consecutive entries of the same index are grouped into batches of at most
// the configured batch size.
//
// The first failing record or sink write aborts the run; entries of earlier
// batches have already been written. Cancelling ctx aborts the run as well.
func (in *Ingester) Ingest(ctx context.Context, inputs []Input) (Stats, error) {
	results, err := in.encodeAll(ctx, inputs)
	if err != nil {
		in.cfg.logger.LogIngest(ctx, Stats{}, err)
		return Stats{}, err
	}

	stats := Stats{Records: len(inputs)}
	err = in.flush(ctx, results, &stats)
	in.cfg.logger.LogIngest(ctx, stats, err)

	return stats, err
}

func (in *Ingester) encodeAll(ctx context.Context, inputs []Input) ([]encoded, error) {
	results := make([]encoded, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.cfg.concurrency)
	for i, input := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			a, err := in.registry.Lookup(input.IndexID)
			if err != nil {
				in.metrics.failed("route")
				in.cfg.logger.LogRecordFailure(gctx, i, input.IndexID, err)

				return fmt.Errorf("input %d: %w", i, err)
			}

			began := time.Now()
			entries, err := a.Encode(input.Record, input.Visibility)
			if err != nil {
				in.metrics.failed("encode")
				in.cfg.logger.LogRecordFailure(gctx, i, input.IndexID, err)

				return fmt.Errorf("input %d (index %s): %w", i, input.IndexID, err)
			}
			in.metrics.recordEncoded(input.IndexID, time.Since(began).Seconds())
			results[i] = encoded{indexID: input.IndexID, entries: entries}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (in *Ingester) flush(ctx context.Context, results []encoded, stats *Stats) error {
	var (
		batch   []index.Entry
		batchID string
	)

	write := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		err := in.sink.Write(ctx, batchID, batch)
		in.cfg.logger.LogBatch(ctx, batchID, len(batch), err)
		if err != nil {
			in.metrics.failed("sink")
			return fmt.Errorf("write %d entries to index %s: %w", len(batch), batchID, err)
		}
		in.metrics.entriesWritten(batchID, len(batch))
		stats.Entries += len(batch)
		stats.Batches++
		batch = nil

		return nil
	}

	for _, r := range results {
		if r.indexID != batchID {
			if err := write(); err != nil {
				return err
			}
			batchID = r.indexID
		}
		for _, e := range r.entries {
			batch = append(batch, e)
			if len(batch) == in.cfg.batchSize {
				if err := write(); err != nil {
					return err
				}
			}
		}
	}

	return write()
}

// Run ingests inputs from a channel until it is closed or ctx is cancelled.
// Inputs are processed in chunks of the configured batch size.
func (in *Ingester) Run(ctx context.Context, inputs <-chan Input) (Stats, error) {
	var total Stats
	chunk := make([]Input, 0, in.cfg.batchSize)

	process := func() error {
		if len(chunk) == 0 {
			return nil
		}
		stats, err := in.Ingest(ctx, chunk)
		total.add(stats)
		chunk = chunk[:0]

		return err
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case input, ok := <-inputs:
			if !ok {
				return total, process()
			}
			chunk = append(chunk, input)
			if len(chunk) == cap(chunk) {
				if err := process(); err != nil {
					return total, err
				}
			}
		}
	}
}
