package cmd

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/arloliu/geokey/adapter"
	"github.com/arloliu/geokey/field"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/index"
	"github.com/arloliu/geokey/ingest"
)

type encodeFlags struct {
	timeRanges  []string
	visibility  string
	compression string
	batchSize   int
	concurrency int
}

type entryLine struct {
	Index string `json:"index"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func newEncodeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var f encodeFlags
	ccmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode JSON records read from stdin into key-value entries.",
		Long: `
Read one JSON object per line from stdin and write one JSON line per entry
with the hex encoded key and value.

Every dimension reads the record attribute of the same name. Dimensions named
with --time-range read a range from the attributes <name>_start and <name>_end
in milliseconds since the Unix epoch.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, stderr)
			if err != nil {
				return err
			}

			var opts []index.Option
			if f.compression != "" {
				c, ok := format.ParseCompressionType(f.compression)
				if !ok {
					return fmt.Errorf("unknown compression %q", f.compression)
				}
				opts = append(opts, index.WithValueCompression(c))
			}
			ix, err := loadIndex(cmd, opts...)
			if err != nil {
				return err
			}

			a, err := adapter.New(ix, dimensionBindings(ix, f.timeRanges))
			if err != nil {
				return err
			}

			return encodeRecords(cmd.Context(), a, stdin, stdout, logger, f)
		},
	}

	flags := ccmd.Flags()
	flags.StringSliceVar(&f.timeRanges, "time-range", nil, "dimensions read from <name>_start and <name>_end")
	flags.StringVar(&f.visibility, "visibility", "", "visibility label applied to every record")
	flags.StringVar(&f.compression, "compression", "", "override the value compression of the descriptor")
	flags.IntVar(&f.batchSize, "batch-size", ingest.DefaultBatchSize, "entries per write")
	flags.IntVar(&f.concurrency, "concurrency", 0, "parallel encoders, 0 for GOMAXPROCS")

	return ccmd
}

func dimensionBindings(ix *index.Index, timeRanges []string) []adapter.Binding {
	names := ix.DimensionNames()
	bindings := make([]adapter.Binding, 0, len(names))
	for _, name := range names {
		var h field.Handler
		if slices.Contains(timeRanges, name) {
			h = field.NewTimeRangeHandler(
				field.TimeAttribute{Name: name + "_start", Binding: field.BindingFloatMillis},
				field.TimeAttribute{Name: name + "_end", Binding: field.BindingFloatMillis},
				nil,
			)
		} else {
			h = field.NewNumericHandler(name, nil)
		}
		bindings = append(bindings, adapter.Binding{Dimension: name, Handler: h})
	}

	return bindings
}

func encodeRecords(ctx context.Context, a *adapter.Adapter, r io.Reader, w io.Writer, logger *ingest.Logger, f encodeFlags) error {
	registry, err := ingest.NewRegistry(a)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(w)
	enc := json.NewEncoder(out)
	sink := ingest.SinkFunc(func(_ context.Context, indexID string, entries []index.Entry) error {
		for _, e := range entries {
			line := entryLine{Index: indexID, Key: hex.EncodeToString(e.Key), Value: hex.EncodeToString(e.Value)}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}

		return nil
	})

	ingestOpts := []ingest.Option{ingest.WithLogger(logger), ingest.WithBatchSize(f.batchSize)}
	if f.concurrency > 0 {
		ingestOpts = append(ingestOpts, ingest.WithConcurrency(f.concurrency))
	}
	in, err := ingest.New(registry, sink, ingestOpts...)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputs := make(chan ingest.Input)
	decodeErr := make(chan error, 1)
	go func() {
		defer close(inputs)
		decodeErr <- readRecords(ctx, r, a.Index().ID(), f.visibility, inputs)
	}()

	stats, err := in.Run(ctx, inputs)
	if err != nil {
		return err
	}
	if err := <-decodeErr; err != nil {
		return err
	}
	logger.Info("encoded records", "records", stats.Records, "entries", stats.Entries, "batches", stats.Batches)

	return out.Flush()
}

func readRecords(ctx context.Context, r io.Reader, indexID, visibility string, inputs chan<- ingest.Input) error {
	dec := json.NewDecoder(r)
	for line := 1; ; line++ {
		var rec field.MapRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("record %d: %w", line, err)
		}

		select {
		case inputs <- ingest.Input{IndexID: indexID, Record: rec, Visibility: visibility}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
