package index

import (
	"fmt"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/internal/options"
	"github.com/arloliu/geokey/sfc"
)

const (
	// DefaultMaxDuplicates is the default number of keys a range-valued record may occupy.
	DefaultMaxDuplicates = 4
	// DefaultMaxRecordBins caps the bin combinations a single record may touch.
	DefaultMaxRecordBins = 1024
	// DefaultMaxQueryBins caps the bin combinations a single query may touch.
	DefaultMaxQueryBins = 4096
)

type config struct {
	curve         format.CurveType
	maxDuplicates int
	maxRecordBins int
	maxQueryBins  int
	compression   format.CompressionType
	bigEndian     bool
	sfcOpts       []sfc.Option
}

func defaultConfig() config {
	return config{
		curve:         format.CurveHilbert,
		maxDuplicates: DefaultMaxDuplicates,
		maxRecordBins: DefaultMaxRecordBins,
		maxQueryBins:  DefaultMaxQueryBins,
		compression:   format.CompressionNone,
	}
}

// Option configures an Index.
type Option = options.Option[*config]

// WithCurve selects the space filling curve. The default is the Hilbert curve.
func WithCurve(curve format.CurveType) Option {
	return options.New(func(c *config) error {
		if curve != format.CurveZOrder && curve != format.CurveHilbert {
			return fmt.Errorf("%w: %d", errs.ErrUnknownCurve, curve)
		}
		c.curve = curve

		return nil
	})
}

// WithMaxDuplicates sets how many keys a range-valued record may be stored
// under, between 1 and 65535.
func WithMaxDuplicates(n int) Option {
	return options.New(func(c *config) error {
		if n < 1 || n > 0xFFFF {
			return fmt.Errorf("%w: max duplicates %d out of range", errs.ErrInvalidDescriptor, n)
		}
		c.maxDuplicates = n

		return nil
	})
}

// WithMaxBins caps the number of bin combinations a record and a query may touch.
// Values below 1 keep the defaults.
func WithMaxBins(record, query int) Option {
	return options.NoError(func(c *config) {
		if record > 0 {
			c.maxRecordBins = record
		}
		if query > 0 {
			c.maxQueryBins = query
		}
	})
}

// WithValueCompression selects the compression of stored value payloads.
func WithValueCompression(compression format.CompressionType) Option {
	return options.New(func(c *config) error {
		if compression.String() == "unknown" {
			return fmt.Errorf("%w: compression %d", errs.ErrInvalidDescriptor, compression)
		}
		c.compression = compression

		return nil
	})
}

// WithBigEndianValues writes value headers and payloads big-endian. Keys are
// big-endian regardless.
func WithBigEndianValues() Option {
	return options.NoError(func(c *config) {
		c.bigEndian = true
	})
}

// WithDecomposition forwards options to the curve strategy of every tier,
// such as sfc.WithMaxRecursionDepth.
func WithDecomposition(opts ...sfc.Option) Option {
	return options.NoError(func(c *config) {
		c.sfcOpts = append(c.sfcOpts, opts...)
	})
}
