package index

import (
	"fmt"

	"github.com/arloliu/geokey/endian"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/internal/collision"
	"github.com/arloliu/geokey/internal/options"
	"github.com/arloliu/geokey/keyspace"
	"github.com/arloliu/geokey/sfc"
)

// Entry is one key-value pair to be written to the store.
type Entry struct {
	Key   keyspace.Key
	Value []byte
}

// Index is an immutable multi-dimensional index configuration. It is safe for
// concurrent use.
type Index struct {
	id          string
	dims        []Dimension
	binned      []int // positions of binned dimensions in dims
	tiers       []*sfc.Strategy
	cfg         config
	descriptor  Descriptor
	fingerprint uint64
}

// New creates an index.
//
// Parameters:
//   - id: non-empty index identifier
//   - dims: dimensions in key order; names must be unique
//   - opts: curve, duplication, bin and compression settings
//
// Returns:
//   - *Index: the index
//   - error: errs.ErrEmptyName, errs.ErrDuplicateDimension, errs.ErrInvalidBitDepth,
//     errs.ErrInvalidDescriptor or errs.ErrUnknownCurve
func New(id string, dims []Dimension, opts ...Option) (*Index, error) {
	if id == "" {
		return nil, fmt.Errorf("index id: %w", errs.ErrEmptyName)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: index %q has no dimensions", errs.ErrInvalidDescriptor, id)
	}

	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	ix := &Index{
		id:   id,
		dims: append([]Dimension(nil), dims...),
		cfg:  cfg,
	}

	names := collision.NewTracker(errs.ErrDuplicateDimension)
	bits := make([]uint8, len(dims))
	for j, d := range ix.dims {
		if err := names.Track(d.Name); err != nil {
			return nil, err
		}
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, ok := d.binner(); ok {
			ix.binned = append(ix.binned, j)
		}
		bits[j] = d.Bits
	}

	layout, err := sfc.NewLayout(bits)
	if err != nil {
		return nil, err
	}

	// tier 0 is the single root cell and has no curve
	ix.tiers = make([]*sfc.Strategy, layout.Depth()+1)
	for t := 1; t <= layout.Depth(); t++ {
		ix.tiers[t], err = sfc.New(cfg.curve, layout.Truncate(t).AllBits(), cfg.sfcOpts...)
		if err != nil {
			return nil, err
		}
	}

	ix.descriptor = ix.buildDescriptor()
	ix.fingerprint, err = ix.descriptor.Fingerprint()
	if err != nil {
		return nil, err
	}

	return ix, nil
}

// ID returns the index identifier.
func (ix *Index) ID() string {
	return ix.id
}

// Dimensions returns a copy of the dimensions in key order.
func (ix *Index) Dimensions() []Dimension {
	return append([]Dimension(nil), ix.dims...)
}

// DimensionNames returns the dimension names in key order.
func (ix *Index) DimensionNames() []string {
	out := make([]string, len(ix.dims))
	for j, d := range ix.dims {
		out[j] = d.Name
	}

	return out
}

// Curve returns the space filling curve type.
func (ix *Index) Curve() format.CurveType {
	return ix.cfg.curve
}

// MaxTier returns the finest tier, equal to the largest dimension precision.
func (ix *Index) MaxTier() int {
	return len(ix.tiers) - 1
}

// Strategy returns the curve strategy of tier t, or nil for tier 0.
func (ix *Index) Strategy(t int) *sfc.Strategy {
	return ix.tiers[t]
}

// MaxDuplicates returns how many keys a range-valued record may occupy.
func (ix *Index) MaxDuplicates() int {
	return ix.cfg.maxDuplicates
}

// Compression returns the value payload compression.
func (ix *Index) Compression() format.CompressionType {
	return ix.cfg.compression
}

// ValueEngine returns the byte order of value headers and payloads.
func (ix *Index) ValueEngine() endian.EndianEngine {
	if ix.cfg.bigEndian {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Fingerprint returns the xxHash64 of the binary descriptor.
func (ix *Index) Fingerprint() uint64 {
	return ix.fingerprint
}

// Descriptor returns the portable configuration of the index.
func (ix *Index) Descriptor() Descriptor {
	return ix.descriptor.clone()
}

func (ix *Index) String() string {
	return fmt.Sprintf("index %s (%s, %d dimensions, fingerprint %016x)", ix.id, ix.cfg.curve, len(ix.dims), ix.fingerprint)
}
