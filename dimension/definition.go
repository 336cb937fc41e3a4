package dimension

import (
	"fmt"
	"math"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
)

// Definition converts raw values and ranges of one dimension into normalized
// [0, 1] coordinates and back.
type Definition interface {
	// Kind returns the normalization policy.
	Kind() format.DimensionKind
	// Bounds returns the dimension bounds. For binned dimensions it is the
	// extent of bin 0.
	Bounds() Range
	// Normalize maps a raw value into [0, 1]. It never fails.
	Normalize(value float64) float64
	// Denormalize maps a normalized value back to the raw domain.
	Denormalize(normalized float64) float64
	// NormalizedRanges decomposes r into ordered, non-overlapping BinRanges.
	// An invalid range yields no bins.
	NormalizedRanges(r Range) []BinRange
}

// Binner is implemented by definitions that place values into discrete bins
// which become part of the storage key.
type Binner interface {
	Definition
	// BinOf returns the bin a raw value falls into.
	BinOf(value float64) int64
	// BinSpan returns the first and last bin touched by r.
	BinSpan(r Range) (first, last int64)
	// DenormalizeBin maps a normalized position inside bin back to the raw domain.
	DenormalizeBin(bin int64, normalized float64) float64
}

// Basic is a bounded or periodic dimension over [min, max].
type Basic struct {
	bounds   Range
	span     float64
	periodic bool
}

var _ Definition = (*Basic)(nil)

// NewBounded creates a dimension that clamps values to [min, max].
//
// Returns errs.ErrInvalidBounds if min >= max or either bound is not finite.
func NewBounded(min, max float64) (*Basic, error) {
	return newBasic(min, max, false)
}

// NewPeriodic creates a dimension that wraps values modulo (max - min).
//
// Returns errs.ErrInvalidBounds if min >= max or either bound is not finite.
func NewPeriodic(min, max float64) (*Basic, error) {
	return newBasic(min, max, true)
}

func newBasic(min, max float64, periodic bool) (*Basic, error) {
	if !isFinite(min) || !isFinite(max) {
		return nil, fmt.Errorf("%w: bounds must be finite, got [%g, %g]", errs.ErrInvalidBounds, min, max)
	}
	if min >= max {
		return nil, fmt.Errorf("%w: min %g must be less than max %g", errs.ErrInvalidBounds, min, max)
	}

	span := max - min
	if math.IsInf(span, 0) {
		return nil, fmt.Errorf("%w: span of [%g, %g] overflows", errs.ErrInvalidBounds, min, max)
	}

	return &Basic{
		bounds:   Range{Min: min, Max: max},
		span:     span,
		periodic: periodic,
	}, nil
}

// Kind returns DimensionPeriodic or DimensionBounded.
func (d *Basic) Kind() format.DimensionKind {
	if d.periodic {
		return format.DimensionPeriodic
	}

	return format.DimensionBounded
}

// Bounds returns [min, max].
func (d *Basic) Bounds() Range {
	return d.bounds
}

// IsPeriodic reports whether the dimension wraps.
func (d *Basic) IsPeriodic() bool {
	return d.periodic
}

// Normalize maps value into [0, 1].
//
// Bounded: (value - min) / span clamped to [0, 1]; min maps to 0 and max to 1.
// Periodic: ((value - min) mod span) / span; max wraps to 0.
// NaN normalizes to 0.
func (d *Basic) Normalize(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}

	if d.periodic {
		return d.wrap(value)
	}

	if value <= d.bounds.Min {
		return 0
	}
	if value >= d.bounds.Max {
		return 1
	}

	return clamp((value-d.bounds.Min)/d.span, 0, 1)
}

func (d *Basic) wrap(value float64) float64 {
	if math.IsInf(value, 0) {
		return 0
	}

	offset := math.Mod(value-d.bounds.Min, d.span)
	if offset < 0 {
		offset += d.span
	}

	n := offset / d.span
	if n >= 1 {
		// offset+span rounded up to span
		return 0
	}

	return n
}

// Denormalize returns min + normalized * span.
func (d *Basic) Denormalize(normalized float64) float64 {
	return d.bounds.Min + normalized*d.span
}

// NormalizedRanges decomposes r.
//
// Bounded dimensions clamp r first and always return a single BinRange; a
// range completely outside the bounds collapses to a zero-width BinRange at
// the nearest bound.
//
// Periodic dimensions return one BinRange when r stays inside one period,
// [0, 1] when r is at least one span wide, and two BinRanges (in ascending
// normalized order) when r wraps across max. A range ending exactly on the
// wrap point also yields the zero-width BinRange [0, 0], because that point
// normalizes to 0.
func (d *Basic) NormalizedRanges(r Range) []BinRange {
	if !r.Valid() {
		return nil
	}

	if !d.periodic {
		c := r.Clamp(d.bounds)
		return []BinRange{{NormalizedMin: d.Normalize(c.Min), NormalizedMax: d.Normalize(c.Max)}}
	}

	if r.Width() >= d.span || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return []BinRange{{NormalizedMin: 0, NormalizedMax: 1}}
	}

	lo := d.wrap(r.Min)
	hi := d.wrap(r.Max)
	loPeriod := math.Floor((r.Min - d.bounds.Min) / d.span)
	hiPeriod := math.Floor((r.Max - d.bounds.Min) / d.span)

	if loPeriod == hiPeriod && lo <= hi {
		return []BinRange{{NormalizedMin: lo, NormalizedMax: hi}}
	}

	if lo <= hi {
		// crossed a period boundary without splitting: rounding put both ends
		// on the same side, so the image is the whole period
		return []BinRange{{NormalizedMin: 0, NormalizedMax: 1}}
	}

	return []BinRange{
		{NormalizedMin: 0, NormalizedMax: hi},
		{NormalizedMin: lo, NormalizedMax: 1},
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
