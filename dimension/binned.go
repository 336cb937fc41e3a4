package dimension

import (
	"fmt"
	"math"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
)

// MaxBinRanges caps the number of BinRanges Binned.NormalizedRanges enumerates.
const MaxBinRanges = 1 << 16

// Binned splits an unbounded axis into fixed-width bins starting at origin.
//
// Bin k covers [origin + k*width, origin + (k+1)*width). A value on a bin
// boundary belongs to the bin that starts there. Typical use is time in
// milliseconds with day, week or year wide bins.
type Binned struct {
	origin float64
	width  float64
}

var _ Binner = (*Binned)(nil)

// NewBinned creates a binned dimension.
//
// Returns errs.ErrInvalidBounds if width <= 0 or either argument is not finite.
func NewBinned(origin, width float64) (*Binned, error) {
	if !isFinite(origin) || !isFinite(width) {
		return nil, fmt.Errorf("%w: origin and bin width must be finite", errs.ErrInvalidBounds)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: bin width %g must be positive", errs.ErrInvalidBounds, width)
	}

	return &Binned{origin: origin, width: width}, nil
}

// Kind returns DimensionBinned.
func (d *Binned) Kind() format.DimensionKind {
	return format.DimensionBinned
}

// Bounds returns the extent of bin 0.
func (d *Binned) Bounds() Range {
	return Range{Min: d.origin, Max: d.origin + d.width}
}

// Origin returns the start of bin 0.
func (d *Binned) Origin() float64 {
	return d.origin
}

// BinWidth returns the width of every bin.
func (d *Binned) BinWidth() float64 {
	return d.width
}

// BinStart returns the raw value where bin starts.
func (d *Binned) BinStart(bin int64) float64 {
	return d.origin + float64(bin)*d.width
}

// BinOf returns the bin containing value. NaN maps to bin 0; values beyond the
// int64 bin range saturate.
func (d *Binned) BinOf(value float64) int64 {
	if math.IsNaN(value) {
		return 0
	}

	f := math.Floor((value - d.origin) / d.width)
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}

	bin := int64(f)
	// the division may round across a boundary; settle on the bin whose
	// half-open extent really holds value
	if start := d.BinStart(bin); value < start {
		bin--
	} else if value >= start+d.width {
		bin++
	}

	return bin
}

// BinSpan returns the first and last bins touched by r.
func (d *Binned) BinSpan(r Range) (first, last int64) {
	return d.BinOf(r.Min), d.BinOf(r.Max)
}

// Normalize returns the position of value inside its own bin.
func (d *Binned) Normalize(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}

	return d.normalizeIn(d.BinOf(value), value)
}

func (d *Binned) normalizeIn(bin int64, value float64) float64 {
	return clamp((value-d.BinStart(bin))/d.width, 0, 1)
}

// Denormalize maps a normalized position inside bin 0 back to the raw domain.
func (d *Binned) Denormalize(normalized float64) float64 {
	return d.DenormalizeBin(0, normalized)
}

// DenormalizeBin maps a normalized position inside bin back to the raw domain.
func (d *Binned) DenormalizeBin(bin int64, normalized float64) float64 {
	return d.origin + (float64(bin)+normalized)*d.width
}

// NormalizedRanges returns one BinRange per bin touched by r, in ascending bin
// order. Inner bins cover [0, 1]. When r ends exactly on a bin boundary the
// last BinRange is the zero-width [0, 0] of the following bin, since that
// boundary value is stored in the following bin.
//
// Returns nil for an invalid range, a range with an infinite endpoint and a
// range touching more than MaxBinRanges bins; use BinSpan to check the span
// before calling.
func (d *Binned) NormalizedRanges(r Range) []BinRange {
	if !r.Valid() || !isFinite(r.Min) || !isFinite(r.Max) {
		return nil
	}

	first, last := d.BinSpan(r)
	// uint64 keeps spans wider than MaxInt64 from wrapping negative
	if uint64(last-first) >= MaxBinRanges { //nolint: gosec
		return nil
	}
	if first == last {
		return []BinRange{{
			BinID:         first,
			NormalizedMin: d.normalizeIn(first, r.Min),
			NormalizedMax: d.normalizeIn(first, r.Max),
		}}
	}

	out := make([]BinRange, 0, last-first+1)
	out = append(out, BinRange{BinID: first, NormalizedMin: d.normalizeIn(first, r.Min), NormalizedMax: 1})
	for bin := first + 1; bin < last; bin++ {
		out = append(out, BinRange{BinID: bin, NormalizedMin: 0, NormalizedMax: 1})
	}
	out = append(out, BinRange{BinID: last, NormalizedMin: 0, NormalizedMax: d.normalizeIn(last, r.Max)})

	return out
}
