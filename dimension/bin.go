package dimension

import "fmt"

// BinRange is one contiguous normalized sub-interval of a dimension together
// with the discrete bin it belongs to.
//
// Bounded and periodic dimensions always use bin 0; periodic ranges that wrap
// are expressed as two BinRanges of the same bin. Binned dimensions use the
// bin index, which may be negative for values before the origin.
//
// Invariant: 0 <= NormalizedMin <= NormalizedMax <= 1. A zero-width BinRange
// touches a single normalized position only (usually a boundary).
type BinRange struct {
	BinID         int64
	NormalizedMin float64
	NormalizedMax float64
}

// Width returns the normalized width of the bin range.
func (b BinRange) Width() float64 {
	return b.NormalizedMax - b.NormalizedMin
}

// IsZeroWidth reports whether the bin range touches a single position.
func (b BinRange) IsZeroWidth() bool {
	return b.NormalizedMin == b.NormalizedMax
}

// IsFullExtent reports whether the bin range covers the whole bin.
func (b BinRange) IsFullExtent() bool {
	return b.NormalizedMin == 0 && b.NormalizedMax == 1
}

// Normalized returns the normalized interval as a Range.
func (b BinRange) Normalized() Range {
	return Range{Min: b.NormalizedMin, Max: b.NormalizedMax}
}

func (b BinRange) String() string {
	return fmt.Sprintf("bin %d [%g, %g]", b.BinID, b.NormalizedMin, b.NormalizedMax)
}
