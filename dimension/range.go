package dimension

import (
	"fmt"
	"math"
)

// Range is a closed interval [Min, Max] over real numbers.
//
// A valid range has Min <= Max and no NaN bounds. A range with Min == Max is a
// point. Range is a value type; all methods leave the receiver untouched.
type Range struct {
	Min float64
	Max float64
}

// Point returns the degenerate range [v, v].
func Point(v float64) Range {
	return Range{Min: v, Max: v}
}

// Valid reports whether Min <= Max and neither bound is NaN.
func (r Range) Valid() bool {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
		return false
	}

	return r.Min <= r.Max
}

// IsPoint reports whether the range has zero width.
func (r Range) IsPoint() bool {
	return r.Min == r.Max
}

// Width returns Max - Min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Centroid returns the midpoint of the range.
func (r Range) Centroid() float64 {
	return r.Min + (r.Max-r.Min)/2
}

// Contains reports whether v lies inside the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ContainsRange reports whether o lies completely inside r.
func (r Range) ContainsRange(o Range) bool {
	return o.Min >= r.Min && o.Max <= r.Max
}

// Intersects reports whether r and o share at least one point.
func (r Range) Intersects(o Range) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

// Intersection returns the overlap of r and o. The boolean is false when the
// ranges are disjoint.
func (r Range) Intersection(o Range) (Range, bool) {
	if !r.Intersects(o) {
		return Range{}, false
	}

	return Range{Min: math.Max(r.Min, o.Min), Max: math.Min(r.Max, o.Max)}, true
}

// Clamp moves both endpoints into bounds. A range completely outside bounds
// collapses onto the nearest bound.
func (r Range) Clamp(bounds Range) Range {
	return Range{
		Min: clamp(r.Min, bounds.Min, bounds.Max),
		Max: clamp(r.Max, bounds.Min, bounds.Max),
	}
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
