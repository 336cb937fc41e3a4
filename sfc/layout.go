package sfc

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/geokey/errs"
)

const (
	// MaxBitsPerDimension is the largest per-dimension precision. Quantized
	// cells stay exactly representable in a float64 mantissa.
	MaxBitsPerDimension = 52
	// MaxDimensions is the largest supported dimensionality.
	MaxDimensions = 32
)

// Layout describes the bit budget of every dimension of a curve.
type Layout struct {
	bits  []uint8
	total int
	depth int
}

// NewLayout validates bits and returns the layout.
//
// Returns errs.ErrInvalidBitDepth if bits is empty, has more than
// MaxDimensions entries, or any entry is 0 or above MaxBitsPerDimension.
func NewLayout(bits []uint8) (Layout, error) {
	if len(bits) == 0 || len(bits) > MaxDimensions {
		return Layout{}, fmt.Errorf("%w: %d dimensions, want 1..%d", errs.ErrInvalidBitDepth, len(bits), MaxDimensions)
	}

	l := Layout{bits: append([]uint8(nil), bits...)}
	for j, b := range bits {
		if b == 0 || b > MaxBitsPerDimension {
			return Layout{}, fmt.Errorf("%w: dimension %d has %d bits, want 1..%d",
				errs.ErrInvalidBitDepth, j, b, MaxBitsPerDimension)
		}
		l.total += int(b)
		l.depth = max(l.depth, int(b))
	}

	return l, nil
}

// Dimensions returns the number of dimensions.
func (l Layout) Dimensions() int {
	return len(l.bits)
}

// Bits returns the precision of dimension j.
func (l Layout) Bits(j int) uint8 {
	return l.bits[j]
}

// AllBits returns a copy of the per-dimension precisions.
func (l Layout) AllBits() []uint8 {
	return append([]uint8(nil), l.bits...)
}

// TotalBits returns the sum of all precisions.
func (l Layout) TotalBits() int {
	return l.total
}

// Depth returns the number of curve levels, the largest precision.
func (l Layout) Depth() int {
	return l.depth
}

// KeyLen returns the encoded key length in bytes.
func (l Layout) KeyLen() int {
	return (l.total + 7) / 8
}

// Truncate returns the layout restricted to the first depth levels: every
// dimension keeps min(bits, depth) bits. depth must be in [1, Depth()].
func (l Layout) Truncate(depth int) Layout {
	out := Layout{bits: make([]uint8, len(l.bits))}
	for j, b := range l.bits {
		out.bits[j] = uint8(min(int(b), depth))
		out.total += int(out.bits[j])
		out.depth = max(out.depth, int(out.bits[j]))
	}

	return out
}

// activeMask returns the dimensions contributing a bit at level s.
func (l Layout) activeMask(s int) uint64 {
	var mask uint64
	for j, b := range l.bits {
		if int(b) > s {
			mask |= 1 << uint(j)
		}
	}

	return mask
}

// levelBits returns the number of key bits emitted up to (not including) level s.
func (l Layout) levelBits(s int) int {
	n := 0
	for _, b := range l.bits {
		n += min(int(b), s)
	}

	return n
}

// Quantize maps a normalized value of dimension j to its cell index:
// floor(n * 2^bits), with 1.0 mapped to the last cell. Values below 0 or NaN
// map to 0 and values above 1 to the last cell.
func (l Layout) Quantize(j int, n float64) uint64 {
	b := int(l.bits[j])
	last := uint64(1)<<uint(b) - 1
	if !(n > 0) {
		return 0
	}
	if n >= 1 {
		return last
	}

	q := uint64(math.Floor(math.Ldexp(n, b)))
	if q > last {
		return last
	}

	return q
}

// CellMin returns the normalized lower corner of cell q in dimension j.
func (l Layout) CellMin(j int, q uint64) float64 {
	return math.Ldexp(float64(q), -int(l.bits[j]))
}

// CellMax returns the normalized upper corner of cell q in dimension j.
func (l Layout) CellMax(j int, q uint64) float64 {
	return math.Ldexp(float64(q+1), -int(l.bits[j]))
}

func popcount(x uint64) int {
	return bits.OnesCount64(x)
}
