package sfc

import (
	"fmt"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/internal/options"
	"github.com/arloliu/geokey/keyspace"
)

// Strategy encodes normalized points into curve keys and decomposes normalized
// query boxes into key ranges. A Strategy is immutable and safe for concurrent
// use.
type Strategy struct {
	layout Layout
	curve  curve
	cfg    config
}

// New creates a strategy for the given curve and per-dimension precision.
//
// Parameters:
//   - curveType: format.CurveZOrder or format.CurveHilbert
//   - bits: precision of every dimension, 1..MaxBitsPerDimension each
//   - opts: decomposition limits
//
// Returns:
//   - *Strategy: the strategy
//   - error: errs.ErrUnknownCurve or errs.ErrInvalidBitDepth
func New(curveType format.CurveType, bits []uint8, opts ...Option) (*Strategy, error) {
	layout, err := NewLayout(bits)
	if err != nil {
		return nil, err
	}

	c, err := newCurve(curveType, layout.Dimensions())
	if err != nil {
		return nil, err
	}

	cfg := config{maxCells: DefaultMaxCells}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Strategy{layout: layout, curve: c, cfg: cfg}, nil
}

// Curve returns the curve type.
func (s *Strategy) Curve() format.CurveType {
	return s.curve.kind()
}

// Layout returns the bit layout.
func (s *Strategy) Layout() Layout {
	return s.layout
}

// Dimensions returns the number of dimensions.
func (s *Strategy) Dimensions() int {
	return s.layout.Dimensions()
}

// KeyLen returns the length of every key in bytes.
func (s *Strategy) KeyLen() int {
	return s.layout.KeyLen()
}

// Quantize returns the cell index of every coordinate of a normalized point.
func (s *Strategy) Quantize(point []float64) ([]uint64, error) {
	if len(point) != s.layout.Dimensions() {
		return nil, fmt.Errorf("%w: point has %d values, want %d", errs.ErrDimensionMismatch, len(point), s.layout.Dimensions())
	}

	cell := make([]uint64, len(point))
	for j, n := range point {
		cell[j] = s.layout.Quantize(j, n)
	}

	return cell, nil
}

// Encode returns the key of the cell containing a normalized point.
//
// Returns errs.ErrDimensionMismatch if len(point) differs from the dimension count.
func (s *Strategy) Encode(point []float64) (keyspace.Key, error) {
	cell, err := s.Quantize(point)
	if err != nil {
		return nil, err
	}

	return s.EncodeCell(cell)
}

// EncodeCell returns the key of a quantized cell.
func (s *Strategy) EncodeCell(cell []uint64) (keyspace.Key, error) {
	if len(cell) != s.layout.Dimensions() {
		return nil, fmt.Errorf("%w: cell has %d values, want %d", errs.ErrDimensionMismatch, len(cell), s.layout.Dimensions())
	}

	key := make(keyspace.Key, s.layout.KeyLen())
	pos := 0
	st := state{}
	for lvl := range s.layout.Depth() {
		active := s.layout.activeMask(lvl)

		var l uint64
		for j := range cell {
			if active>>uint(j)&1 == 1 {
				shift := uint(s.layout.bits[j]) - 1 - uint(lvl)
				l |= (cell[j] >> shift & 1) << uint(j)
			}
		}

		var r uint64
		r, st = s.curve.rank(st, active, l)
		for i := popcount(active) - 1; i >= 0; i-- {
			if r>>uint(i)&1 == 1 {
				setBit(key, pos)
			}
			pos++
		}
	}

	return key, nil
}

// Cell returns the quantized cell encoded in key.
//
// Returns errs.ErrInvalidKeyLength if key is not KeyLen bytes long.
func (s *Strategy) Cell(key keyspace.Key) ([]uint64, error) {
	if len(key) != s.layout.KeyLen() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidKeyLength, len(key), s.layout.KeyLen())
	}

	cell := make([]uint64, s.layout.Dimensions())
	rd := bitReader{buf: key}
	st := state{}
	for lvl := range s.layout.Depth() {
		active := s.layout.activeMask(lvl)

		var l uint64
		l, st = s.curve.unrank(st, active, rd.read(popcount(active)))
		for j := range cell {
			if active>>uint(j)&1 == 1 {
				shift := uint(s.layout.bits[j]) - 1 - uint(lvl)
				cell[j] |= (l >> uint(j) & 1) << shift
			}
		}
	}

	return cell, nil
}

// Decode returns the normalized lower corner of the cell encoded in key. It is
// the lossy inverse of Encode: Decode(Encode(p)) equals the cell corner of p.
func (s *Strategy) Decode(key keyspace.Key) ([]float64, error) {
	cell, err := s.Cell(key)
	if err != nil {
		return nil, err
	}

	point := make([]float64, len(cell))
	for j, q := range cell {
		point[j] = s.layout.CellMin(j, q)
	}

	return point, nil
}

// CellBounds returns the normalized box covered by a quantized cell.
func (s *Strategy) CellBounds(cell []uint64) []dimension.Range {
	out := make([]dimension.Range, len(cell))
	for j, q := range cell {
		out[j] = dimension.Range{Min: s.layout.CellMin(j, q), Max: s.layout.CellMax(j, q)}
	}

	return out
}
