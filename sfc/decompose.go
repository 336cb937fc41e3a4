package sfc

import (
	"fmt"
	"math"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/keyspace"
)

// node is a curve cell at some level, identified by its key prefix.
type node struct {
	prefix []byte
	nbits  int
	cell   []uint64 // top min(bits, level) bits of every dimension
	st     state
}

// qbox is a query box in quantized coordinates, inclusive on both ends.
type qbox struct {
	lo []uint64
	hi []uint64
}

type coverage uint8

const (
	disjoint coverage = iota
	partial
	full
)

// DecomposeRange returns key ranges covering every cell that intersects a
// normalized query box.
//
// The box is refined level by level in curve order. Cells fully inside the
// box become ranges; partially covered cells are split further. Refinement
// stops at the first level whose coalesced range count exceeds maxRanges, at
// the recursion ceiling, or at the finest level. The result is then coalesced
// and the smallest gaps between ranges are merged until at most maxRanges
// ranges remain. Every key of a cell intersecting the box lies inside some
// returned range, and the result depends only on the inputs.
//
// Parameters:
//   - region: one normalized range per dimension; values outside [0, 1] are clamped
//   - maxRanges: upper bound on the number of returned ranges
//
// Returns:
//   - []keyspace.Range: sorted, non-overlapping closed ranges
//   - error: errs.ErrDimensionMismatch, errs.ErrInvalidRegion or errs.ErrBudgetExhausted
func (s *Strategy) DecomposeRange(region []dimension.Range, maxRanges int) ([]keyspace.Range, error) {
	box, err := s.quantizeRegion(region)
	if err != nil {
		return nil, err
	}
	if maxRanges <= 0 {
		return nil, fmt.Errorf("%w: max ranges is %d", errs.ErrBudgetExhausted, maxRanges)
	}

	depth := s.layout.Depth()
	if s.cfg.maxDepth > 0 {
		depth = min(depth, s.cfg.maxDepth)
	}

	var done []keyspace.Range
	frontier := []node{{cell: make([]uint64, s.layout.Dimensions())}}
	if s.classify(frontier[0], 0, box) == full {
		return []keyspace.Range{s.nodeRange(frontier[0])}, nil
	}

	for lvl := 0; lvl < depth && len(frontier) > 0; lvl++ {
		width := popcount(s.layout.activeMask(lvl))
		if len(frontier)<<uint(width) > s.cfg.maxCells {
			break
		}

		nextDone := append([]keyspace.Range(nil), done...)
		next := make([]node, 0, len(frontier))
		for _, parent := range frontier {
			for _, child := range s.children(parent, lvl) {
				switch s.classify(child, lvl+1, box) {
				case full:
					nextDone = append(nextDone, s.nodeRange(child))
				case partial:
					next = append(next, child)
				}
			}
		}

		if lvl > 0 && s.countRanges(nextDone, next) > maxRanges {
			break
		}
		done, frontier = nextDone, next
	}

	ranges := make([]keyspace.Range, 0, len(done)+len(frontier))
	ranges = append(ranges, done...)
	for _, n := range frontier {
		ranges = append(ranges, s.nodeRange(n))
	}

	return keyspace.Reduce(ranges, maxRanges), nil
}

func (s *Strategy) quantizeRegion(region []dimension.Range) (qbox, error) {
	if len(region) != s.layout.Dimensions() {
		return qbox{}, fmt.Errorf("%w: region has %d ranges, want %d", errs.ErrDimensionMismatch, len(region), s.layout.Dimensions())
	}

	box := qbox{lo: make([]uint64, len(region)), hi: make([]uint64, len(region))}
	for j, r := range region {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max {
			return qbox{}, fmt.Errorf("%w: dimension %d range %v", errs.ErrInvalidRegion, j, r)
		}
		box.lo[j] = s.layout.Quantize(j, r.Min)
		box.hi[j] = s.layout.Quantize(j, r.Max)
	}

	return box, nil
}

// children expands a cell at level lvl into its sub-cells in curve order.
func (s *Strategy) children(parent node, lvl int) []node {
	active := s.layout.activeMask(lvl)
	width := popcount(active)
	out := make([]node, 0, 1<<uint(width))
	for r := range uint64(1) << uint(width) {
		l, st := s.curve.unrank(parent.st, active, r)
		cell := make([]uint64, len(parent.cell))
		for j, c := range parent.cell {
			if active>>uint(j)&1 == 1 {
				c = c<<1 | l>>uint(j)&1
			}
			cell[j] = c
		}
		prefix, nbits := appendBits(parent.prefix, parent.nbits, r, width)
		out = append(out, node{prefix: prefix, nbits: nbits, cell: cell, st: st})
	}

	return out
}

// classify compares the quantized extent of a cell at level lvl with the box.
func (s *Strategy) classify(n node, lvl int, box qbox) coverage {
	result := full
	for j, c := range n.cell {
		b := int(s.layout.bits[j])
		shift := uint(b - min(b, lvl))
		lo := c << shift
		hi := lo | (uint64(1)<<shift - 1)
		if hi < box.lo[j] || lo > box.hi[j] {
			return disjoint
		}
		if lo < box.lo[j] || hi > box.hi[j] {
			result = partial
		}
	}

	return result
}

// nodeRange returns the closed key range of all keys inside the cell.
func (s *Strategy) nodeRange(n node) keyspace.Range {
	start := make(keyspace.Key, s.layout.KeyLen())
	copy(start, n.prefix)
	end := start.Clone()
	for pos := n.nbits; pos < s.layout.TotalBits(); pos++ {
		setBit(end, pos)
	}

	return keyspace.Range{Start: start, End: end}
}

func (s *Strategy) countRanges(done []keyspace.Range, frontier []node) int {
	ranges := make([]keyspace.Range, 0, len(done)+len(frontier))
	ranges = append(ranges, done...)
	for _, n := range frontier {
		ranges = append(ranges, s.nodeRange(n))
	}

	return len(keyspace.Coalesce(ranges))
}
