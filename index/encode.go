package index

import (
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/internal/pool"
	"github.com/arloliu/geokey/keyspace"
)

// subRegion is one bin combination of a box with its normalized extent.
type subRegion struct {
	bins []int64
	norm []dimension.Range
}

// EncodePoint returns the key of a raw point at the finest tier.
//
// Returns errs.ErrDimensionMismatch if len(point) differs from the dimension count.
func (ix *Index) EncodePoint(point []float64) (keyspace.Key, error) {
	if len(point) != len(ix.dims) {
		return nil, fmt.Errorf("%w: point has %d values, want %d", errs.ErrDimensionMismatch, len(point), len(ix.dims))
	}

	bins := make([]int64, len(ix.dims))
	norm, cleanup := pool.GetFloat64Slice(len(ix.dims))
	defer cleanup()
	for j, d := range ix.dims {
		if b, ok := d.binner(); ok {
			bins[j] = b.BinOf(point[j])
		}
		norm[j] = d.Definition.Normalize(point[j])
	}

	tier := ix.MaxTier()
	key := make(keyspace.Key, 0, ix.KeyLen(tier))
	key = ix.appendPrefix(key, tier, bins)
	if tier == 0 {
		return key, nil
	}

	curve, err := ix.tiers[tier].Encode(norm)
	if err != nil {
		return nil, err
	}

	return append(key, curve...), nil
}

// EncodeBox returns the sorted, distinct keys a raw box is stored under.
//
// Every bin combination the box touches is stored separately. Within a
// combination the box is written at the finest tier where it covers at most
// MaxDuplicates cells, once per covered cell. A box of points yields the same
// single key as EncodePoint.
//
// Returns errs.ErrDimensionMismatch, errs.ErrInvalidRegion for a range with
// min > max or NaN bounds, and errs.ErrTooManyBins when the box touches more
// bin combinations than the record cap.
func (ix *Index) EncodeBox(box []dimension.Range) ([]keyspace.Key, error) {
	subs, err := ix.split(box, ix.cfg.maxRecordBins)
	if err != nil {
		return nil, err
	}

	keys := make([]keyspace.Key, 0, len(subs))
	for _, sub := range subs {
		tier := ix.storageTier(sub.norm)
		keys, err = ix.appendCellKeys(keys, tier, sub)
		if err != nil {
			return nil, err
		}
	}

	slices.SortFunc(keys, keyspace.Compare)

	return slices.CompactFunc(keys, keyspace.Key.Equal), nil
}

// split validates a raw box and breaks it into its bin combinations.
func (ix *Index) split(box []dimension.Range, maxBins int) ([]subRegion, error) {
	if len(box) != len(ix.dims) {
		return nil, fmt.Errorf("%w: region has %d ranges, want %d", errs.ErrDimensionMismatch, len(box), len(ix.dims))
	}

	per := make([][]dimension.BinRange, len(ix.dims))
	total := 1
	for j, d := range ix.dims {
		if !box[j].Valid() {
			return nil, fmt.Errorf("%w: dimension %q range %s", errs.ErrInvalidRegion, d.Name, box[j])
		}
		if b, ok := d.binner(); ok {
			first, last := b.BinSpan(box[j])
			// uint64 keeps spans wider than MaxInt64 from wrapping negative
			limit := min(maxBins, dimension.MaxBinRanges)
			if span := uint64(last-first) + 1; span > uint64(limit) || span == 0 { //nolint: gosec
				return nil, fmt.Errorf("%w: dimension %q touches bins %d..%d, limit %d", errs.ErrTooManyBins, d.Name, first, last, limit)
			}
		}
		per[j] = d.Definition.NormalizedRanges(box[j])
		if len(per[j]) == 0 {
			return nil, fmt.Errorf("%w: dimension %q range %s", errs.ErrInvalidRegion, d.Name, box[j])
		}
		total *= len(per[j])
		if total > maxBins {
			return nil, fmt.Errorf("%w: region touches more than %d bin combinations", errs.ErrTooManyBins, maxBins)
		}
	}

	subs := make([]subRegion, 0, total)
	idx := make([]int, len(per))
	for {
		sub := subRegion{
			bins: make([]int64, len(per)),
			norm: make([]dimension.Range, len(per)),
		}
		for j, br := range per {
			sub.bins[j] = br[idx[j]].BinID
			sub.norm[j] = br[idx[j]].Normalized()
		}
		subs = append(subs, sub)

		// odometer over the per-dimension bin ranges, last dimension fastest
		j := len(per) - 1
		for ; j >= 0; j-- {
			idx[j]++
			if idx[j] < len(per[j]) {
				break
			}
			idx[j] = 0
		}
		if j < 0 {
			return subs, nil
		}
	}
}

// cellSpan fills lo and hi with the inclusive quantized cell range of a
// normalized box at tier t.
func (ix *Index) cellSpan(t int, norm []dimension.Range, lo, hi []uint64) {
	layout := ix.tiers[t].Layout()
	for j, r := range norm {
		lo[j] = layout.Quantize(j, r.Min)
		hi[j] = layout.Quantize(j, r.Max)
	}
}

// storageTier returns the finest tier at which norm covers at most
// MaxDuplicates cells. Cell counts never shrink as tiers get finer.
func (ix *Index) storageTier(norm []dimension.Range) int {
	lo, cleanupLo := pool.GetUint64Slice(len(norm))
	defer cleanupLo()
	hi, cleanupHi := pool.GetUint64Slice(len(norm))
	defer cleanupHi()

	best := 0
	for t := 1; t <= ix.MaxTier(); t++ {
		ix.cellSpan(t, norm, lo, hi)
		if _, ok := cellProduct(lo, hi, uint64(ix.cfg.maxDuplicates)); !ok { //nolint: gosec
			return best
		}
		best = t
	}

	return best
}

// cellProduct returns the number of cells in the inclusive span [lo, hi] and
// whether it is at most limit. The product saturates instead of wrapping.
func cellProduct(lo, hi []uint64, limit uint64) (uint64, bool) {
	count := uint64(1)
	for j := range lo {
		carry, product := bits.Mul64(count, hi[j]-lo[j]+1)
		if carry != 0 {
			return math.MaxUint64, false
		}
		count = product
		if count > limit {
			return count, false
		}
	}

	return count, true
}

// appendCellKeys appends one key per cell of sub at tier t.
func (ix *Index) appendCellKeys(keys []keyspace.Key, t int, sub subRegion) ([]keyspace.Key, error) {
	buf := pool.GetKeyBuffer()
	defer pool.PutKeyBuffer(buf)
	buf.B = ix.appendPrefix(buf.B, t, sub.bins)
	if t == 0 {
		return append(keys, keyspace.Key(buf.Clone())), nil
	}
	prefix := buf.Bytes()

	s := ix.tiers[t]
	lo, cleanupLo := pool.GetUint64Slice(len(sub.norm))
	defer cleanupLo()
	hi, cleanupHi := pool.GetUint64Slice(len(sub.norm))
	defer cleanupHi()
	ix.cellSpan(t, sub.norm, lo, hi)
	cell := slices.Clone(lo)
	for {
		curve, err := s.EncodeCell(cell)
		if err != nil {
			return nil, err
		}
		key := make(keyspace.Key, 0, ix.KeyLen(t))
		key = append(key, prefix...)
		keys = append(keys, append(key, curve...))

		j := len(cell) - 1
		for ; j >= 0; j-- {
			cell[j]++
			if cell[j] <= hi[j] {
				break
			}
			cell[j] = lo[j]
		}
		if j < 0 {
			return keys, nil
		}
	}
}
