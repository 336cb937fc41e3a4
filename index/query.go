package index

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/keyspace"
)

// QueryPlan is the set of key ranges to scan for a query region.
type QueryPlan struct {
	// Ranges are sorted, non-overlapping closed key ranges.
	Ranges []keyspace.Range
	// Tiers lists the tiers the ranges cover, coarsest first.
	Tiers []int
	// Bins holds the bin ids touched by the region for every binned dimension.
	Bins map[string]*roaring64.Bitmap
}

// Covers reports whether key falls inside one of the plan's ranges.
func (p *QueryPlan) Covers(key keyspace.Key) bool {
	return keyspace.Covers(p.Ranges, key)
}

// HasBin reports whether the region touches bin of the named binned dimension.
func (p *QueryPlan) HasBin(name string, bin int64) bool {
	bm, ok := p.Bins[name]
	if !ok {
		return false
	}

	return bm.Contains(binToUint(bin))
}

// BinIDs returns the touched bin ids of the named binned dimension in ascending order.
func (p *QueryPlan) BinIDs(name string) []int64 {
	bm, ok := p.Bins[name]
	if !ok {
		return nil
	}

	out := make([]int64, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, binFromUint(it.Next()))
	}

	return out
}

// binToUint maps a signed bin id into uint64 preserving order, so bitmap
// iteration is in ascending bin order.
func binToUint(bin int64) uint64 {
	return uint64(bin) ^ (1 << 63) //nolint: gosec
}

func binFromUint(v uint64) int64 {
	return int64(v ^ (1 << 63)) //nolint: gosec
}

// PlanQuery returns at most maxRanges key ranges covering every key a record
// intersecting region may be stored under.
//
// The region is split into its bin combinations; every tier of every
// combination is decomposed along the curve and prefixed with its tier and
// bins. The budget is shared among the combinations and, within one, handed
// from coarse to fine tiers, so the work stays proportional to maxRanges. The union is coalesced and the smallest gaps merged until it fits the
// budget, so the plan may cover keys outside the region but never misses one
// inside it.
//
// Parameters:
//   - region: one raw range per dimension
//   - maxRanges: upper bound on the number of returned ranges
//
// Returns:
//   - *QueryPlan: ranges, tiers and touched bins
//   - error: errs.ErrDimensionMismatch, errs.ErrInvalidRegion, errs.ErrBudgetExhausted
//     or errs.ErrTooManyBins
func (ix *Index) PlanQuery(region []dimension.Range, maxRanges int) (*QueryPlan, error) {
	if maxRanges <= 0 {
		return nil, fmt.Errorf("%w: max ranges is %d", errs.ErrBudgetExhausted, maxRanges)
	}

	subs, err := ix.split(region, ix.cfg.maxQueryBins)
	if err != nil {
		return nil, err
	}

	plan := &QueryPlan{
		Tiers: make([]int, 0, ix.MaxTier()+1),
		Bins:  make(map[string]*roaring64.Bitmap, len(ix.binned)),
	}
	for t := 0; t <= ix.MaxTier(); t++ {
		plan.Tiers = append(plan.Tiers, t)
	}
	for _, j := range ix.binned {
		plan.Bins[ix.dims[j].Name] = roaring64.New()
	}

	var ranges []keyspace.Range
	for i, remaining := range splitBudget(maxRanges, len(subs)) {
		sub := subs[i]
		for _, j := range ix.binned {
			plan.Bins[ix.dims[j].Name].Add(binToUint(sub.bins[j]))
		}

		for t := 0; t <= ix.MaxTier(); t++ {
			prefix := ix.appendPrefix(make([]byte, 0, ix.KeyLen(t)), t, sub.bins)
			if t == 0 {
				ranges = append(ranges, keyspace.Single(prefix))
				continue
			}

			// coarse tiers need few ranges; what they leave flows to finer tiers
			budget := max(1, remaining/(ix.MaxTier()-t+1))
			parts, err := ix.tiers[t].DecomposeRange(sub.norm, budget)
			if err != nil {
				return nil, err
			}
			remaining -= len(parts)
			for _, r := range parts {
				ranges = append(ranges, keyspace.NewRange(withPrefix(prefix, r.Start), withPrefix(prefix, r.End)))
			}
		}
	}

	plan.Ranges = keyspace.Reduce(ranges, maxRanges)

	return plan, nil
}

// splitBudget divides total ranges among n parts as evenly as possible,
// granting every part at least one.
func splitBudget(total, n int) []int {
	shares := make([]int, n)
	for i := range shares {
		shares[i] = max(1, total/n)
		if i < total%n {
			shares[i]++
		}
	}

	return shares
}

func withPrefix(prefix []byte, curve keyspace.Key) keyspace.Key {
	key := make(keyspace.Key, 0, len(prefix)+len(curve))
	key = append(key, prefix...)

	return append(key, curve...)
}

// FullRegion returns the region covering every bounded and periodic dimension
// entirely and bin 0 of every binned dimension.
func (ix *Index) FullRegion() []dimension.Range {
	out := make([]dimension.Range, len(ix.dims))
	for j, d := range ix.dims {
		out[j] = d.Definition.Bounds()
		if _, ok := d.binner(); ok {
			// stay inside bin 0 rather than touching the boundary of bin 1
			out[j].Max = math.Nextafter(out[j].Max, math.Inf(-1))
		}
	}

	return out
}

// CellCount returns the number of cells of tier t, saturating at math.MaxUint64.
func (ix *Index) CellCount(t int) uint64 {
	if t == 0 {
		return 1
	}

	total := ix.tiers[t].Layout().TotalBits()
	if total >= 64 {
		return math.MaxUint64
	}

	return 1 << uint(total)
}
