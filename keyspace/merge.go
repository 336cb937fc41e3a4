package keyspace

import (
	"math/big"
	"slices"
)

// MergeToBudget reduces a coalesced range set to at most maxRanges ranges by
// closing the smallest gaps between neighbours.
//
// Gaps are measured as the integer distance between a range end and the next
// range start, with both keys right-padded with zeros to a common length. Ties
// close the lowest gap first, so the result is deterministic. The returned set
// is a superset of the input and stays sorted.
//
// Parameters:
//   - ranges: ranges sorted by Start and free of overlaps, as returned by Coalesce
//   - maxRanges: maximum number of ranges to return; values < 1 return ranges unchanged
//
// Returns:
//   - []Range: merged ranges; ranges itself when it already fits
func MergeToBudget(ranges []Range, maxRanges int) []Range {
	if maxRanges < 1 || len(ranges) <= maxRanges {
		return ranges
	}

	width := 0
	for _, r := range ranges {
		width = max(width, len(r.Start), len(r.End))
	}

	type gap struct {
		size  *big.Int
		index int
	}

	gaps := make([]gap, len(ranges)-1)
	var end, start big.Int
	for i := range gaps {
		end.SetBytes(PadRight(ranges[i].End, width))
		start.SetBytes(PadRight(ranges[i+1].Start, width))
		gaps[i] = gap{size: new(big.Int).Sub(&start, &end), index: i}
	}

	slices.SortFunc(gaps, func(a, b gap) int {
		if c := a.size.Cmp(b.size); c != 0 {
			return c
		}

		return a.index - b.index
	})

	// closed[i] means ranges[i] and ranges[i+1] become one range
	closed := make([]bool, len(ranges)-1)
	for _, g := range gaps[:len(ranges)-maxRanges] {
		closed[g.index] = true
	}

	out := make([]Range, 0, maxRanges)
	cur := ranges[0]
	for i := 1; i < len(ranges); i++ {
		if closed[i-1] {
			if Compare(ranges[i].End, cur.End) > 0 {
				cur.End = ranges[i].End
			}

			continue
		}
		out = append(out, cur)
		cur = ranges[i]
	}
	out = append(out, cur)

	return out
}

// Reduce coalesces ranges and merges them down to maxRanges.
func Reduce(ranges []Range, maxRanges int) []Range {
	return MergeToBudget(Coalesce(ranges), maxRanges)
}
