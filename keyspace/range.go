package keyspace

import (
	"fmt"
	"slices"
)

// Range is a closed key range [Start, End].
type Range struct {
	Start Key
	End   Key
}

// NewRange returns the range [start, end].
func NewRange(start, end Key) Range {
	return Range{Start: start, End: end}
}

// Single returns the range holding exactly k.
func Single(k Key) Range {
	return Range{Start: k, End: k}
}

// Valid reports whether Start <= End.
func (r Range) Valid() bool {
	return Compare(r.Start, r.End) <= 0
}

// Contains reports whether Start <= k <= End.
func (r Range) Contains(k Key) bool {
	return Compare(r.Start, k) <= 0 && Compare(k, r.End) <= 0
}

// ContainsRange reports whether o lies completely inside r.
func (r Range) ContainsRange(o Range) bool {
	return Compare(r.Start, o.Start) <= 0 && Compare(o.End, r.End) <= 0
}

// Overlaps reports whether r and o share at least one key.
func (r Range) Overlaps(o Range) bool {
	return Compare(r.Start, o.End) <= 0 && Compare(o.Start, r.End) <= 0
}

// Adjacent reports whether o starts at the successor of r's end, so that the
// union of both ranges is contiguous.
func (r Range) Adjacent(o Range) bool {
	if len(r.End) != len(o.Start) {
		return false
	}

	next, ok := Successor(r.End)

	return ok && next.Equal(o.Start)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start, r.End)
}

// Sort orders ranges by Start then End, in place.
func Sort(ranges []Range) {
	slices.SortFunc(ranges, func(a, b Range) int {
		if c := Compare(a.Start, b.Start); c != 0 {
			return c
		}

		return Compare(a.End, b.End)
	})
}

// Coalesce sorts ranges and merges those that overlap or are adjacent.
//
// The input slice is reordered in place; the returned slice is newly
// allocated. Invalid ranges are dropped.
func Coalesce(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}

	Sort(ranges)

	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if !r.Valid() {
			continue
		}

		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Overlaps(r) || last.Adjacent(r) {
				if Compare(r.End, last.End) > 0 {
					last.End = r.End
				}

				continue
			}
		}
		out = append(out, r)
	}

	return out
}

// Covers reports whether k falls inside any of ranges.
func Covers(ranges []Range, k Key) bool {
	for _, r := range ranges {
		if r.Contains(k) {
			return true
		}
	}

	return false
}
