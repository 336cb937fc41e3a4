// Package dimension defines how raw per-dimension values are mapped onto the
// normalized unit interval used by the space filling curves.
//
// A Definition owns the bounds and the normalization policy of one index
// dimension:
//
//   - Bounded dimensions clamp values outside [min, max] to the nearest bound.
//   - Periodic dimensions (longitude, hour of day) wrap values modulo the span.
//     The upper bound is the same point as the lower bound and normalizes to 0.
//   - Binned dimensions split an unbounded axis (time) into fixed-width bins;
//     a value normalizes to its position inside its bin and the bin index
//     becomes part of the storage key.
//
// Ranges are decomposed into BinRanges: one per wrap-around segment or per
// touched bin. The union of the BinRanges produced for a range is exactly the
// normalized image of the clamped (or wrapped) range. Normalization never
// fails; callers that need strict validation check bounds before calling.
//
// Definitions are immutable after construction and safe for concurrent use.
package dimension
