// Package encoding implements the compact binary codec for the attribute
// payload stored next to every index key.
//
// A payload is a sequence of primitives written by FieldEncoder and read back
// in the same order by FieldDecoder:
//
//   - unsigned and zigzag varints
//   - length-prefixed strings and byte slices (uvarint length)
//   - float64 values in the configured byte order
//   - typed values: one type byte followed by the value
//
// Typed values cover what field handlers produce: nil, bool, int64, float64,
// string, []byte and time.Time. Integers of other widths are widened to int64
// and float32 to float64.
//
// Encoders draw their buffer from internal/pool; call Finish to take a private
// copy of the payload and release the buffer.
package encoding
