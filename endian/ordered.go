package endian

import "encoding/binary"

// OrderedInt64Size is the encoded size of an ordered int64.
const OrderedInt64Size = 8

// AppendOrderedInt64 appends v so that byte-lexicographic order of the encoded
// values equals the numeric order of v, negative values included. The sign bit
// is flipped and the result written big-endian.
func AppendOrderedInt64(buf []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(v)^(1<<63)) //nolint: gosec
}

// OrderedInt64 decodes a value written by AppendOrderedInt64. b must hold at
// least OrderedInt64Size bytes.
func OrderedInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63)) //nolint: gosec
}
