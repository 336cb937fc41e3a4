package keyspace

import (
	"bytes"
	"encoding/hex"
)

// Key is an ordered storage key.
type Key []byte

// Compare returns -1, 0 or +1 comparing a and b byte-lexicographically.
func Compare(a, b Key) int {
	return bytes.Compare(a, b)
}

// Equal reports whether both keys hold the same bytes.
func (k Key) Equal(o Key) bool {
	return bytes.Equal(k, o)
}

// Less reports whether k sorts before o.
func (k Key) Less(o Key) bool {
	return bytes.Compare(k, o) < 0
}

// Clone returns a copy of k that does not share memory with it.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}

	return append(Key(nil), k...)
}

// HasPrefix reports whether k starts with prefix.
func (k Key) HasPrefix(prefix []byte) bool {
	return bytes.HasPrefix(k, prefix)
}

func (k Key) String() string {
	return hex.EncodeToString(k)
}

// Successor returns the key following k among keys of the same length, treating
// k as a big-endian unsigned integer. ok is false when k is all 0xFF bytes.
func Successor(k Key) (next Key, ok bool) {
	next = k.Clone()
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			return next, true
		}
	}

	return nil, false
}

// PadRight returns k extended with zero bytes to length n. Keys that are
// already at least n bytes long are returned unchanged.
func PadRight(k Key, n int) Key {
	if len(k) >= n {
		return k
	}

	out := make(Key, n)
	copy(out, k)

	return out
}
