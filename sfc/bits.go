package sfc

// appendBits writes the low k bits of v, most significant first, after the
// first n bits of buf. It always returns a new slice so prefixes can be shared
// between sibling cells.
func appendBits(buf []byte, n int, v uint64, k int) ([]byte, int) {
	out := make([]byte, (n+k+7)/8)
	copy(out, buf[:(n+7)/8])
	for i := k - 1; i >= 0; i-- {
		if v>>uint(i)&1 == 1 {
			setBit(out, n)
		}
		n++
	}

	return out, n
}

// setBit sets bit n (most significant first) of buf.
func setBit(buf []byte, n int) {
	buf[n>>3] |= 0x80 >> uint(n&7)
}

// bitReader reads big-endian bit strings.
type bitReader struct {
	buf []byte
	pos int
}

func (r *bitReader) read(k int) uint64 {
	var v uint64
	for range k {
		v = v<<1 | uint64(r.buf[r.pos>>3]>>(7-uint(r.pos&7))&1)
		r.pos++
	}

	return v
}
