package sfc

import (
	"math/bits"

	"github.com/arloliu/geokey/format"
)

// hilbert is the compact Hilbert index of Hamilton and Rau-Chaplin. Every
// level applies the Gray code transform of the standard n-dimensional Hilbert
// curve, then ranks only the bits of active dimensions, so dimensions may use
// different precisions without padding the key.
type hilbert struct {
	dims int
}

func (hilbert) kind() format.CurveType {
	return format.CurveHilbert
}

func (h hilbert) mask() uint64 {
	return uint64(1)<<uint(h.dims) - 1
}

func (h hilbert) rotr(x uint64, s int) uint64 {
	s %= h.dims
	if s == 0 {
		return x
	}

	return (x>>uint(s) | x<<uint(h.dims-s)) & h.mask()
}

func (h hilbert) rotl(x uint64, s int) uint64 {
	s %= h.dims
	if s == 0 {
		return x
	}

	return (x<<uint(s) | x>>uint(h.dims-s)) & h.mask()
}

func gray(x uint64) uint64 {
	return x ^ x>>1
}

func grayInverse(g uint64) uint64 {
	for shift := uint(1); shift < 64; shift <<= 1 {
		g ^= g >> shift
	}

	return g
}

// entry returns the entry point of sub-cell w.
func entry(w uint64) uint64 {
	if w == 0 {
		return 0
	}

	return gray(2 * ((w - 1) / 2))
}

// direction returns the intra sub-cell direction of sub-cell w.
func (h hilbert) direction(w uint64) int {
	switch {
	case w == 0:
		return 0
	case w&1 == 0:
		return bits.TrailingZeros64(^(w - 1)) % h.dims
	default:
		return bits.TrailingZeros64(^w) % h.dims
	}
}

func (h hilbert) next(st state, w uint64) state {
	return state{
		e: st.e ^ h.rotl(entry(w), st.d+1),
		d: (st.d + h.direction(w) + 1) % h.dims,
	}
}

func (h hilbert) rank(st state, active uint64, l uint64) (uint64, state) {
	mu := h.rotr(active, st.d+1)
	w := grayInverse(h.rotr(l^st.e, st.d+1))

	var r uint64
	for k := h.dims - 1; k >= 0; k-- {
		if mu>>uint(k)&1 == 1 {
			r = r<<1 | w>>uint(k)&1
		}
	}

	return r, h.next(st, w)
}

func (h hilbert) unrank(st state, active uint64, r uint64) (uint64, state) {
	mu := h.rotr(active, st.d+1)
	pi := h.rotr(st.e, st.d+1) &^ mu

	// rebuild w bit by bit from the top; bits outside mu follow from the
	// fixed Gray code bits in pi
	var w, g uint64
	var prev uint64
	j := popcount(mu) - 1
	for k := h.dims - 1; k >= 0; k-- {
		var bit uint64
		if mu>>uint(k)&1 == 1 {
			bit = r >> uint(j) & 1
			j--
			g |= (bit ^ prev) << uint(k)
		} else {
			gb := pi >> uint(k) & 1
			g |= gb << uint(k)
			bit = gb ^ prev
		}
		w |= bit << uint(k)
		prev = bit
	}

	return h.rotl(g, st.d+1) ^ st.e, h.next(st, w)
}
