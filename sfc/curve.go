package sfc

import (
	"fmt"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
)

// state is the orientation of a curve cell. Z-order is stateless; the Hilbert
// curve tracks the entry point e and the intra-cell direction d.
type state struct {
	e uint64
	d int
}

// curve orders the 2^k children of a cell, k being the number of dimensions
// active at the level. l holds one bit per dimension (bit j for dimension j);
// inactive dimensions are always 0 in l.
type curve interface {
	kind() format.CurveType
	// rank returns the position of child l in curve order and the child state.
	rank(st state, active uint64, l uint64) (uint64, state)
	// unrank is the inverse of rank.
	unrank(st state, active uint64, r uint64) (uint64, state)
}

func newCurve(t format.CurveType, dims int) (curve, error) {
	switch t {
	case format.CurveZOrder:
		return zOrder{dims: dims}, nil
	case format.CurveHilbert:
		return hilbert{dims: dims}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownCurve, t)
	}
}

// zOrder interleaves bits with dimension 0 as the most significant bit of
// every level.
type zOrder struct {
	dims int
}

func (zOrder) kind() format.CurveType {
	return format.CurveZOrder
}

func (z zOrder) rank(st state, active uint64, l uint64) (uint64, state) {
	var r uint64
	for j := range z.dims {
		if active>>uint(j)&1 == 1 {
			r = r<<1 | l>>uint(j)&1
		}
	}

	return r, st
}

func (z zOrder) unrank(st state, active uint64, r uint64) (uint64, state) {
	var l uint64
	for j := z.dims - 1; j >= 0; j-- {
		if active>>uint(j)&1 == 1 {
			l |= (r & 1) << uint(j)
			r >>= 1
		}
	}

	return l, st
}
