package index

import (
	"fmt"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/endian"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/keyspace"
)

// DecodedKey is the content of an index key.
type DecodedKey struct {
	// Tier is the tier the key was written at.
	Tier int
	// Bins holds the bin id of every dimension; non-binned dimensions use 0.
	Bins []int64
	// Cell is the raw-domain box of the cell addressed by the key.
	Cell []dimension.Range
	// Point is the raw-domain lower corner of the cell.
	Point []float64
}

// prefixLen returns the length of the tier and bin prefix.
func (ix *Index) prefixLen() int {
	return 1 + endian.OrderedInt64Size*len(ix.binned)
}

// KeyLen returns the length of keys written at tier t.
func (ix *Index) KeyLen(t int) int {
	if t == 0 {
		return ix.prefixLen()
	}

	return ix.prefixLen() + ix.tiers[t].KeyLen()
}

// appendPrefix appends the tier byte and the bin ids of the binned dimensions.
func (ix *Index) appendPrefix(buf []byte, tier int, bins []int64) []byte {
	buf = append(buf, byte(tier))
	for _, j := range ix.binned {
		buf = endian.AppendOrderedInt64(buf, bins[j])
	}

	return buf
}

// DecodeKey splits a key into tier, bins and the cell it addresses.
//
// Returns errs.ErrInvalidKeyLength if the key is truncated or its tier is out
// of range.
func (ix *Index) DecodeKey(key keyspace.Key) (DecodedKey, error) {
	if len(key) < ix.prefixLen() {
		return DecodedKey{}, fmt.Errorf("%w: key of %d bytes is shorter than its prefix", errs.ErrInvalidKeyLength, len(key))
	}

	tier := int(key[0])
	if tier > ix.MaxTier() {
		return DecodedKey{}, fmt.Errorf("%w: tier %d exceeds %d", errs.ErrInvalidKeyLength, tier, ix.MaxTier())
	}
	if len(key) != ix.KeyLen(tier) {
		return DecodedKey{}, fmt.Errorf("%w: got %d bytes, want %d for tier %d", errs.ErrInvalidKeyLength, len(key), ix.KeyLen(tier), tier)
	}

	out := DecodedKey{
		Tier:  tier,
		Bins:  make([]int64, len(ix.dims)),
		Cell:  make([]dimension.Range, len(ix.dims)),
		Point: make([]float64, len(ix.dims)),
	}
	pos := 1
	for _, j := range ix.binned {
		out.Bins[j] = endian.OrderedInt64(key[pos:])
		pos += endian.OrderedInt64Size
	}

	norm := make([]dimension.Range, len(ix.dims))
	if tier == 0 {
		for j := range norm {
			norm[j] = dimension.Range{Min: 0, Max: 1}
		}
	} else {
		s := ix.tiers[tier]
		cell, err := s.Cell(key[pos:])
		if err != nil {
			return DecodedKey{}, err
		}
		norm = s.CellBounds(cell)
	}

	for j, d := range ix.dims {
		out.Cell[j] = ix.denormalize(d, out.Bins[j], norm[j])
		out.Point[j] = out.Cell[j].Min
	}

	return out, nil
}

func (ix *Index) denormalize(d Dimension, bin int64, n dimension.Range) dimension.Range {
	if b, ok := d.binner(); ok {
		return dimension.Range{Min: b.DenormalizeBin(bin, n.Min), Max: b.DenormalizeBin(bin, n.Max)}
	}

	return dimension.Range{Min: d.Definition.Denormalize(n.Min), Max: d.Definition.Denormalize(n.Max)}
}
