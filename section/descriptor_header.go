package section

import (
	"fmt"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
)

// DescriptorHeader is the fixed 16-byte header of a binary index descriptor.
//
// Layout:
//
//	Bytes  | Field         | Description
//	-------|---------------|------------------------------------------
//	0-1    | Options       | Flag word, magic 0xC420
//	2      | Curve         | format.CurveType
//	3      | Dimensions    | Number of dimensions
//	4-5    | MaxDuplicates | Largest number of keys per range-valued record
//	6      | Compression   | format.CompressionType of stored values
//	7      | Reserved      | Must be zero
//	8-11   | BodyLength    | Length of the descriptor body in bytes
//	12-15  | Checksum      | Low 32 bits of the xxHash64 of the body
type DescriptorHeader struct {
	Flag          Flag
	Curve         format.CurveType
	Dimensions    uint8
	MaxDuplicates uint16
	Compression   format.CompressionType
	BodyLength    uint32
	Checksum      uint32
}

// NewDescriptorHeader creates a little-endian descriptor header.
func NewDescriptorHeader(curve format.CurveType, dims int, maxDuplicates int, compression format.CompressionType) *DescriptorHeader {
	return &DescriptorHeader{
		Flag:          NewFlag(MagicDescriptorV1Opt),
		Curve:         curve,
		Dimensions:    uint8(dims),          //nolint: gosec
		MaxDuplicates: uint16(maxDuplicates), //nolint: gosec
		Compression:   compression,
	}
}

// Parse parses the header from a byte slice of exactly DescriptorHeaderSize bytes.
func (h *DescriptorHeader) Parse(data []byte) error {
	if len(data) != DescriptorHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Flag.Options = parseOptions(data)
	if err := h.Flag.Validate(MagicDescriptorV1Opt); err != nil {
		return err
	}
	if data[7] != 0 {
		return fmt.Errorf("%w: reserved byte is %#x", errs.ErrInvalidHeaderFlags, data[7])
	}

	engine := h.Flag.GetEndianEngine()
	h.Curve = format.CurveType(data[2])
	h.Dimensions = data[3]
	h.MaxDuplicates = engine.Uint16(data[4:6])
	h.Compression = format.CompressionType(data[6])
	h.BodyLength = engine.Uint32(data[8:12])
	h.Checksum = engine.Uint32(data[12:16])

	if !validCompression(h.Compression) {
		return fmt.Errorf("%w: compression %d", errs.ErrInvalidHeaderFlags, h.Compression)
	}

	return nil
}

// Bytes serializes the header into a new 16-byte slice.
func (h *DescriptorHeader) Bytes() []byte {
	engine := h.Flag.GetEndianEngine()

	b := make([]byte, DescriptorHeaderSize)
	putOptions(b[0:2], h.Flag.Options)
	b[2] = byte(h.Curve)
	b[3] = h.Dimensions
	engine.PutUint16(b[4:6], h.MaxDuplicates)
	b[6] = byte(h.Compression)
	engine.PutUint32(b[8:12], h.BodyLength)
	engine.PutUint32(b[12:16], h.Checksum)

	return b
}

// ParseDescriptorHeader parses a DescriptorHeader from the front of data.
func ParseDescriptorHeader(data []byte) (DescriptorHeader, error) {
	if len(data) < DescriptorHeaderSize {
		return DescriptorHeader{}, errs.ErrInvalidHeaderSize
	}

	h := DescriptorHeader{}
	if err := h.Parse(data[:DescriptorHeaderSize]); err != nil {
		return DescriptorHeader{}, err
	}

	return h, nil
}
