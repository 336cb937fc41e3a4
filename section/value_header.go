package section

import (
	"fmt"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
)

// ValueHeader is the fixed 16-byte header written in front of every value
// stored under an index key.
//
// Layout:
//
//	Bytes  | Field         | Description
//	-------|---------------|------------------------------------------
//	0-1    | Options       | Flag word, magic 0xC410
//	2      | Compression   | format.CompressionType of the payload
//	3      | Kind          | format.ValueKind of the indexed value
//	4-11   | Fingerprint   | Fingerprint of the index that wrote the value
//	12-15  | PayloadLength | Length of the (compressed) payload in bytes
type ValueHeader struct {
	Flag          Flag
	Compression   format.CompressionType
	Kind          format.ValueKind
	Fingerprint   uint64
	PayloadLength uint32
}

// NewValueHeader creates a header for a value written by the index with the
// given fingerprint.
func NewValueHeader(fingerprint uint64, kind format.ValueKind, compression format.CompressionType) *ValueHeader {
	return &ValueHeader{
		Flag:        NewFlag(MagicValueV1Opt),
		Compression: compression,
		Kind:        kind,
		Fingerprint: fingerprint,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 16 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrInvalidMagicNumber or ErrInvalidHeaderFlags
func (h *ValueHeader) Parse(data []byte) error {
	if len(data) != ValueHeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Flag.Options = parseOptions(data)
	if err := h.Flag.Validate(MagicValueV1Opt); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()
	h.Compression = format.CompressionType(data[2])
	h.Kind = format.ValueKind(data[3])
	h.Fingerprint = engine.Uint64(data[4:12])
	h.PayloadLength = engine.Uint32(data[12:16])

	if !validCompression(h.Compression) {
		return fmt.Errorf("%w: compression %d", errs.ErrInvalidHeaderFlags, h.Compression)
	}
	if h.Kind != format.ValuePoint && h.Kind != format.ValueRange {
		return fmt.Errorf("%w: value kind %d", errs.ErrInvalidHeaderFlags, h.Kind)
	}

	return nil
}

// Bytes serializes the header into a new 16-byte slice.
func (h *ValueHeader) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, ValueHeaderSize))
}

// AppendTo appends the serialized header to buf.
func (h *ValueHeader) AppendTo(buf []byte) []byte {
	engine := h.Flag.GetEndianEngine()

	var opts [2]byte
	putOptions(opts[:], h.Flag.Options)
	buf = append(buf, opts[0], opts[1], byte(h.Compression), byte(h.Kind))
	buf = engine.AppendUint64(buf, h.Fingerprint)
	buf = engine.AppendUint32(buf, h.PayloadLength)

	return buf
}

// ParseValueHeader parses a ValueHeader from the front of data.
//
// Returns:
//   - ValueHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize if data is shorter than 16 bytes, or flag validation errors
func ParseValueHeader(data []byte) (ValueHeader, error) {
	if len(data) < ValueHeaderSize {
		return ValueHeader{}, errs.ErrInvalidHeaderSize
	}

	h := ValueHeader{}
	if err := h.Parse(data[:ValueHeaderSize]); err != nil {
		return ValueHeader{}, err
	}

	return h, nil
}
