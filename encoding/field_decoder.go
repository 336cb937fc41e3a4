package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/arloliu/geokey/endian"
	"github.com/arloliu/geokey/errs"
)

// FieldDecoder reads a payload written by FieldEncoder. Strings and byte
// slices returned by the decoder do not alias the input.
type FieldDecoder struct {
	data   []byte
	pos    int
	engine endian.EndianEngine
}

// NewFieldDecoder creates a decoder over data using engine for fixed-width numbers.
func NewFieldDecoder(data []byte, engine endian.EndianEngine) *FieldDecoder {
	return &FieldDecoder{data: data, engine: engine}
}

// Remaining returns the number of unread bytes.
func (d *FieldDecoder) Remaining() int {
	return len(d.data) - d.pos
}

func (d *FieldDecoder) corrupt(what string) error {
	return fmt.Errorf("%w: truncated %s at offset %d", errs.ErrInvalidValuePayload, what, d.pos)
}

// ReadUvarint reads an unsigned varint.
func (d *FieldDecoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.data[d.pos:])
	if n <= 0 {
		return 0, d.corrupt("uvarint")
	}
	d.pos += n

	return v, nil
}

// ReadVarint reads a zigzag encoded signed varint.
func (d *FieldDecoder) ReadVarint() (int64, error) {
	v, n := binary.Varint(d.data[d.pos:])
	if n <= 0 {
		return 0, d.corrupt("varint")
	}
	d.pos += n

	return v, nil
}

func (d *FieldDecoder) readLength(what string) (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.Remaining()) {
		return 0, d.corrupt(what)
	}

	return int(n), nil //nolint: gosec
}

// ReadString reads a length-prefixed string.
func (d *FieldDecoder) ReadString() (string, error) {
	n, err := d.readLength("string")
	if err != nil {
		return "", err
	}
	s := string(d.data[d.pos : d.pos+n])
	d.pos += n

	return s, nil
}

// ReadBytes reads a length-prefixed byte slice.
func (d *FieldDecoder) ReadBytes() ([]byte, error) {
	n, err := d.readLength("bytes")
	if err != nil {
		return nil, err
	}
	b := append([]byte(nil), d.data[d.pos:d.pos+n]...)
	d.pos += n

	return b, nil
}

// ReadFloat64 reads an IEEE 754 float64.
func (d *FieldDecoder) ReadFloat64() (float64, error) {
	if d.Remaining() < 8 {
		return 0, d.corrupt("float64")
	}
	v := math.Float64frombits(d.engine.Uint64(d.data[d.pos : d.pos+8]))
	d.pos += 8

	return v, nil
}

// ReadValue reads a typed value.
func (d *FieldDecoder) ReadValue() (any, error) {
	if d.Remaining() < 1 {
		return nil, d.corrupt("value type")
	}
	typ := ValueType(d.data[d.pos])
	d.pos++

	switch typ {
	case TypeNull:
		return nil, nil
	case TypeBool:
		if d.Remaining() < 1 {
			return nil, d.corrupt("bool")
		}
		b := d.data[d.pos]
		d.pos++

		return b == 1, nil
	case TypeInt64:
		return d.ReadVarint()
	case TypeFloat64:
		return d.ReadFloat64()
	case TypeString:
		return d.ReadString()
	case TypeBytes:
		return d.ReadBytes()
	case TypeTime:
		sec, err := d.ReadVarint()
		if err != nil {
			return nil, err
		}
		nsec, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if nsec >= uint64(time.Second) {
			return nil, fmt.Errorf("%w: nanoseconds %d out of range", errs.ErrInvalidValuePayload, nsec)
		}

		return time.Unix(sec, int64(nsec)).UTC(), nil //nolint: gosec
	default:
		return nil, fmt.Errorf("%w: unknown value type %#x", errs.ErrInvalidValuePayload, byte(typ))
	}
}

// ReadField reads a named typed value written by WriteField.
func (d *FieldDecoder) ReadField() (string, any, error) {
	name, err := d.ReadString()
	if err != nil {
		return "", nil, err
	}
	v, err := d.ReadValue()
	if err != nil {
		return "", nil, fmt.Errorf("field %q: %w", name, err)
	}

	return name, v, nil
}
