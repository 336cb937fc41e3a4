package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/arloliu/geokey/endian"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/internal/pool"
)

// ValueType tags a typed value in the payload.
type ValueType uint8

const (
	TypeNull    ValueType = 0x0
	TypeBool    ValueType = 0x1
	TypeInt64   ValueType = 0x2
	TypeFloat64 ValueType = 0x3
	TypeString  ValueType = 0x4
	TypeBytes   ValueType = 0x5
	TypeTime    ValueType = 0x6
)

// FieldEncoder appends primitives and typed values to a pooled buffer.
//
// A FieldEncoder is not safe for concurrent use.
type FieldEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

// NewFieldEncoder creates an encoder writing fixed-width numbers with engine.
func NewFieldEncoder(engine endian.EndianEngine) *FieldEncoder {
	return &FieldEncoder{
		engine: engine,
		buf:    pool.GetPayloadBuffer(),
	}
}

// WriteUvarint appends an unsigned varint.
func (e *FieldEncoder) WriteUvarint(v uint64) {
	e.buf.B = binary.AppendUvarint(e.buf.B, v)
}

// WriteVarint appends a zigzag encoded signed varint.
func (e *FieldEncoder) WriteVarint(v int64) {
	e.buf.B = binary.AppendVarint(e.buf.B, v)
}

// WriteString appends a uvarint length followed by the string bytes.
func (e *FieldEncoder) WriteString(s string) {
	e.buf.Grow(binary.MaxVarintLen64 + len(s))
	e.WriteUvarint(uint64(len(s)))
	e.buf.B = append(e.buf.B, s...)
}

// WriteBytes appends a uvarint length followed by b.
func (e *FieldEncoder) WriteBytes(b []byte) {
	e.buf.Grow(binary.MaxVarintLen64 + len(b))
	e.WriteUvarint(uint64(len(b)))
	e.buf.MustWrite(b)
}

// WriteFloat64 appends the IEEE 754 bits of f.
func (e *FieldEncoder) WriteFloat64(f float64) {
	e.buf.B = e.engine.AppendUint64(e.buf.B, math.Float64bits(f))
}

// WriteValue appends a type byte and the value.
//
// Returns errs.ErrUnsupportedType for types outside the payload model.
func (e *FieldEncoder) WriteValue(v any) error {
	switch val := v.(type) {
	case nil:
		_ = e.buf.WriteByte(byte(TypeNull))
	case bool:
		b := byte(0)
		if val {
			b = 1
		}
		e.buf.B = append(e.buf.B, byte(TypeBool), b)
	case int:
		e.writeInt(int64(val))
	case int32:
		e.writeInt(int64(val))
	case int64:
		e.writeInt(val)
	case uint32:
		e.writeInt(int64(val))
	case float32:
		e.writeFloat(float64(val))
	case float64:
		e.writeFloat(val)
	case string:
		_ = e.buf.WriteByte(byte(TypeString))
		e.WriteString(val)
	case []byte:
		_ = e.buf.WriteByte(byte(TypeBytes))
		e.WriteBytes(val)
	case time.Time:
		_ = e.buf.WriteByte(byte(TypeTime))
		e.WriteVarint(val.Unix())
		e.WriteUvarint(uint64(val.Nanosecond())) //nolint: gosec
	default:
		return fmt.Errorf("%w: %T", errs.ErrUnsupportedType, v)
	}

	return nil
}

func (e *FieldEncoder) writeInt(v int64) {
	_ = e.buf.WriteByte(byte(TypeInt64))
	e.WriteVarint(v)
}

func (e *FieldEncoder) writeFloat(v float64) {
	_ = e.buf.WriteByte(byte(TypeFloat64))
	e.WriteFloat64(v)
}

// WriteField appends a named typed value and counts it.
func (e *FieldEncoder) WriteField(name string, v any) error {
	mark := e.buf.Len()
	e.WriteString(name)
	if err := e.WriteValue(v); err != nil {
		e.buf.B = e.buf.B[:mark]
		return fmt.Errorf("field %q: %w", name, err)
	}
	e.count++

	return nil
}

// Bytes returns the encoded payload. The slice is owned by the encoder and
// becomes invalid after Reset or Finish.
func (e *FieldEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of fields written with WriteField.
func (e *FieldEncoder) Len() int {
	return e.count
}

// Size returns the payload size in bytes.
func (e *FieldEncoder) Size() int {
	return e.buf.Len()
}

// Finish returns a copy of the payload and releases the buffer. The encoder
// must not be used afterwards.
func (e *FieldEncoder) Finish() []byte {
	out := e.buf.Clone()
	e.Reset()

	return out
}

// Reset releases the buffer back to the pool. The encoder must not be used
// afterwards.
func (e *FieldEncoder) Reset() {
	if e.buf != nil {
		pool.PutPayloadBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}
