package section

import (
	"github.com/arloliu/geokey/endian"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
)

// Flag is the packed 16-bit options word shared by every section header.
//
// Bit 0 marks a value that carries a visibility label, bit 1 selects big-endian
// payloads, bits 2-3 are reserved and must be zero, and bits 4-15 hold the
// magic number identifying the section.
type Flag struct {
	Options uint16
}

// NewFlag creates a little-endian flag carrying magic.
func NewFlag(magic uint16) Flag {
	return Flag{Options: magic & MagicNumberMask}
}

// HasVisibility returns whether the section carries a visibility label.
func (f Flag) HasVisibility() bool {
	return (f.Options & VisibilityMask) != 0
}

// SetHasVisibility enables or disables the visibility bit.
func (f *Flag) SetHasVisibility(enabled bool) {
	if enabled {
		f.Options |= VisibilityMask
	} else {
		f.Options &^= VisibilityMask
	}
}

// IsLittleEndian returns whether the payload is little-endian.
func (f Flag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the payload is big-endian.
func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// WithBigEndian sets big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// GetMagicNumber returns the magic number from the Options field.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// Validate checks the magic number and the reserved bits.
func (f Flag) Validate(magic uint16) error {
	if f.GetMagicNumber() != magic {
		return errs.ErrInvalidMagicNumber
	}
	if f.Options&ReservedBitsMask != 0 {
		return errs.ErrInvalidHeaderFlags
	}

	return nil
}

// GetEndianEngine returns the endian engine selected by the flag.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

func validCompression(c format.CompressionType) bool {
	switch c {
	case format.CompressionNone, format.CompressionZstd, format.CompressionS2,
		format.CompressionLZ4, format.CompressionSnappy:
		return true
	default:
		return false
	}
}

// parseOptions reads the options word, which is always little-endian so the
// endianness bit can be found before the rest of the header is decoded.
func parseOptions(data []byte) uint16 {
	return uint16(data[0]) | uint16(data[1])<<8
}

func putOptions(b []byte, options uint16) {
	b[0] = byte(options)
	b[1] = byte(options >> 8)
}
