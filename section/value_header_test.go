package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
)

func TestValueHeader_RoundTrip(t *testing.T) {
	for _, bigEndian := range []bool{false, true} {
		h := NewValueHeader(0x0123456789ABCDEF, format.ValueRange, format.CompressionZstd)
		h.PayloadLength = 4242
		h.Flag.SetHasVisibility(true)
		if bigEndian {
			h.Flag.WithBigEndian()
		}

		data := h.Bytes()
		require.Len(t, data, ValueHeaderSize)

		parsed, err := ParseValueHeader(append(data, 0xAA, 0xBB))
		require.NoError(t, err)
		require.Equal(t, *h, parsed)
		require.Equal(t, bigEndian, parsed.Flag.IsBigEndian())
	}
}

func TestValueHeader_Layout(t *testing.T) {
	h := NewValueHeader(1, format.ValuePoint, format.CompressionNone)
	h.PayloadLength = 2

	data := h.Bytes()
	require.Equal(t, []byte{
		0x10, 0xC4, // options, little-endian
		byte(format.CompressionNone), byte(format.ValuePoint),
		1, 0, 0, 0, 0, 0, 0, 0,
		2, 0, 0, 0,
	}, data)

	prefixed := h.AppendTo([]byte{0xFF})
	require.Equal(t, byte(0xFF), prefixed[0])
	require.Equal(t, data, prefixed[1:])
}

func TestValueHeader_ParseErrors(t *testing.T) {
	valid := NewValueHeader(7, format.ValuePoint, format.CompressionS2).Bytes()

	t.Run("short", func(t *testing.T) {
		_, err := ParseValueHeader(valid[:10])
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

		h := &ValueHeader{}
		require.ErrorIs(t, h.Parse(append(valid, 0)), errs.ErrInvalidHeaderSize)
	})

	t.Run("descriptor magic", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		putOptions(data, MagicDescriptorV1Opt)
		_, err := ParseValueHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
	})

	t.Run("unknown compression", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[2] = 0x0F
		_, err := ParseValueHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("unknown kind", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		data[3] = 0
		_, err := ParseValueHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})
}

func TestDescriptorHeader_RoundTrip(t *testing.T) {
	h := NewDescriptorHeader(format.CurveHilbert, 3, 4, format.CompressionLZ4)
	h.BodyLength = 120
	h.Checksum = 0xDEADBEEF

	data := h.Bytes()
	require.Len(t, data, DescriptorHeaderSize)

	parsed, err := ParseDescriptorHeader(data)
	require.NoError(t, err)
	require.Equal(t, *h, parsed)

	data[7] = 1
	_, err = ParseDescriptorHeader(data)
	require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)

	_, err = ParseDescriptorHeader(data[:4])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	_, err = ParseDescriptorHeader(NewValueHeader(1, format.ValuePoint, format.CompressionNone).Bytes())
	require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)
}

func BenchmarkValueHeader_Parse(b *testing.B) {
	data := NewValueHeader(0x0123456789ABCDEF, format.ValueRange, format.CompressionZstd).Bytes()

	b.ReportAllocs()
	for b.Loop() {
		_, _ = ParseValueHeader(data)
	}
}
