package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/section"
)

const stYAML = `id: st
curve: hilbert
max_duplicates: 4
compression: none
byte_order: little
dimensions:
  - name: lon
    kind: periodic
    min: -180
    max: 180
    bits: 8
  - name: lat
    kind: bounded
    min: -90
    max: 90
    bits: 8
  - name: time
    kind: binned
    origin: 0
    bin_width: 10
    bits: 4
`

func TestDescriptor_FromIndex(t *testing.T) {
	ix := spatialTemporal(t)
	d := ix.Descriptor()

	require.Equal(t, "st", d.ID)
	require.Equal(t, "hilbert", d.Curve)
	require.Equal(t, DefaultMaxDuplicates, d.MaxDuplicates)
	require.Equal(t, "none", d.Compression)
	require.Equal(t, "little", d.ByteOrder)
	require.Equal(t, []DimensionDescriptor{
		{Name: "lon", Kind: "periodic", Min: -180, Max: 180, Bits: 8},
		{Name: "lat", Kind: "bounded", Min: -90, Max: 90, Bits: 8},
		{Name: "time", Kind: "binned", Origin: 0, BinWidth: 10, Bits: 4},
	}, d.Dimensions)

	// the returned descriptor is a copy
	d.Dimensions[0].Bits = 1
	require.Equal(t, uint8(8), ix.Descriptor().Dimensions[0].Bits)
}

func TestDescriptor_YAML(t *testing.T) {
	d, err := ParseDescriptorYAML([]byte(stYAML))
	require.NoError(t, err)
	require.Equal(t, spatialTemporal(t).Descriptor(), d)

	ix, err := FromDescriptor(d)
	require.NoError(t, err)
	require.Equal(t, spatialTemporal(t).Fingerprint(), ix.Fingerprint())

	out, err := d.YAML()
	require.NoError(t, err)
	again, err := ParseDescriptorYAML(out)
	require.NoError(t, err)
	require.Equal(t, d, again)
}

func TestDescriptor_YAML_Errors(t *testing.T) {
	_, err := ParseDescriptorYAML([]byte("id: st\nunknown: 1\n"))
	require.ErrorIs(t, err, errs.ErrInvalidDescriptor)

	_, err = ParseDescriptorYAML([]byte("id: [\n"))
	require.ErrorIs(t, err, errs.ErrInvalidDescriptor)
}

func TestDescriptor_Binary(t *testing.T) {
	for _, opts := range [][]Option{
		nil,
		{WithBigEndianValues(), WithValueCompression(format.CompressionLZ4)},
		{WithCurve(format.CurveZOrder), WithMaxDuplicates(300)},
	} {
		ix := spatialTemporal(t, opts...)
		d := ix.Descriptor()

		data, err := d.MarshalBinary()
		require.NoError(t, err)

		header, err := section.ParseDescriptorHeader(data)
		require.NoError(t, err)
		require.Equal(t, ix.Curve(), header.Curve)
		require.Equal(t, uint8(3), header.Dimensions)
		require.Equal(t, uint16(ix.MaxDuplicates()), header.MaxDuplicates)
		require.Equal(t, ix.Compression(), header.Compression)
		require.Len(t, data, section.DescriptorHeaderSize+int(header.BodyLength))

		got, err := UnmarshalDescriptor(data)
		require.NoError(t, err)
		require.Equal(t, d, got)

		rebuilt, err := FromDescriptor(got)
		require.NoError(t, err)
		require.Equal(t, ix.Fingerprint(), rebuilt.Fingerprint())
	}
}

func TestDescriptor_Binary_Errors(t *testing.T) {
	data, err := spatialTemporal(t).Descriptor().MarshalBinary()
	require.NoError(t, err)

	_, err = UnmarshalDescriptor(data[:section.DescriptorHeaderSize-1])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	_, err = UnmarshalDescriptor(data[:len(data)-1])
	require.ErrorIs(t, err, errs.ErrInvalidDescriptor)

	corrupt := append([]byte(nil), data...)
	corrupt[len(corrupt)-1] ^= 0xFF
	_, err = UnmarshalDescriptor(corrupt)
	require.ErrorIs(t, err, errs.ErrInvalidDescriptor)

	badMagic := append([]byte(nil), data...)
	badMagic[1] = 0x00
	_, err = UnmarshalDescriptor(badMagic)
	require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)

	_, err = Descriptor{ID: "x", Curve: "hilbert"}.MarshalBinary()
	require.ErrorIs(t, err, errs.ErrInvalidDescriptor)
}

func TestDescriptor_Fingerprint(t *testing.T) {
	base := spatialTemporal(t).Fingerprint()
	require.Equal(t, base, spatialTemporal(t).Fingerprint())

	// query-side limits do not change where data lives
	require.Equal(t, base, spatialTemporal(t, WithMaxBins(10, 10)).Fingerprint())

	dim := mustDim(t)
	variants := map[string]*Index{
		"curve":       spatialTemporal(t, WithCurve(format.CurveZOrder)),
		"duplicates":  spatialTemporal(t, WithMaxDuplicates(8)),
		"compression": spatialTemporal(t, WithValueCompression(format.CompressionS2)),
		"byte order":  spatialTemporal(t, WithBigEndianValues()),
	}
	ix, err := New("st", []Dimension{
		dim(Periodic("lon", -180, 180, 8)),
		dim(Bounded("lat", -90, 90, 9)),
		dim(Binned("time", 0, 10, 4)),
	})
	require.NoError(t, err)
	variants["bits"] = ix

	ix, err = New("other", spatialTemporal(t).Dimensions())
	require.NoError(t, err)
	variants["id"] = ix

	for name, v := range variants {
		require.NotEqual(t, base, v.Fingerprint(), name)
	}
}

func TestFromDescriptor_Errors(t *testing.T) {
	valid := func() Descriptor { return spatialTemporal(t).Descriptor() }

	tests := []struct {
		name   string
		mutate func(d *Descriptor)
		want   error
	}{
		{name: "unknown curve", mutate: func(d *Descriptor) { d.Curve = "peano" }, want: errs.ErrUnknownCurve},
		{name: "unknown compression", mutate: func(d *Descriptor) { d.Compression = "brotli" }, want: errs.ErrInvalidDescriptor},
		{name: "unknown byte order", mutate: func(d *Descriptor) { d.ByteOrder = "middle" }, want: errs.ErrInvalidDescriptor},
		{name: "unknown kind", mutate: func(d *Descriptor) { d.Dimensions[0].Kind = "spiral" }, want: errs.ErrInvalidDescriptor},
		{name: "invalid bounds", mutate: func(d *Descriptor) { d.Dimensions[1].Max = -90 }, want: errs.ErrInvalidBounds},
		{name: "invalid bin width", mutate: func(d *Descriptor) { d.Dimensions[2].BinWidth = 0 }, want: errs.ErrInvalidBounds},
		{name: "empty id", mutate: func(d *Descriptor) { d.ID = "" }, want: errs.ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.mutate(&d)
			_, err := FromDescriptor(d)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFromDescriptor_OptionsOverride(t *testing.T) {
	ix, err := FromDescriptor(spatialTemporal(t).Descriptor(), WithCurve(format.CurveZOrder))
	require.NoError(t, err)
	require.Equal(t, format.CurveZOrder, ix.Curve())
	require.Equal(t, spatialTemporal(t, WithCurve(format.CurveZOrder)).Fingerprint(), ix.Fingerprint())
}
