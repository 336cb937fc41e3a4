package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/geokey/endian"
	"github.com/arloliu/geokey/errs"
)

func TestFlag(t *testing.T) {
	f := NewFlag(MagicValueV1Opt)

	require.Equal(t, uint16(MagicValueV1Opt), f.GetMagicNumber())
	require.True(t, f.IsLittleEndian())
	require.False(t, f.HasVisibility())
	require.Equal(t, endian.GetLittleEndianEngine(), f.GetEndianEngine())

	f.WithBigEndian()
	require.True(t, f.IsBigEndian())
	require.Equal(t, endian.GetBigEndianEngine(), f.GetEndianEngine())
	f.WithLittleEndian()
	require.True(t, f.IsLittleEndian())

	f.SetHasVisibility(true)
	require.True(t, f.HasVisibility())
	require.Equal(t, uint16(MagicValueV1Opt), f.GetMagicNumber(), "flag bits must not touch the magic")
	f.SetHasVisibility(false)
	require.False(t, f.HasVisibility())
}

func TestFlag_Validate(t *testing.T) {
	tests := []struct {
		name    string
		options uint16
		magic   uint16
		err     error
	}{
		{"value magic", MagicValueV1Opt | EndiannessMask | VisibilityMask, MagicValueV1Opt, nil},
		{"descriptor magic", MagicDescriptorV1Opt, MagicDescriptorV1Opt, nil},
		{"wrong magic", MagicDescriptorV1Opt, MagicValueV1Opt, errs.ErrInvalidMagicNumber},
		{"zero", 0, MagicValueV1Opt, errs.ErrInvalidMagicNumber},
		{"reserved bit", MagicValueV1Opt | 0x0004, MagicValueV1Opt, errs.ErrInvalidHeaderFlags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Flag{Options: tt.options}.Validate(tt.magic)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
		})
	}
}
