package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/field"
	"github.com/arloliu/geokey/format"
	"github.com/arloliu/geokey/index"
	"github.com/arloliu/geokey/section"
)

const day = float64(24 * time.Hour / time.Millisecond)

var (
	start = time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)
	end   = start.Add(4 * time.Hour)
)

func trackIndex(t testing.TB, opts ...index.Option) *index.Index {
	t.Helper()

	lon, err := index.Periodic("lon", -180, 180, 10)
	require.NoError(t, err)
	lat, err := index.Bounded("lat", -90, 90, 10)
	require.NoError(t, err)
	tm, err := index.Binned("time", 0, day, 8)
	require.NoError(t, err)

	ix, err := index.New("tracks", []index.Dimension{lon, lat, tm}, opts...)
	require.NoError(t, err)

	return ix
}

func trackBindings(vis field.VisibilityHandler) []Binding {
	return []Binding{
		{Dimension: "lon", Handler: field.NewNumericHandler("lon", vis)},
		{Dimension: "lat", Handler: field.NewNumericHandler("lat", vis)},
		{Dimension: "time", Handler: field.NewTimeRangeHandler(
			field.TimeAttribute{Name: "start", Binding: field.BindingTime},
			field.TimeAttribute{Name: "end", Binding: field.BindingTime},
			vis,
		)},
	}
}

func trackRecord() field.MapRecord {
	return field.MapRecord{
		"lon":   13.4,
		"lat":   52.5,
		"start": start,
		"end":   end,
		"name":  "morning run",
		"laps":  3,
	}
}

func TestNew_Errors(t *testing.T) {
	ix := trackIndex(t)
	bindings := trackBindings(nil)

	_, err := New(ix, bindings[:2])
	require.ErrorIs(t, err, errs.ErrMissingField)

	_, err = New(ix, append(bindings, Binding{Dimension: "lat", Handler: field.NewNumericHandler("lat", nil)}))
	require.ErrorIs(t, err, errs.ErrDuplicateDimension)

	_, err = New(ix, append(bindings, Binding{Dimension: "alt", Handler: field.NewNumericHandler("alt", nil)}))
	require.ErrorIs(t, err, errs.ErrDimensionMismatch)
}

func TestAdapter_PayloadFields(t *testing.T) {
	a, err := New(trackIndex(t), trackBindings(nil), WithPayloadFields("name", "lat", ""))
	require.NoError(t, err)
	require.Equal(t, []string{"lon", "lat", "start", "end", "name"}, a.PayloadFields())
}

func TestAdapter_EncodeDecode(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2,
		format.CompressionLZ4, format.CompressionSnappy,
	}

	for _, c := range compressions {
		for _, bigEndian := range []bool{false, true} {
			opts := []index.Option{index.WithValueCompression(c)}
			if bigEndian {
				opts = append(opts, index.WithBigEndianValues())
			}

			t.Run(c.String(), func(t *testing.T) {
				ix := trackIndex(t, opts...)
				a, err := New(ix, trackBindings(field.GlobalVisibility("team")), WithPayloadFields("name", "laps"))
				require.NoError(t, err)

				entries, err := a.EncodeRecord(trackRecord())
				require.NoError(t, err)
				require.NotEmpty(t, entries)
				require.LessOrEqual(t, len(entries), 2*ix.MaxDuplicates())

				header, err := section.ParseValueHeader(entries[0].Value)
				require.NoError(t, err)
				require.Equal(t, ix.Fingerprint(), header.Fingerprint)
				require.Equal(t, c, header.Compression)
				require.Equal(t, format.ValueRange, header.Kind)
				require.True(t, header.Flag.HasVisibility())
				require.Equal(t, bigEndian, header.Flag.IsBigEndian())

				decoded, err := a.DecodeEntry(entries[0].Value)
				require.NoError(t, err)
				require.Equal(t, "team", decoded.Visibility)
				require.Equal(t, format.ValueRange, decoded.Kind)
				require.Equal(t, []dimension.Range{
					dimension.Point(13.4),
					dimension.Point(52.5),
					{Min: float64(start.UnixMilli()), Max: float64(end.UnixMilli())},
				}, decoded.Ranges)
				require.Equal(t, field.MapRecord{
					"lon":   13.4,
					"lat":   52.5,
					"start": start,
					"end":   end,
					"name":  "morning run",
					"laps":  int64(3),
				}, decoded.Fields)

				natives, err := a.NativeValues(decoded)
				require.NoError(t, err)
				require.Equal(t, []field.NativeValue{
					{FieldID: "lon", Value: 13.4},
					{FieldID: "lat", Value: 52.5},
					{FieldID: "start", Value: start},
					{FieldID: "end", Value: end},
				}, natives)
			})
		}
	}
}

func TestAdapter_EncodeRecord_CrossesBins(t *testing.T) {
	ix := trackIndex(t)
	a, err := New(ix, trackBindings(nil))
	require.NoError(t, err)

	// 22:00 to 02:00 spans midnight
	entries, err := a.EncodeRecord(trackRecord())
	require.NoError(t, err)

	bins := map[int64]bool{}
	for _, e := range entries {
		decoded, err := ix.DecodeKey(e.Key)
		require.NoError(t, err)
		bins[decoded.Bins[2]] = true
	}
	first := int64(float64(start.UnixMilli()) / day)
	require.Equal(t, map[int64]bool{first: true, first + 1: true}, bins)

	plan, err := ix.PlanQuery([]dimension.Range{
		{Min: 13, Max: 14},
		{Min: 52, Max: 53},
		dimension.Point(float64(end.Add(-time.Hour).UnixMilli())),
	}, 32)
	require.NoError(t, err)

	covered := false
	for _, e := range entries {
		covered = covered || plan.Covers(e.Key)
	}
	require.True(t, covered)
}

func TestAdapter_Visibility(t *testing.T) {
	perField := field.VisibilityFunc(func(_ field.Record, fieldID string, _ any) string {
		if fieldID == "end" {
			return "b"
		}

		return "a"
	})

	a, err := New(trackIndex(t), trackBindings(perField))
	require.NoError(t, err)

	entries, err := a.Encode(trackRecord(), "ops")
	require.NoError(t, err)
	decoded, err := a.DecodeEntry(entries[0].Value)
	require.NoError(t, err)
	require.Equal(t, "ops:a:a:b", decoded.Visibility)

	plain, err := New(trackIndex(t), trackBindings(nil))
	require.NoError(t, err)
	entries, err = plain.EncodeRecord(trackRecord())
	require.NoError(t, err)
	header, err := section.ParseValueHeader(entries[0].Value)
	require.NoError(t, err)
	require.False(t, header.Flag.HasVisibility())
}

func TestAdapter_PointRecord(t *testing.T) {
	ix := trackIndex(t)
	a, err := New(ix, trackBindings(nil))
	require.NoError(t, err)

	r := trackRecord()
	r["end"] = start
	entries, err := a.EncodeRecord(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, byte(ix.MaxTier()), entries[0].Key[0])

	header, err := section.ParseValueHeader(entries[0].Value)
	require.NoError(t, err)
	require.Equal(t, format.ValuePoint, header.Kind)
}

func TestAdapter_DecodeEntry_SchemaMismatch(t *testing.T) {
	writer, err := New(trackIndex(t), trackBindings(nil))
	require.NoError(t, err)
	reader, err := New(trackIndex(t, index.WithCurve(format.CurveZOrder)), trackBindings(nil))
	require.NoError(t, err)

	entries, err := writer.EncodeRecord(trackRecord())
	require.NoError(t, err)

	_, err = reader.DecodeEntry(entries[0].Value)
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestAdapter_DecodeEntry_Corrupt(t *testing.T) {
	a, err := New(trackIndex(t), trackBindings(nil))
	require.NoError(t, err)
	entries, err := a.EncodeRecord(trackRecord())
	require.NoError(t, err)
	value := entries[0].Value

	_, err = a.DecodeEntry(value[:section.ValueHeaderSize-2])
	require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

	_, err = a.DecodeEntry(value[:len(value)-1])
	require.ErrorIs(t, err, errs.ErrInvalidValuePayload)

	badMagic := append([]byte(nil), value...)
	badMagic[1] = 0
	_, err = a.DecodeEntry(badMagic)
	require.ErrorIs(t, err, errs.ErrInvalidMagicNumber)

	trailing := append([]byte(nil), value...)
	trailing = append(trailing, 0)
	_, err = a.DecodeEntry(trailing)
	require.ErrorIs(t, err, errs.ErrInvalidValuePayload)
}

func TestAdapter_EncodeRecord_Errors(t *testing.T) {
	a, err := New(trackIndex(t), trackBindings(nil), WithPayloadFields("tags"))
	require.NoError(t, err)

	r := trackRecord()
	delete(r, "lat")
	_, err = a.EncodeRecord(r)
	require.ErrorIs(t, err, errs.ErrMissingField)

	r = trackRecord()
	r["start"], r["end"] = end, start
	_, err = a.EncodeRecord(r)
	require.ErrorIs(t, err, errs.ErrInvalidRegion)

	r = trackRecord()
	r["tags"] = []string{"a"}
	_, err = a.EncodeRecord(r)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func BenchmarkAdapter_EncodeRecord(b *testing.B) {
	a, err := New(trackIndex(b, index.WithValueCompression(format.CompressionS2)), trackBindings(nil), WithPayloadFields("name"))
	require.NoError(b, err)
	r := trackRecord()

	b.ReportAllocs()
	for b.Loop() {
		_, _ = a.EncodeRecord(r)
	}
}
