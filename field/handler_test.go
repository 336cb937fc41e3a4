package field

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
)

var (
	t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 = t0.Add(90 * time.Minute)
)

func TestTimeRangeHandler_ToIndexValue(t *testing.T) {
	h := NewTimeRangeHandler(
		TimeAttribute{Name: "start", Binding: BindingTime},
		TimeAttribute{Name: "end", Binding: BindingMillis},
		nil,
	)
	require.Equal(t, []string{"start", "end"}, h.FieldIDs())

	v, err := h.ToIndexValue(MapRecord{"start": t0, "end": t1.UnixMilli()})
	require.NoError(t, err)
	require.Equal(t, dimension.Range{Min: float64(t0.UnixMilli()), Max: float64(t1.UnixMilli())}, v.Range)
	require.Empty(t, v.Visibility)

	natives, err := h.ToNativeValues(v)
	require.NoError(t, err)
	require.Equal(t, []NativeValue{
		{FieldID: "start", Value: t0},
		{FieldID: "end", Value: t1.UnixMilli()},
	}, natives)
}

func TestTimeRangeHandler_Errors(t *testing.T) {
	h := NewTimeRangeHandler(TimeAttribute{Name: "start"}, TimeAttribute{Name: "end"}, nil)

	_, err := h.ToIndexValue(MapRecord{"start": t0})
	require.ErrorIs(t, err, errs.ErrMissingField)

	_, err = h.ToIndexValue(MapRecord{"start": t0, "end": nil})
	require.ErrorIs(t, err, errs.ErrMissingField)

	_, err = h.ToIndexValue(MapRecord{"start": "yesterday", "end": t1})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	var missing *time.Time
	_, err = h.ToIndexValue(MapRecord{"start": t0, "end": missing})
	require.ErrorIs(t, err, errs.ErrMissingField)
}

func TestTimeRangeHandler_Visibility(t *testing.T) {
	perField := VisibilityFunc(func(r Record, fieldID string, _ any) string {
		v, _ := r.Get(fieldID + "_vis")
		s, _ := v.(string)

		return s
	})

	tests := []struct {
		name     string
		handler  VisibilityHandler
		startVis string
		endVis   string
		want     string
	}{
		{name: "no handler", handler: nil, startVis: "a", endVis: "b", want: ""},
		{name: "global", handler: GlobalVisibility("secret"), want: "secret"},
		{name: "identical labels reused", handler: perField, startVis: "a&b", endVis: "a&b", want: "a&b"},
		{name: "differing labels concatenated", handler: perField, startVis: "a", endVis: "b", want: "a:b"},
		{name: "empty start", handler: perField, startVis: "", endVis: "b", want: ":b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTimeRangeHandler(TimeAttribute{Name: "start"}, TimeAttribute{Name: "end"}, tt.handler)
			v, err := h.ToIndexValue(MapRecord{
				"start": t0, "end": t1,
				"start_vis": tt.startVis, "end_vis": tt.endVis,
			})
			require.NoError(t, err)
			require.Equal(t, tt.want, v.Visibility)
		})
	}
}

// Concatenation is not an access expression: different label pairs can
// collapse into the same combined label.
func TestCombineVisibility_Ambiguous(t *testing.T) {
	require.Equal(t, "a", CombineVisibility("a", "a"))
	require.Equal(t, CombineVisibility("a", "b:c"), CombineVisibility("a:b", "c"))
}

func TestNewGlobalVisibility(t *testing.T) {
	require.Nil(t, NewGlobalVisibility(""))
	require.Equal(t, GlobalVisibility("x"), NewGlobalVisibility("x"))
}

func TestTimeHandler(t *testing.T) {
	h := NewTimeHandler(TimeAttribute{Name: "ts", Binding: BindingTimePtr}, GlobalVisibility("v"))
	require.Equal(t, []string{"ts"}, h.FieldIDs())

	v, err := h.ToIndexValue(MapRecord{"ts": &t0})
	require.NoError(t, err)
	require.True(t, v.Range.IsPoint())
	require.Equal(t, float64(t0.UnixMilli()), v.Range.Min)
	require.Equal(t, "v", v.Visibility)

	natives, err := h.ToNativeValues(v)
	require.NoError(t, err)
	require.Len(t, natives, 1)
	got, ok := natives[0].Value.(*time.Time)
	require.True(t, ok)
	require.True(t, t0.Equal(*got))

	_, err = h.ToIndexValue(MapRecord{})
	require.ErrorIs(t, err, errs.ErrMissingField)
}

func TestNumericHandler(t *testing.T) {
	h := NewNumericHandler("lat", nil)
	require.Equal(t, []string{"lat"}, h.FieldIDs())

	for _, raw := range []any{float64(12), float32(12), 12, int32(12), int64(12), uint32(12), uint64(12)} {
		v, err := h.ToIndexValue(MapRecord{"lat": raw})
		require.NoError(t, err, "%T", raw)
		require.Equal(t, dimension.Point(12), v.Range)
	}

	natives, err := h.ToNativeValues(IndexValue{Range: dimension.Point(3.5)})
	require.NoError(t, err)
	require.Equal(t, []NativeValue{{FieldID: "lat", Value: 3.5}}, natives)

	_, err = h.ToIndexValue(MapRecord{})
	require.ErrorIs(t, err, errs.ErrMissingField)

	_, err = h.ToIndexValue(MapRecord{"lat": "north"})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = h.ToIndexValue(MapRecord{"lat": math.NaN()})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestTimeConversions(t *testing.T) {
	ms := t0.UnixMilli()

	tests := []struct {
		name string
		in   any
		want int64
		err  error
	}{
		{name: "time", in: t0, want: ms},
		{name: "time pointer", in: &t0, want: ms},
		{name: "int64", in: ms, want: ms},
		{name: "int", in: int(ms), want: ms},
		{name: "float64", in: float64(ms) + 0.7, want: ms},
		{name: "negative float64", in: -1.5, want: -2},
		{name: "nil pointer", in: (*time.Time)(nil), err: errs.ErrMissingField},
		{name: "infinite", in: math.Inf(1), err: errs.ErrUnsupportedType},
		{name: "string", in: "now", err: errs.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMillis(tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	require.Equal(t, t0, FromMillis(BindingTime, ms))
	require.Equal(t, ms, FromMillis(BindingMillis, ms))
	require.Equal(t, float64(ms), FromMillis(BindingFloatMillis, ms))
	require.Equal(t, "float_millis", BindingFloatMillis.String())
	require.Equal(t, "unknown", TimeBinding(9).String())
}

func TestMapRecord_Names(t *testing.T) {
	r := MapRecord{"b": 1, "a": 2}
	require.Equal(t, []string{"a", "b"}, r.Names())

	v, ok := r.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)
}
