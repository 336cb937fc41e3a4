package field

import (
	"fmt"
	"math"

	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/errs"
)

// IndexValue is the raw value of one dimension extracted from a record.
type IndexValue struct {
	Range      dimension.Range
	Visibility string
}

// Handler converts record attributes into the value of one index dimension.
type Handler interface {
	// FieldIDs returns the attributes the handler reads.
	FieldIDs() []string
	// ToIndexValue extracts the dimension value of r.
	ToIndexValue(r Record) (IndexValue, error)
	// ToNativeValues reconstructs the attributes from an index value.
	ToNativeValues(v IndexValue) ([]NativeValue, error)
}

// TimeRangeHandler reads a start and an end time attribute into a time range
// in milliseconds.
type TimeRangeHandler struct {
	start      TimeAttribute
	end        TimeAttribute
	visibility VisibilityHandler
}

var _ Handler = (*TimeRangeHandler)(nil)

// NewTimeRangeHandler creates a time range handler. visibility may be nil.
func NewTimeRangeHandler(start, end TimeAttribute, visibility VisibilityHandler) *TimeRangeHandler {
	return &TimeRangeHandler{start: start, end: end, visibility: visibility}
}

// FieldIDs returns the start and end attribute names.
func (h *TimeRangeHandler) FieldIDs() []string {
	return []string{h.start.Name, h.end.Name}
}

// ToIndexValue returns [start, end] in milliseconds. When the start and end
// attributes carry different visibility labels they are combined with
// CombineVisibility.
//
// Returns errs.ErrMissingField or errs.ErrUnsupportedType.
func (h *TimeRangeHandler) ToIndexValue(r Record) (IndexValue, error) {
	start, startRaw, err := h.start.read(r)
	if err != nil {
		return IndexValue{}, err
	}
	end, endRaw, err := h.end.read(r)
	if err != nil {
		return IndexValue{}, err
	}

	var label string
	if h.visibility != nil {
		label = CombineVisibility(
			h.visibility.Visibility(r, h.start.Name, startRaw),
			h.visibility.Visibility(r, h.end.Name, endRaw),
		)
	}

	return IndexValue{
		Range:      dimension.Range{Min: float64(start), Max: float64(end)},
		Visibility: label,
	}, nil
}

// ToNativeValues returns the start and end attributes in their bindings.
func (h *TimeRangeHandler) ToNativeValues(v IndexValue) ([]NativeValue, error) {
	return []NativeValue{
		{FieldID: h.start.Name, Value: FromMillis(h.start.Binding, int64(v.Range.Min))},
		{FieldID: h.end.Name, Value: FromMillis(h.end.Binding, int64(v.Range.Max))},
	}, nil
}

// TimeHandler reads a single time attribute as an instant in milliseconds.
type TimeHandler struct {
	attr       TimeAttribute
	visibility VisibilityHandler
}

var _ Handler = (*TimeHandler)(nil)

// NewTimeHandler creates a time handler. visibility may be nil.
func NewTimeHandler(attr TimeAttribute, visibility VisibilityHandler) *TimeHandler {
	return &TimeHandler{attr: attr, visibility: visibility}
}

// FieldIDs returns the attribute name.
func (h *TimeHandler) FieldIDs() []string {
	return []string{h.attr.Name}
}

// ToIndexValue returns the instant as a point range.
func (h *TimeHandler) ToIndexValue(r Record) (IndexValue, error) {
	ms, raw, err := h.attr.read(r)
	if err != nil {
		return IndexValue{}, err
	}

	return IndexValue{
		Range:      dimension.Point(float64(ms)),
		Visibility: visibilityOf(h.visibility, r, h.attr.Name, raw),
	}, nil
}

// ToNativeValues returns the attribute in its binding.
func (h *TimeHandler) ToNativeValues(v IndexValue) ([]NativeValue, error) {
	return []NativeValue{{FieldID: h.attr.Name, Value: FromMillis(h.attr.Binding, int64(v.Range.Min))}}, nil
}

// NumericHandler reads a single numeric attribute.
type NumericHandler struct {
	name       string
	visibility VisibilityHandler
}

var _ Handler = (*NumericHandler)(nil)

// NewNumericHandler creates a numeric handler. visibility may be nil.
func NewNumericHandler(name string, visibility VisibilityHandler) *NumericHandler {
	return &NumericHandler{name: name, visibility: visibility}
}

// FieldIDs returns the attribute name.
func (h *NumericHandler) FieldIDs() []string {
	return []string{h.name}
}

// ToIndexValue returns the attribute as a point range.
//
// Returns errs.ErrMissingField, or errs.ErrUnsupportedType for non-numeric
// and non-finite values.
func (h *NumericHandler) ToIndexValue(r Record) (IndexValue, error) {
	raw, ok := r.Get(h.name)
	if !ok || raw == nil {
		return IndexValue{}, fmt.Errorf("%w: %q", errs.ErrMissingField, h.name)
	}

	v, err := ToFloat64(raw)
	if err != nil {
		return IndexValue{}, fmt.Errorf("attribute %q: %w", h.name, err)
	}

	return IndexValue{
		Range:      dimension.Point(v),
		Visibility: visibilityOf(h.visibility, r, h.name, raw),
	}, nil
}

// ToNativeValues returns the attribute as a float64.
func (h *NumericHandler) ToNativeValues(v IndexValue) ([]NativeValue, error) {
	return []NativeValue{{FieldID: h.name, Value: v.Range.Min}}, nil
}

// ToFloat64 converts a native numeric value into a finite float64.
func ToFloat64(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, fmt.Errorf("%w: %T is not numeric", errs.ErrUnsupportedType, v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: non-finite value %g", errs.ErrUnsupportedType, f)
	}

	return f, nil
}
