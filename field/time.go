package field

import (
	"fmt"
	"math"
	"time"

	"github.com/arloliu/geokey/errs"
)

// TimeBinding is the native representation of a time attribute.
type TimeBinding uint8

const (
	// BindingTime stores time.Time values.
	BindingTime TimeBinding = iota
	// BindingTimePtr stores *time.Time values.
	BindingTimePtr
	// BindingMillis stores int64 milliseconds since the Unix epoch.
	BindingMillis
	// BindingFloatMillis stores float64 milliseconds since the Unix epoch.
	BindingFloatMillis
)

func (b TimeBinding) String() string {
	switch b {
	case BindingTime:
		return "time"
	case BindingTimePtr:
		return "time_ptr"
	case BindingMillis:
		return "millis"
	case BindingFloatMillis:
		return "float_millis"
	default:
		return "unknown"
	}
}

// TimeAttribute names a time attribute and its native binding.
type TimeAttribute struct {
	Name    string
	Binding TimeBinding
}

// ToMillis converts a native time value into milliseconds since the Unix epoch.
//
// Accepted types are time.Time, *time.Time, int64, int and float64
// milliseconds. Returns errs.ErrMissingField for a nil pointer and
// errs.ErrUnsupportedType for anything else.
func ToMillis(v any) (int64, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli(), nil
	case *time.Time:
		if t == nil {
			return 0, errs.ErrMissingField
		}

		return t.UnixMilli(), nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, fmt.Errorf("%w: non-finite time %g", errs.ErrUnsupportedType, t)
		}

		return int64(math.Floor(t)), nil
	default:
		return 0, fmt.Errorf("%w: %T is not a time", errs.ErrUnsupportedType, v)
	}
}

// FromMillis converts milliseconds since the Unix epoch into the native
// representation of binding. Times are returned in UTC.
func FromMillis(binding TimeBinding, ms int64) any {
	switch binding {
	case BindingTimePtr:
		t := time.UnixMilli(ms).UTC()
		return &t
	case BindingMillis:
		return ms
	case BindingFloatMillis:
		return float64(ms)
	default:
		return time.UnixMilli(ms).UTC()
	}
}

func (a TimeAttribute) read(r Record) (int64, any, error) {
	v, ok := r.Get(a.Name)
	if !ok || v == nil {
		return 0, nil, fmt.Errorf("%w: %q", errs.ErrMissingField, a.Name)
	}

	ms, err := ToMillis(v)
	if err != nil {
		return 0, nil, fmt.Errorf("attribute %q: %w", a.Name, err)
	}

	return ms, v, nil
}
