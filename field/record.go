package field

import (
	"maps"
	"slices"
)

// Record is a read-only view of a domain record's attributes.
type Record interface {
	// Get returns the attribute value and whether it is present.
	Get(name string) (any, bool)
}

// MapRecord is a Record backed by a map.
type MapRecord map[string]any

var _ Record = MapRecord(nil)

// Get returns the attribute value and whether it is present.
func (m MapRecord) Get(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Names returns the attribute names in sorted order.
func (m MapRecord) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// NativeValue is one attribute value reconstructed from an index value.
type NativeValue struct {
	FieldID string
	Value   any
}
