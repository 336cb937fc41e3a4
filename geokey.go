// Package geokey maps multi-dimensional records (coordinates, timestamps,
// ranges) to ordered storage keys and query regions to a small set of key
// ranges to scan.
//
// # Core Features
//
//   - Bounded, periodic and binned dimensions normalized onto [0, 1]
//   - Z-order and compact Hilbert curves with per-dimension precision
//   - Tiered keys so range-valued records are stored under a bounded number of keys
//   - Budgeted range decomposition: never misses a key, never exceeds the budget
//   - Configuration fingerprint stamped into every value, checked on decode
//   - Optional value compression (None, Zstd, S2, LZ4, Snappy)
//
// # Basic Usage
//
// Creating a spatio-temporal index and encoding a record:
//
//	ix, _ := geokey.NewSpatialTemporalIndex("tracks", 16, 12, geokey.DayBin)
//	a, _ := adapter.New(ix, geokey.SpatialTemporalBindings("lon", "lat", "start", "end", field.BindingTime, nil))
//
//	entries, _ := geokey.EncodeRecord(a, field.MapRecord{
//	    "lon": 13.4, "lat": 52.5,
//	    "start": start, "end": end,
//	})
//	for _, e := range entries {
//	    store.Put(e.Key, e.Value)
//	}
//
// Planning a query:
//
//	ranges, _ := geokey.PlanQuery(ix, []dimension.Range{
//	    {Min: 13, Max: 14},
//	    {Min: 52, Max: 53},
//	    {Min: float64(from.UnixMilli()), Max: float64(to.UnixMilli())},
//	}, 64)
//	for _, r := range ranges {
//	    store.Scan(r.Start, r.End)
//	}
//
// # Package Structure
//
// This package provides convenient top-level constructors around the index,
// adapter and field packages. For custom dimensions use the index package
// directly.
package geokey

import (
	"time"

	"github.com/arloliu/geokey/adapter"
	"github.com/arloliu/geokey/dimension"
	"github.com/arloliu/geokey/field"
	"github.com/arloliu/geokey/index"
	"github.com/arloliu/geokey/internal/hash"
	"github.com/arloliu/geokey/keyspace"
)

// TimeBin is the width of a time bin in milliseconds.
type TimeBin float64

const (
	DayBin  TimeBin = TimeBin(24 * time.Hour / time.Millisecond)
	WeekBin TimeBin = 7 * DayBin
	// YearBin is 365 days; bins do not follow calendar years.
	YearBin TimeBin = 365 * DayBin
)

const (
	LongitudeName = "lon"
	LatitudeName  = "lat"
	TimeName      = "time"
)

// NewSpatialIndex creates a two-dimensional index over periodic longitude
// [-180, 180) and bounded latitude [-90, 90].
//
// Parameters:
//   - id: index identifier
//   - bits: precision of both dimensions
//   - opts: index options
//
// Returns:
//   - *index.Index: the index
//   - error: see index.New
//
// Example:
//
//	ix, err := geokey.NewSpatialIndex("places", 20)
func NewSpatialIndex(id string, bits uint8, opts ...index.Option) (*index.Index, error) {
	lon, lat, err := spatialDimensions(bits)
	if err != nil {
		return nil, err
	}

	return index.New(id, []index.Dimension{lon, lat}, opts...)
}

// NewSpatialTemporalIndex creates a longitude, latitude and time index. Time
// is measured in milliseconds since the Unix epoch and binned by bin.
//
// Example:
//
//	ix, err := geokey.NewSpatialTemporalIndex("tracks", 16, 12, geokey.DayBin,
//	    index.WithValueCompression(format.CompressionS2),
//	)
func NewSpatialTemporalIndex(id string, bits, timeBits uint8, bin TimeBin, opts ...index.Option) (*index.Index, error) {
	lon, lat, err := spatialDimensions(bits)
	if err != nil {
		return nil, err
	}
	tm, err := index.Binned(TimeName, 0, float64(bin), timeBits)
	if err != nil {
		return nil, err
	}

	return index.New(id, []index.Dimension{lon, lat, tm}, opts...)
}

func spatialDimensions(bits uint8) (lon, lat index.Dimension, err error) {
	lon, err = index.Periodic(LongitudeName, -180, 180, bits)
	if err != nil {
		return lon, lat, err
	}
	lat, err = index.Bounded(LatitudeName, -90, 90, bits)

	return lon, lat, err
}

// SpatialBindings binds the longitude and latitude dimensions to numeric
// record attributes.
func SpatialBindings(lonField, latField string, visibility field.VisibilityHandler) []adapter.Binding {
	return []adapter.Binding{
		{Dimension: LongitudeName, Handler: field.NewNumericHandler(lonField, visibility)},
		{Dimension: LatitudeName, Handler: field.NewNumericHandler(latField, visibility)},
	}
}

// SpatialTemporalBindings extends SpatialBindings with a time range read from
// a start and an end attribute. Pass the same attribute twice for instants.
func SpatialTemporalBindings(lonField, latField, startField, endField string, binding field.TimeBinding, visibility field.VisibilityHandler) []adapter.Binding {
	var h field.Handler
	if startField == endField {
		h = field.NewTimeHandler(field.TimeAttribute{Name: startField, Binding: binding}, visibility)
	} else {
		h = field.NewTimeRangeHandler(
			field.TimeAttribute{Name: startField, Binding: binding},
			field.TimeAttribute{Name: endField, Binding: binding},
			visibility,
		)
	}

	return append(SpatialBindings(lonField, latField, visibility), adapter.Binding{Dimension: TimeName, Handler: h})
}

// EncodeRecord returns the key-value entries a record is stored under: one
// pair per bin and covered cell.
func EncodeRecord(a *adapter.Adapter, r field.Record) ([]index.Entry, error) {
	return a.EncodeRecord(r)
}

// PlanQuery returns at most maxRanges closed key ranges covering every record
// of ix that intersects region.
func PlanQuery(ix *index.Index, region []dimension.Range, maxRanges int) ([]keyspace.Range, error) {
	plan, err := ix.PlanQuery(region, maxRanges)
	if err != nil {
		return nil, err
	}

	return plan.Ranges, nil
}

// IndexHash returns the 64-bit xxHash of an index id, for stores that key
// tables by number.
func IndexHash(id string) uint64 {
	return hash.ID(id)
}
