// Package collision tracks names that must be unique within a schema, such as
// the dimensions of an index or the index ids of an ingest registry.
package collision

import (
	"fmt"

	"github.com/arloliu/geokey/errs"
)

// Tracker records names in insertion order and rejects repeats.
type Tracker struct {
	seen      map[string]struct{}
	names     []string
	duplicate error
}

// NewTracker creates a tracker that reports repeated names with duplicate,
// for example errs.ErrDuplicateDimension.
func NewTracker(duplicate error) *Tracker {
	return &Tracker{
		seen:      make(map[string]struct{}),
		names:     make([]string, 0),
		duplicate: duplicate,
	}
}

// Track records name.
//
// Returns errs.ErrEmptyName for an empty name and the tracker's duplicate
// error when name was tracked before.
func (t *Tracker) Track(name string) error {
	if name == "" {
		return errs.ErrEmptyName
	}
	if _, exists := t.seen[name]; exists {
		return fmt.Errorf("%w: %q", t.duplicate, name)
	}

	t.seen[name] = struct{}{}
	t.names = append(t.names, name)

	return nil
}

// TrackAll records every name and stops at the first failure.
func (t *Tracker) TrackAll(names ...string) error {
	for _, name := range names {
		if err := t.Track(name); err != nil {
			return err
		}
	}

	return nil
}

// Contains reports whether name was tracked.
func (t *Tracker) Contains(name string) bool {
	_, ok := t.seen[name]
	return ok
}

// Names returns the tracked names in insertion order.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Reset forgets every name and keeps the allocated capacity.
func (t *Tracker) Reset() {
	clear(t.seen)
	t.names = t.names[:0]
}
