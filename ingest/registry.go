package ingest

import (
	"fmt"
	"sync"

	"github.com/arloliu/geokey/adapter"
	"github.com/arloliu/geokey/errs"
	"github.com/arloliu/geokey/internal/collision"
)

// Registry maps index ids to the adapters that encode their records. It is
// safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	ids      *collision.Tracker
	adapters map[string]*adapter.Adapter
}

// NewRegistry creates a registry holding adapters.
//
// Returns errs.ErrDuplicateIndex when two adapters share an index id.
func NewRegistry(adapters ...*adapter.Adapter) (*Registry, error) {
	r := &Registry{
		ids:      collision.NewTracker(errs.ErrDuplicateIndex),
		adapters: make(map[string]*adapter.Adapter, len(adapters)),
	}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds an adapter under the id of its index.
func (r *Registry) Register(a *adapter.Adapter) error {
	id := a.Index().ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ids.Track(id); err != nil {
		return err
	}
	r.adapters[id] = a

	return nil
}

// Lookup returns the adapter of an index.
//
// Returns errs.ErrUnknownIndex when no adapter is registered for id.
func (r *Registry) Lookup(id string) (*adapter.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownIndex, id)
	}

	return a, nil
}

// IDs returns the registered index ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ids.Names()
}
