package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fjod/deisishop/internal/storage"
)

// Registry hands out one Store per session, creating and rehydrating it on
// first change.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
	kv     storage.KV
	logger *slog.Logger
}

func NewRegistry(kv storage.KV, logger *slog.Logger) *Registry {
	return &Registry{
		stores: make(map[string]*Store),
		kv:     kv,
		logger: logger,
	}
}

// Get returns the session's store, registering it on first use. A store
// whose saved cart could not be read is not registered; the next call reads
// again.
func (r *Registry) Get(ctx context.Context, session string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[session]; ok {
		return s, nil
	}
	s, err := NewStore(ctx, r.kv, storage.CartKey(session), r.logger)
	if err != nil {
		return nil, err
	}
	r.stores[session] = s
	return s, nil
}

// Lookup returns the session's registered store, or else a read-only
// snapshot of its saved cart that is not registered. Callers must not
// change a snapshot.
func (r *Registry) Lookup(ctx context.Context, session string) (*Store, error) {
	r.mu.Lock()
	s, ok := r.stores[session]
	r.mu.Unlock()
	if ok {
		return s, nil
	}
	return NewStore(ctx, r.kv, storage.CartKey(session), r.logger)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
