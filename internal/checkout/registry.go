package checkout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fjod/deisishop/internal/cart"
	"github.com/fjod/deisishop/internal/events"
)

// Registry pairs every session's cart with its own submitter.
type Registry struct {
	mu         sync.Mutex
	submitters map[string]*Submitter
	carts      *cart.Registry
	buyer      Buyer
	publisher  events.Publisher
	logger     *slog.Logger
}

func NewRegistry(carts *cart.Registry, buyer Buyer, publisher events.Publisher, logger *slog.Logger) *Registry {
	return &Registry{
		submitters: make(map[string]*Submitter),
		carts:      carts,
		buyer:      buyer,
		publisher:  publisher,
		logger:     logger,
	}
}

// Get returns the session's submitter, creating it on first use.
func (r *Registry) Get(ctx context.Context, session string) (*Submitter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.submitters[session]; ok {
		return s, nil
	}
	store, err := r.carts.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	s := NewSubmitter(session, r.buyer, store, r.publisher, r.logger)
	r.submitters[session] = s
	return s, nil
}

// State reports the session's last purchase attempt without creating a
// submitter for sessions that never bought anything.
func (r *Registry) State(session string) State {
	r.mu.Lock()
	s, ok := r.submitters[session]
	r.mu.Unlock()
	if !ok {
		return State{}
	}
	return s.State()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submitters)
}
