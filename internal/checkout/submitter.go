// Package checkout turns a cart into a purchase on the remote shop.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fjod/deisishop/internal/cart"
	"github.com/fjod/deisishop/internal/domain"
	"github.com/fjod/deisishop/internal/events"
)

var ErrInProgress = errors.New("checkout already in progress")

type Buyer interface {
	Buy(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResult, error)
}

type Options struct {
	Student bool   `json:"student"`
	Coupon  string `json:"coupon"`
	Name    string `json:"name"`
}

// State is what a shopper sees of the last purchase attempt. While InFlight
// both Result and Error are empty; afterwards at most one of them is set.
type State struct {
	InFlight bool                  `json:"in_flight"`
	Result   domain.CheckoutResult `json:"result,omitempty"`
	Error    string                `json:"error,omitempty"`
}

type Submitter struct {
	mu        sync.Mutex
	state     State
	session   string
	buyer     Buyer
	cart      *cart.Store
	publisher events.Publisher
	logger    *slog.Logger
}

func NewSubmitter(session string, buyer Buyer, store *cart.Store, publisher events.Publisher, logger *slog.Logger) *Submitter {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		session:   session,
		buyer:     buyer,
		cart:      store,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Buy submits the whole cart. An empty cart is a no-op: no request is sent,
// the state is left alone and both return values are nil. On success the
// cart is cleared; on failure it is left untouched.
func (s *Submitter) Buy(ctx context.Context, opts Options) (domain.CheckoutResult, error) {
	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	if s.state.InFlight {
		s.mu.Unlock()
		return nil, ErrInProgress
	}
	s.state = State{InFlight: true}
	s.mu.Unlock()

	req := domain.CheckoutRequest{
		Products: cart.ExpandIDs(lines),
		Student:  opts.Student,
		Coupon:   opts.Coupon,
		Name:     opts.Name,
	}

	result, err := s.buyer.Buy(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "checkout failed", "session", s.session, "items", len(req.Products), "error", err)
		s.finish(State{Error: err.Error()})
		return nil, err
	}

	if errClear := s.cart.Clear(ctx); errClear != nil {
		s.logger.ErrorContext(ctx, "cart clear after checkout failed", "session", s.session, "error", errClear)
	}

	ev := events.OrderPlaced{
		Session:  s.session,
		Products: req.Products,
		Student:  req.Student,
		Coupon:   req.Coupon,
		Name:     req.Name,
		Total:    cart.Total(lines),
		Response: []byte(result),
	}
	if errPublish := s.publisher.PublishOrderPlaced(ctx, ev); errPublish != nil {
		s.logger.ErrorContext(ctx, "order event not published", "session", s.session, "error", errPublish)
	}

	s.logger.InfoContext(ctx, "checkout succeeded", "session", s.session, "items", len(req.Products))
	s.finish(State{Result: result})
	return result, nil
}

func (s *Submitter) finish(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}
