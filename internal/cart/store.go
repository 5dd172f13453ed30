// Package cart keeps a shopper's cart lines and mirrors them to durable
// storage after every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fjod/deisishop/internal/domain"
	"github.com/fjod/deisishop/internal/storage"
)

// Store is one shopper's cart. Lines keep insertion order and hold at most
// one entry per product id, each with quantity >= 1.
type Store struct {
	mu     sync.RWMutex
	lines  []domain.CartLine
	kv     storage.KV
	key    string
	logger *slog.Logger
}

// NewStore rehydrates the cart saved under key. Missing or corrupt data
// yields an empty cart; a failed read is returned as an error.
func NewStore(ctx context.Context, kv storage.KV, key string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		kv:     kv,
		key:    key,
		logger: logger,
	}
	lines, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.lines = lines
	return s, nil
}

func (s *Store) load(ctx context.Context) ([]domain.CartLine, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", s.key, err)
	}

	var saved []domain.CartLine
	if err := json.Unmarshal(data, &saved); err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable cart", "key", s.key, "error", err)
		return nil, nil
	}

	lines := make([]domain.CartLine, 0, len(saved))
	for _, l := range saved {
		if l.Quantity <= 0 {
			continue
		}
		if i := indexOf(lines, l.Product.ID); i >= 0 {
			lines[i].Quantity += l.Quantity
			continue
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// Add puts one more unit of p in the cart.
func (s *Store) Add(ctx context.Context, p domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.lines, p.ID); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, domain.CartLine{Product: p, Quantity: 1})
	}
	return s.persist(ctx)
}

// Remove takes one unit of the product out. The line goes away when its
// quantity would reach zero. Removing something not in the cart does nothing.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.lines, productID)
	if i < 0 {
		return nil
	}
	if s.lines[i].Quantity <= 1 {
		s.lines = slices.Delete(s.lines, i, i+1)
	} else {
		s.lines[i].Quantity--
	}
	return s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.persist(ctx)
}

func (s *Store) IsInCart(productID int64) bool {
	return s.Quantity(productID) > 0
}

func (s *Store) Quantity(productID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.lines, productID); i >= 0 {
		return s.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lines)
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// ItemCount is the number of units across all lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Total sums price x quantity over every line.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Total(s.lines)
}

// ProductIDs expands the cart into one id per unit, in line order.
func (s *Store) ProductIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ExpandIDs(s.lines)
}

func Total(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Product.Price.Decimal().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func ExpandIDs(lines []domain.CartLine) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		for range l.Quantity {
			ids = append(ids, l.Product.ID)
		}
	}
	return ids
}

// persist writes the current lines. The caller holds s.mu. A failed write
// leaves the in-memory cart as it is.
func (s *Store) persist(ctx context.Context) error {
	lines := s.lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "cart persist failed", "key", s.key, "error", err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func indexOf(lines []domain.CartLine, productID int64) int {
	return slices.IndexFunc(lines, func(l domain.CartLine) bool {
		return l.Product.ID == productID
	})
}
