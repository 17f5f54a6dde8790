// Package cart keeps the shopping cart for the active user. Every line is
// an independent entry: adding the same product and variant twice produces
// two lines, not a quantity bump. The whole collection is rewritten to the
// per-user key on every mutation, which is fine at cart sizes.
package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/example/shopcore/internal/kvstore"
	"github.com/example/shopcore/internal/userkey"
)

const cartPrefix = "@cart_storage_"

type Item struct {
	LineID    string  `json:"line_id"`
	ProductID uint    `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Quantity  uint    `json:"quantity"`
}

type Service struct {
	store *kvstore.Adapter
	log   *slog.Logger

	mu    sync.Mutex
	email string
	items []Item
}

func NewService(store *kvstore.Adapter, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) OnIdentityChanged(ctx context.Context, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.email = email
	s.items = nil
	if email == "" {
		return
	}
	raw, ok := s.store.Get(ctx, userkey.ForUser(cartPrefix, email))
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(raw), &s.items); err != nil {
		s.log.Error("stored cart is malformed, treating as empty", "error", err)
		s.items = nil
	}
}

// Add appends a line and returns it with its line id filled in. Safe no-op
// (zero Item) when signed out.
func (s *Service) Add(ctx context.Context, item Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return Item{}
	}
	if item.LineID == "" {
		item.LineID = uuid.NewString()
	}
	s.items = append(s.items, item)
	s.persist(ctx)
	return item
}

// Remove deletes the line with the given id, if present.
func (s *Service) Remove(ctx context.Context, lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return
	}
	kept := s.items[:0]
	for _, it := range s.items {
		if it.LineID != lineID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(s.items) {
		return
	}
	s.items = kept
	s.persist(ctx)
}

// Clear empties the cart, e.g. after a placed order.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return
	}
	s.items = nil
	s.persist(ctx)
}

func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total recomputes the cart total on every read. A line without a quantity
// counts its price once.
func (s *Service) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, it := range s.items {
		if it.Quantity == 0 {
			total += it.Price
			continue
		}
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func (s *Service) persist(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.log.Error("cart marshal failed", "error", err)
		return
	}
	s.store.Set(ctx, userkey.ForUser(cartPrefix, s.email), string(data))
}
