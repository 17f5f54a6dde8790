// Package favorites keeps the wishlist for the active user, one entry per
// product id.
package favorites

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/example/shopcore/internal/kvstore"
	"github.com/example/shopcore/internal/userkey"
)

const favoritesPrefix = "@favorites_storage_"

type Entry struct {
	ProductID uint    `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	IsLiked   bool    `json:"is_liked"`
}

type Service struct {
	store *kvstore.Adapter
	log   *slog.Logger

	mu      sync.Mutex
	email   string
	entries []Entry
}

func NewService(store *kvstore.Adapter, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) OnIdentityChanged(ctx context.Context, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.email = email
	s.entries = nil
	if email == "" {
		return
	}
	raw, ok := s.store.Get(ctx, userkey.ForUser(favoritesPrefix, email))
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(raw), &s.entries); err != nil {
		s.log.Error("stored favorites are malformed, treating as empty", "error", err)
		s.entries = nil
	}
}

// Add records a product as liked. Adding an already-present product id is a
// no-op, so the set never holds duplicates.
func (s *Service) Add(ctx context.Context, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return
	}
	for _, have := range s.entries {
		if have.ProductID == e.ProductID {
			return
		}
	}
	e.IsLiked = true
	s.entries = append(s.entries, e)
	s.persist(ctx)
}

func (s *Service) Remove(ctx context.Context, productID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return
	}
	kept := s.entries[:0]
	for _, have := range s.entries {
		if have.ProductID != productID {
			kept = append(kept, have)
		}
	}
	if len(kept) == len(s.entries) {
		return
	}
	s.entries = kept
	s.persist(ctx)
}

// Toggle adds the product when absent and removes it when present.
func (s *Service) Toggle(ctx context.Context, e Entry) {
	if s.IsFavorite(e.ProductID) {
		s.Remove(ctx, e.ProductID)
		return
	}
	s.Add(ctx, e)
}

func (s *Service) IsFavorite(productID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.entries {
		if have.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *Service) All() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Service) persist(ctx context.Context) {
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.log.Error("favorites marshal failed", "error", err)
		return
	}
	s.store.Set(ctx, userkey.ForUser(favoritesPrefix, s.email), string(data))
}
