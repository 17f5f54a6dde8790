// Package checkout keeps the saved addresses and saved payment methods that
// feed the checkout flow. Records are stored per user, whole collection per
// write, same pattern as the cart. No field validation happens here; the
// presentation layer validates (and masks card numbers) before calling in.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/example/shopcore/internal/kvstore"
	"github.com/example/shopcore/internal/userkey"
)

const (
	addressesPrefix = "@addresses_storage_"
	paymentsPrefix  = "@payment_methods_storage_"
)

type Address struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type PaymentMethod struct {
	ID        string `json:"id"`
	Number    string `json:"number"`
	Expiry    string `json:"expiry"`
	Holder    string `json:"holder"`
	Type      string `json:"type"`
	LastFour  string `json:"last_four"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type Service struct {
	store *kvstore.Adapter
	log   *slog.Logger

	mu        sync.Mutex
	email     string
	addresses []Address
	payments  []PaymentMethod
}

func NewService(store *kvstore.Adapter, log *slog.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) OnIdentityChanged(ctx context.Context, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.email = email
	s.addresses = nil
	s.payments = nil
	if email == "" {
		return
	}
	if raw, ok := s.store.Get(ctx, userkey.ForUser(addressesPrefix, email)); ok {
		if err := json.Unmarshal([]byte(raw), &s.addresses); err != nil {
			s.log.Error("stored addresses are malformed, treating as empty", "error", err)
			s.addresses = nil
		}
	}
	if raw, ok := s.store.Get(ctx, userkey.ForUser(paymentsPrefix, email)); ok {
		if err := json.Unmarshal([]byte(raw), &s.payments); err != nil {
			s.log.Error("stored payment methods are malformed, treating as empty", "error", err)
			s.payments = nil
		}
	}
}

// SaveAddress appends the address and returns it with its id filled in.
// Safe no-op (zero Address) when signed out.
func (s *Service) SaveAddress(ctx context.Context, a Address) Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return Address{}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.addresses = append(s.addresses, a)
	s.persistAddresses(ctx)
	return a
}

func (s *Service) DeleteAddress(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return
	}
	kept := s.addresses[:0]
	for _, have := range s.addresses {
		if have.ID != id {
			kept = append(kept, have)
		}
	}
	if len(kept) == len(s.addresses) {
		return
	}
	s.addresses = kept
	s.persistAddresses(ctx)
}

func (s *Service) Addresses() []Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Address, len(s.addresses))
	copy(out, s.addresses)
	return out
}

func (s *Service) SavePaymentMethod(ctx context.Context, p PaymentMethod) PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return PaymentMethod{}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.payments = append(s.payments, p)
	s.persistPayments(ctx)
	return p
}

func (s *Service) DeletePaymentMethod(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.email == "" {
		return
	}
	kept := s.payments[:0]
	for _, have := range s.payments {
		if have.ID != id {
			kept = append(kept, have)
		}
	}
	if len(kept) == len(s.payments) {
		return
	}
	s.payments = kept
	s.persistPayments(ctx)
}

func (s *Service) PaymentMethods() []PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PaymentMethod, len(s.payments))
	copy(out, s.payments)
	return out
}

func (s *Service) persistAddresses(ctx context.Context) {
	data, err := json.Marshal(s.addresses)
	if err != nil {
		s.log.Error("addresses marshal failed", "error", err)
		return
	}
	s.store.Set(ctx, userkey.ForUser(addressesPrefix, s.email), string(data))
}

func (s *Service) persistPayments(ctx context.Context) {
	data, err := json.Marshal(s.payments)
	if err != nil {
		s.log.Error("payment methods marshal failed", "error", err)
		return
	}
	s.store.Set(ctx, userkey.ForUser(paymentsPrefix, s.email), string(data))
}
