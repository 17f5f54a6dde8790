// Package session holds the authenticated identity and the local multi-user
// credential table. The credential table lives under one secure-store key;
// the active session lives under another and never contains a password or
// password hash. Registration does not start a session: the UI requires an
// explicit login afterwards.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/example/shopcore/internal/events"
	"github.com/example/shopcore/internal/hash"
	"github.com/example/shopcore/internal/kvstore"
)

const (
	sessionKey     = "app_user"
	credentialsKey = "app_users_db"
)

type User struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

// credential is a credential-table row. The hash never leaves this package.
type credential struct {
	User
	PasswordHash string `json:"password_hash"`
}

// Patch carries profile fields to merge into the session. The email is the
// namespace for all per-user data and cannot be changed.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	PhotoURL    *string `json:"photo_url,omitempty"`
}

// ExternalProfile is an already-verified identity from a social token
// exchange. Verification of the provider token happens outside the core.
type ExternalProfile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Listener is told whenever the active identity changes. Login, logout and
// restore call listeners synchronously, so per-user stores are reloaded
// before the call returns and the first mutation after a login can never
// target the previous user's data.
type Listener interface {
	OnIdentityChanged(ctx context.Context, email string)
}

type Service struct {
	store  *kvstore.Adapter
	events *events.Producer
	log    *slog.Logger

	mu        sync.Mutex
	current   *User
	listeners []Listener
}

func NewService(store *kvstore.Adapter, producer *events.Producer, log *slog.Logger) *Service {
	return &Service{store: store, events: producer, log: log}
}

func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Restore reloads the persisted session at process start, if any.
func (s *Service) Restore(ctx context.Context) {
	raw, ok := s.store.GetSecure(ctx, sessionKey)
	if !ok {
		return
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Error("stored session is malformed, ignoring", "error", err)
		return
	}
	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()
	s.notify(ctx, u.Email)
}

// Register appends a new credential record. It returns false when the email
// is already taken (exact, case-sensitive match) and never starts a session.
func (s *Service) Register(ctx context.Context, name, email, password string) bool {
	if email == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds := s.loadCredentials(ctx)
	for _, c := range creds {
		if c.Email == email {
			return false
		}
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		s.log.Error("password hash failed", "error", err)
		return false
	}

	creds = append(creds, credential{
		User:         User{Name: name, Email: email},
		PasswordHash: hashed,
	})
	s.saveCredentials(ctx, creds)

	s.events.Publish(ctx, "user_events", email, map[string]any{
		"type":  "user_registered",
		"email": email,
	})
	return true
}

// Login establishes the session iff a credential record matches the email
// and password. The caller learns only success or failure, not which part
// was wrong.
func (s *Service) Login(ctx context.Context, email, password string) bool {
	s.mu.Lock()

	var found *credential
	for _, c := range s.loadCredentials(ctx) {
		if c.Email == email {
			found = &c
			break
		}
	}
	if found == nil || found.PasswordHash == "" || !hash.CheckPassword(found.PasswordHash, password) {
		s.mu.Unlock()
		return false
	}

	u := found.User
	s.current = &u
	s.persistSession(ctx, u)
	s.mu.Unlock()

	s.notify(ctx, u.Email)
	s.events.Publish(ctx, "user_events", u.Email, map[string]any{
		"type":  "user_logged_in",
		"email": u.Email,
	})
	return true
}

// LoginWithProvider starts a session for an externally verified identity,
// creating a password-less credential row on first use. Password logins
// keep failing for such rows until the user registers a password.
func (s *Service) LoginWithProvider(ctx context.Context, p ExternalProfile) bool {
	if p.Email == "" {
		return false
	}

	s.mu.Lock()

	creds := s.loadCredentials(ctx)
	idx := -1
	for i, c := range creds {
		if c.Email == p.Email {
			idx = i
			break
		}
	}
	if idx == -1 {
		creds = append(creds, credential{
			User: User{Name: p.Name, Email: p.Email, PhotoURL: p.PhotoURL},
		})
		s.saveCredentials(ctx, creds)
		idx = len(creds) - 1
	}

	u := creds[idx].User
	s.current = &u
	s.persistSession(ctx, u)
	s.mu.Unlock()

	s.notify(ctx, u.Email)
	s.events.Publish(ctx, "user_events", u.Email, map[string]any{
		"type":  "user_logged_in",
		"email": u.Email,
		"via":   "provider",
	})
	return true
}

// Logout drops the in-memory session and the persisted session key. The
// credential table is untouched.
func (s *Service) Logout(ctx context.Context) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	s.store.RemoveSecure(ctx, sessionKey)
	s.mu.Unlock()

	s.notify(ctx, "")
}

// Update merges patch into the session and into the matching credential
// record, preserving the stored password hash. Safe no-op when signed out.
func (s *Service) Update(ctx context.Context, patch Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	if patch.Name != nil {
		s.current.Name = *patch.Name
	}
	if patch.DisplayName != nil {
		s.current.DisplayName = *patch.DisplayName
	}
	if patch.PhotoURL != nil {
		s.current.PhotoURL = *patch.PhotoURL
	}
	s.persistSession(ctx, *s.current)

	creds := s.loadCredentials(ctx)
	for i := range creds {
		if creds[i].Email == s.current.Email {
			creds[i].User = *s.current
			break
		}
	}
	s.saveCredentials(ctx, creds)
}

// Current returns a copy of the signed-in user, if any.
func (s *Service) Current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return User{}, false
	}
	return *s.current, true
}

func (s *Service) notify(ctx context.Context, email string) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.OnIdentityChanged(ctx, email)
	}
}

func (s *Service) persistSession(ctx context.Context, u User) {
	data, err := json.Marshal(u)
	if err != nil {
		s.log.Error("session marshal failed", "error", err)
		return
	}
	s.store.SetSecure(ctx, sessionKey, string(data))
}

func (s *Service) loadCredentials(ctx context.Context) []credential {
	raw, ok := s.store.GetSecure(ctx, credentialsKey)
	if !ok {
		return nil
	}
	var creds []credential
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		s.log.Error("credential table is malformed, treating as empty", "error", err)
		return nil
	}
	return creds
}

func (s *Service) saveCredentials(ctx context.Context, creds []credential) {
	data, err := json.Marshal(creds)
	if err != nil {
		s.log.Error("credential table marshal failed", "error", err)
		return
	}
	s.store.SetSecure(ctx, credentialsKey, string(data))
}
