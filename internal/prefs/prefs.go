// Package prefs keeps notification/sound/vibration settings and the theme
// for the active user, plus two device-global values: the UI language and
// the first-launch flag. Per-user values reload on identity change; logout
// resets memory to defaults and leaves the persisted values on disk so they
// come back on the next login.
package prefs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/example/shopcore/internal/kvstore"
	"github.com/example/shopcore/internal/userkey"
)

const (
	settingsPrefix = "app_settings_"
	themePrefix    = "@theme_preference_"
	languageKey    = "app_language_global"
	hasLaunchedKey = "app_has_launched"

	defaultLanguage = "en"

	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

type Settings struct {
	Notifications bool `json:"notifications"`
	Sounds        bool `json:"sounds"`
	Vibration     bool `json:"vibration"`
}

func defaults() Settings {
	return Settings{Notifications: true, Sounds: true, Vibration: true}
}

// SchemeFunc reports the OS color scheme, "light" or "dark". Used to
// resolve the "system" theme at read time.
type SchemeFunc func() string

type Service struct {
	store  *kvstore.Adapter
	log    *slog.Logger
	scheme SchemeFunc

	mu       sync.Mutex
	email    string
	settings Settings
	theme    string
	language string
}

func NewService(store *kvstore.Adapter, scheme SchemeFunc, log *slog.Logger) *Service {
	if scheme == nil {
		scheme = func() string { return ThemeLight }
	}
	return &Service{
		store:    store,
		log:      log,
		scheme:   scheme,
		settings: defaults(),
		theme:    ThemeSystem,
		language: defaultLanguage,
	}
}

// Init loads the device-global values. Called once at process start.
func (s *Service) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lang, ok := s.store.Get(ctx, languageKey); ok && lang != "" {
		s.language = lang
	}
}

func (s *Service) OnIdentityChanged(ctx context.Context, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.email = email
	s.settings = defaults()
	s.theme = ThemeSystem
	if email == "" {
		return
	}

	if raw, ok := s.store.Get(ctx, userkey.ForUser(settingsPrefix, email)); ok {
		var loaded Settings
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			s.log.Error("stored settings are malformed, using defaults", "error", err)
		} else {
			s.settings = loaded
		}
	}
	if theme, ok := s.store.Get(ctx, userkey.ForUser(themePrefix, email)); ok {
		switch theme {
		case ThemeLight, ThemeDark, ThemeSystem:
			s.theme = theme
		}
	}
}

func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Service) ToggleNotifications(ctx context.Context) Settings {
	return s.toggle(ctx, func(v *Settings) { v.Notifications = !v.Notifications })
}

func (s *Service) ToggleSounds(ctx context.Context) Settings {
	return s.toggle(ctx, func(v *Settings) { v.Sounds = !v.Sounds })
}

func (s *Service) ToggleVibration(ctx context.Context) Settings {
	return s.toggle(ctx, func(v *Settings) { v.Vibration = !v.Vibration })
}

// toggle flips a field in memory first, then persists best effort. The
// in-memory value stays authoritative for the session either way.
func (s *Service) toggle(ctx context.Context, apply func(*Settings)) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply(&s.settings)
	if s.email != "" {
		data, err := json.Marshal(s.settings)
		if err != nil {
			s.log.Error("settings marshal failed", "error", err)
			return s.settings
		}
		s.store.Set(ctx, userkey.ForUser(settingsPrefix, s.email), string(data))
	}
	return s.settings
}

func (s *Service) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// ResolvedTheme maps the "system" theme onto the OS color scheme.
func (s *Service) ResolvedTheme() string {
	s.mu.Lock()
	theme := s.theme
	s.mu.Unlock()

	if theme != ThemeSystem {
		return theme
	}
	if s.scheme() == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (s *Service) SetTheme(ctx context.Context, theme string) {
	switch theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	if s.email != "" {
		s.store.Set(ctx, userkey.ForUser(themePrefix, s.email), theme)
	}
}

func (s *Service) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage persists the device-global language, independent of identity.
func (s *Service) SetLanguage(ctx context.Context, lang string) {
	if lang == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	s.store.Set(ctx, languageKey, lang)
}

// IsFirstLaunch reports whether onboarding has never completed on this
// device. The flag is keyed by presence, not value.
func (s *Service) IsFirstLaunch(ctx context.Context) bool {
	_, ok := s.store.Get(ctx, hasLaunchedKey)
	return !ok
}

// CompleteOnboarding flips the first-launch flag permanently.
func (s *Service) CompleteOnboarding(ctx context.Context) {
	s.store.Set(ctx, hasLaunchedKey, "true")
}
