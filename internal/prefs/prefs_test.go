package prefs

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/shopcore/internal/kvstore"
	"github.com/example/shopcore/internal/logging"
)

func newTestStore(t *testing.T) *kvstore.Adapter {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	store, err := kvstore.New(db, []byte("test-secret"), logging.Discard())
	require.NoError(t, err)
	return store
}

func TestDefaults(t *testing.T) {
	s := NewService(newTestStore(t), nil, logging.Discard())

	require.Equal(t, Settings{Notifications: true, Sounds: true, Vibration: true}, s.Settings())
	require.Equal(t, ThemeSystem, s.Theme())
	require.Equal(t, "en", s.Language())
}

func TestTogglePersistsPerUser(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	s := NewService(store, nil, logging.Discard())

	s.OnIdentityChanged(ctx, "ana@x.com")
	got := s.ToggleNotifications(ctx)
	require.False(t, got.Notifications)

	// fresh service over the same storage sees the persisted value
	again := NewService(store, nil, logging.Discard())
	again.OnIdentityChanged(ctx, "ana@x.com")
	require.False(t, again.Settings().Notifications)
	require.True(t, again.Settings().Sounds)
}

func TestLogoutResetsMemoryNotDisk(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	s := NewService(store, nil, logging.Discard())

	s.OnIdentityChanged(ctx, "ana@x.com")
	s.ToggleVibration(ctx)
	s.SetTheme(ctx, ThemeDark)

	s.OnIdentityChanged(ctx, "")
	require.True(t, s.Settings().Vibration)
	require.Equal(t, ThemeSystem, s.Theme())

	s.OnIdentityChanged(ctx, "ana@x.com")
	require.False(t, s.Settings().Vibration)
	require.Equal(t, ThemeDark, s.Theme())
}

func TestSignedOutToggleDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	s := NewService(store, nil, logging.Discard())

	got := s.ToggleSounds(ctx)
	require.False(t, got.Sounds)

	s.OnIdentityChanged(ctx, "ana@x.com")
	require.True(t, s.Settings().Sounds)
}

func TestThemeResolution(t *testing.T) {
	ctx := context.Background()
	scheme := ThemeDark
	s := NewService(newTestStore(t), func() string { return scheme }, logging.Discard())
	s.OnIdentityChanged(ctx, "ana@x.com")

	require.Equal(t, ThemeSystem, s.Theme())
	require.Equal(t, ThemeDark, s.ResolvedTheme())

	scheme = ThemeLight
	require.Equal(t, ThemeLight, s.ResolvedTheme())

	s.SetTheme(ctx, ThemeDark)
	require.Equal(t, ThemeDark, s.ResolvedTheme())

	// invalid themes are ignored
	s.SetTheme(ctx, "neon")
	require.Equal(t, ThemeDark, s.Theme())
}

func TestLanguageIsDeviceGlobal(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	s := NewService(store, nil, logging.Discard())

	s.OnIdentityChanged(ctx, "ana@x.com")
	s.SetLanguage(ctx, "de")

	// identity changes do not touch the language
	s.OnIdentityChanged(ctx, "")
	require.Equal(t, "de", s.Language())
	s.OnIdentityChanged(ctx, "bob@x.com")
	require.Equal(t, "de", s.Language())

	// a restart reads it back from the global key
	again := NewService(store, nil, logging.Discard())
	again.Init(ctx)
	require.Equal(t, "de", again.Language())
}

func TestFirstLaunch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	s := NewService(store, nil, logging.Discard())

	require.True(t, s.IsFirstLaunch(ctx))
	s.CompleteOnboarding(ctx)
	require.False(t, s.IsFirstLaunch(ctx))

	// flag survives a restart
	again := NewService(store, nil, logging.Discard())
	require.False(t, again.IsFirstLaunch(ctx))
}
