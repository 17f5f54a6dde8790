package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/shopcore/internal/cart"
	"github.com/example/shopcore/internal/checkout"
	"github.com/example/shopcore/internal/favorites"
	"github.com/example/shopcore/internal/kvstore"
	"github.com/example/shopcore/internal/logging"
	"github.com/example/shopcore/internal/prefs"
	"github.com/example/shopcore/internal/ratelimit"
	"github.com/example/shopcore/internal/session"
	"github.com/example/shopcore/internal/token"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	Auth     *AuthHandler
	Cart     *CartHandler
	Fav      *FavoritesHandler
	Settings *SettingsHandler
	Checkout *CheckoutHandler
	Sessions *session.Service
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	log := logging.Discard()
	store, err := kvstore.New(db, []byte("test-secret"), log)
	require.NoError(t, err)

	sessions := session.NewService(store, nil, log)
	preferences := prefs.NewService(store, nil, log)
	cartStore := cart.NewService(store, log)
	favoritesStore := favorites.NewService(store, log)
	checkoutStore := checkout.NewService(store, log)

	sessions.Subscribe(preferences)
	sessions.Subscribe(cartStore)
	sessions.Subscribe(favoritesStore)
	sessions.Subscribe(checkoutStore)

	tokens := &token.Service{Secret: []byte("test-secret"), TTL: time.Hour}

	loginLimiter := ratelimit.New(ratelimit.Policy{Window: time.Minute, MaxAttempts: 3})
	registerLimiter := ratelimit.New(ratelimit.Policy{Window: 5 * time.Minute, MaxAttempts: 10})
	checkoutLimiter := ratelimit.New(ratelimit.Policy{Window: time.Minute, MaxAttempts: 3})
	paymentLimiter := ratelimit.New(ratelimit.Policy{Window: time.Minute, MaxAttempts: 3})

	return &testEnv{
		T: t,
		E: echo.New(),
		Auth: &AuthHandler{
			Sessions:        sessions,
			Tokens:          tokens,
			Store:           store,
			LoginLimiter:    loginLimiter,
			RegisterLimiter: registerLimiter,
			Log:             log,
		},
		Cart: &CartHandler{
			Cart:            cartStore,
			Sessions:        sessions,
			Tokens:          tokens,
			CheckoutLimiter: checkoutLimiter,
			Log:             log,
		},
		Fav:      &FavoritesHandler{Favorites: favoritesStore, Sessions: sessions, Tokens: tokens},
		Settings: &SettingsHandler{Prefs: preferences, Sessions: sessions, Tokens: tokens},
		Checkout: &CheckoutHandler{
			Checkout:       checkoutStore,
			Sessions:       sessions,
			Tokens:         tokens,
			PaymentLimiter: paymentLimiter,
			Log:            log,
		},
		Sessions: sessions,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func login(t *testing.T, env *testEnv) *http.Cookie {
	payload := map[string]string{
		"name":     "Ana",
		"email":    "ana@x.com",
		"password": "secret1",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/register", payload)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)

	recLogin, cLogin := env.doJSONRequest(http.MethodPost, "/login", payload)
	require.NoError(t, env.Auth.Login(cLogin))
	require.Equal(t, http.StatusOK, recLogin.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(recLogin.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)

	return &http.Cookie{Name: "accessToken", Value: resp.AccessToken, Path: "/"}
}
