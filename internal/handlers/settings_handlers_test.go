package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestSettingsHandlers(t *testing.T) {
	env := newTestEnv(t)
	ck := login(t, env)

	rec, c := env.doJSONRequest(http.MethodGet, "/settings", nil, ck)
	require.NoError(t, env.Settings.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Settings struct {
			Notifications bool `json:"notifications"`
			Sounds        bool `json:"sounds"`
			Vibration     bool `json:"vibration"`
		} `json:"settings"`
		Theme         string `json:"theme"`
		ResolvedTheme string `json:"resolved_theme"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Settings.Notifications)
	require.Equal(t, "system", resp.Theme)
	require.Equal(t, "light", resp.ResolvedTheme)

	recT, cT := env.doJSONRequest(http.MethodPost, "/settings/sounds", nil, ck)
	require.NoError(t, env.Settings.ToggleSounds(cT))
	var settings struct {
		Sounds bool `json:"sounds"`
	}
	require.NoError(t, json.Unmarshal(recT.Body.Bytes(), &settings))
	require.False(t, settings.Sounds)
}

func TestSetThemeHandler(t *testing.T) {
	env := newTestEnv(t)
	ck := login(t, env)

	rec, c := env.doJSONRequest(http.MethodPut, "/settings/theme", map[string]string{"theme": "dark"}, ck)
	require.NoError(t, env.Settings.SetTheme(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "dark", resp["theme"])
	require.Equal(t, "dark", resp["resolved_theme"])

	_, cBad := env.doJSONRequest(http.MethodPut, "/settings/theme", map[string]string{"theme": "neon"}, ck)
	err := env.Settings.SetTheme(cBad)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLanguageHandlersNeedNoAuth(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPut, "/language", map[string]string{"language": "ru"})
	require.NoError(t, env.Settings.SetLanguage(c))
	require.Equal(t, http.StatusOK, rec.Code)

	recGet, cGet := env.doJSONRequest(http.MethodGet, "/language", nil)
	require.NoError(t, env.Settings.GetLanguage(cGet))
	var resp map[string]string
	require.NoError(t, json.Unmarshal(recGet.Body.Bytes(), &resp))
	require.Equal(t, "ru", resp["language"])
}

func TestOnboardingHandlers(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/onboarding", nil)
	require.NoError(t, env.Settings.Onboarding(c))
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp["first_launch"])

	_, cDone := env.doJSONRequest(http.MethodPost, "/onboarding/complete", nil)
	require.NoError(t, env.Settings.CompleteOnboarding(cDone))

	recAgain, cAgain := env.doJSONRequest(http.MethodGet, "/onboarding", nil)
	require.NoError(t, env.Settings.Onboarding(cAgain))
	require.NoError(t, json.Unmarshal(recAgain.Body.Bytes(), &resp))
	require.False(t, resp["first_launch"])
}

func TestSearchWithoutCatalog(t *testing.T) {
	env := newTestEnv(t)

	h := &SearchHandler{}
	_, c := env.doJSONRequest(http.MethodGet, "/search?q=shoes", nil)
	err := h.Search(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusServiceUnavailable, he.Code)
}
