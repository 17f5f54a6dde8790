package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/shopcore/internal/prefs"
	"github.com/example/shopcore/internal/session"
	"github.com/example/shopcore/internal/token"
)

type SettingsHandler struct {
	Prefs    *prefs.Service
	Sessions *session.Service
	Tokens   *token.Service
}

func (h *SettingsHandler) Get(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"settings":       h.Prefs.Settings(),
		"theme":          h.Prefs.Theme(),
		"resolved_theme": h.Prefs.ResolvedTheme(),
	})
}

func (h *SettingsHandler) ToggleNotifications(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Prefs.ToggleNotifications(c.Request().Context()))
}

func (h *SettingsHandler) ToggleSounds(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Prefs.ToggleSounds(c.Request().Context()))
}

func (h *SettingsHandler) ToggleVibration(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Prefs.ToggleVibration(c.Request().Context()))
}

func (h *SettingsHandler) SetTheme(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}

	var req struct {
		Theme string `json:"theme"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	switch req.Theme {
	case prefs.ThemeLight, prefs.ThemeDark, prefs.ThemeSystem:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid theme")
	}

	h.Prefs.SetTheme(c.Request().Context(), req.Theme)
	return c.JSON(http.StatusOK, echo.Map{
		"theme":          h.Prefs.Theme(),
		"resolved_theme": h.Prefs.ResolvedTheme(),
	})
}

// Language is device-global, no auth required.
func (h *SettingsHandler) GetLanguage(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"language": h.Prefs.Language()})
}

func (h *SettingsHandler) SetLanguage(c echo.Context) error {
	var req struct {
		Language string `json:"language"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Language == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "language is required")
	}

	h.Prefs.SetLanguage(c.Request().Context(), req.Language)
	return c.JSON(http.StatusOK, echo.Map{"language": h.Prefs.Language()})
}

func (h *SettingsHandler) Onboarding(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"first_launch": h.Prefs.IsFirstLaunch(c.Request().Context()),
	})
}

func (h *SettingsHandler) CompleteOnboarding(c echo.Context) error {
	h.Prefs.CompleteOnboarding(c.Request().Context())
	return c.JSON(http.StatusOK, echo.Map{"first_launch": false})
}
