package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/shopcore/internal/kvstore"
	"github.com/example/shopcore/internal/ratelimit"
	"github.com/example/shopcore/internal/session"
	"github.com/example/shopcore/internal/token"
	"github.com/example/shopcore/internal/userkey"
)

const (
	loginAction    = "login_attempt"
	registerAction = "register_attempt"

	profileImagePrefix = "profile_image_"
)

type AuthHandler struct {
	Sessions        *session.Service
	Tokens          *token.Service
	Store           *kvstore.Adapter
	LoginLimiter    *ratelimit.Limiter
	RegisterLimiter *ratelimit.Limiter
	Log             *slog.Logger
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	if !h.RegisterLimiter.Allow(registerAction) {
		return tooManyAttempts(c, h.RegisterLimiter.TimeUntilReset(registerAction))
	}

	ctx := c.Request().Context()
	if !h.Sessions.Register(ctx, req.Name, req.Email, req.Password) {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}

	// Registration never starts a session, the UI sends the user to login.
	return c.JSON(http.StatusOK, echo.Map{
		"name":  req.Name,
		"email": req.Email,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !h.LoginLimiter.Allow(loginAction) {
		return tooManyAttempts(c, h.LoginLimiter.TimeUntilReset(loginAction))
	}

	ctx := c.Request().Context()
	if !h.Sessions.Login(ctx, req.Email, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	h.LoginLimiter.Reset(loginAction)

	return h.respondWithToken(c, req.Email)
}

// LoginWithProvider accepts a profile already verified by a social identity
// provider. The token exchange itself happens outside this process.
func (h *AuthHandler) LoginWithProvider(c echo.Context) error {
	var req session.ExternalProfile
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if !h.LoginLimiter.Allow(loginAction) {
		return tooManyAttempts(c, h.LoginLimiter.TimeUntilReset(loginAction))
	}

	ctx := c.Request().Context()
	if !h.Sessions.LoginWithProvider(ctx, req) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid profile")
	}
	h.LoginLimiter.Reset(loginAction)

	return h.respondWithToken(c, req.Email)
}

func (h *AuthHandler) respondWithToken(c echo.Context, email string) error {
	access, err := h.Tokens.Issue(email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create access token")
	}
	c.SetCookie(CreateCookie("accessToken", access, "/", time.Now().Add(24*time.Hour)))

	u, _ := h.Sessions.Current()
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": access,
		"user":         u,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	h.Sessions.Logout(c.Request().Context())

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie("accessToken", "", "/", expired))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Session(c echo.Context) error {
	u, err := activeUser(c, h.Sessions, h.Tokens)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	u, err := activeUser(c, h.Sessions, h.Tokens)
	if err != nil {
		return err
	}

	var patch session.Patch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.Sessions.Update(c.Request().Context(), patch)
	updated, _ := h.Sessions.Current()
	h.Log.Info("profile updated", "email", u.Email)
	return c.JSON(http.StatusOK, updated)
}

// SetProfileImage stores a local image reference picked by the OS image
// picker, keyed per user.
func (h *AuthHandler) SetProfileImage(c echo.Context) error {
	u, err := activeUser(c, h.Sessions, h.Tokens)
	if err != nil {
		return err
	}

	var req struct {
		URI string `json:"uri"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.Store.Set(c.Request().Context(), userkey.ForUser(profileImagePrefix, u.Email), req.URI)
	return c.JSON(http.StatusOK, echo.Map{"uri": req.URI})
}

func (h *AuthHandler) GetProfileImage(c echo.Context) error {
	u, err := activeUser(c, h.Sessions, h.Tokens)
	if err != nil {
		return err
	}

	uri, _ := h.Store.Get(c.Request().Context(), userkey.ForUser(profileImagePrefix, u.Email))
	return c.JSON(http.StatusOK, echo.Map{"uri": uri})
}
