package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/shopcore/internal/session"
	"github.com/example/shopcore/internal/token"
)

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// activeUser resolves the access token from the request and checks it names
// the currently signed-in user.
func activeUser(c echo.Context, sessions *session.Service, tokens *token.Service) (session.User, error) {
	raw := ""
	if cookie, err := c.Cookie("accessToken"); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		raw = strings.TrimPrefix(auth, "Bearer ")
	}
	if raw == "" {
		return session.User{}, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	email, err := tokens.Parse(raw)
	if err != nil {
		return session.User{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token: "+err.Error())
	}

	u, ok := sessions.Current()
	if !ok || u.Email != email {
		return session.User{}, echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}
	return u, nil
}

func tooManyAttempts(c echo.Context, wait time.Duration) error {
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":          "too many attempts, try again later",
		"retry_after_ms": wait.Milliseconds(),
	})
}

// maskCard hides everything but the last four digits of a card number.
func maskCard(number string) (masked, lastFour string) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 4 {
		return number, digits
	}
	lastFour = digits[len(digits)-4:]
	return "**** **** **** " + lastFour, lastFour
}
