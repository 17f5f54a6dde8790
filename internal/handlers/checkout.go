package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/shopcore/internal/checkout"
	"github.com/example/shopcore/internal/events"
	"github.com/example/shopcore/internal/ratelimit"
	"github.com/example/shopcore/internal/session"
	"github.com/example/shopcore/internal/token"
)

const paymentAction = "payment_attempt"

type CheckoutHandler struct {
	Checkout       *checkout.Service
	Sessions       *session.Service
	Tokens         *token.Service
	PaymentLimiter *ratelimit.Limiter
	Events         *events.Producer
	Log            *slog.Logger
}

func (h *CheckoutHandler) Addresses(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Checkout.Addresses())
}

func (h *CheckoutHandler) SaveAddress(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}

	var req checkout.Address
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	saved := h.Checkout.SaveAddress(c.Request().Context(), req)
	return c.JSON(http.StatusOK, saved)
}

func (h *CheckoutHandler) DeleteAddress(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}

	h.Checkout.DeleteAddress(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, h.Checkout.Addresses())
}

func (h *CheckoutHandler) PaymentMethods(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Checkout.PaymentMethods())
}

// SavePaymentMethod masks the card number before it reaches the store; the
// store itself accepts whatever it is given.
func (h *CheckoutHandler) SavePaymentMethod(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}

	var req checkout.PaymentMethod
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Number, req.LastFour = maskCard(req.Number)

	saved := h.Checkout.SavePaymentMethod(c.Request().Context(), req)
	return c.JSON(http.StatusOK, saved)
}

func (h *CheckoutHandler) DeletePaymentMethod(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}

	h.Checkout.DeletePaymentMethod(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, h.Checkout.PaymentMethods())
}

// Pay submits a payment with a saved method. The gateway call is outside
// this core; the handler gates the attempt and records the event.
func (h *CheckoutHandler) Pay(c echo.Context) error {
	u, err := activeUser(c, h.Sessions, h.Tokens)
	if err != nil {
		return err
	}

	if !h.PaymentLimiter.Allow(paymentAction) {
		return tooManyAttempts(c, h.PaymentLimiter.TimeUntilReset(paymentAction))
	}

	var req struct {
		PaymentMethodID string `json:"payment_method_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var method *checkout.PaymentMethod
	for _, m := range h.Checkout.PaymentMethods() {
		if m.ID == req.PaymentMethodID {
			method = &m
			break
		}
	}
	if method == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown payment method")
	}

	h.Events.Publish(c.Request().Context(), "checkout_events", u.Email, map[string]any{
		"type":      "payment_submitted",
		"email":     u.Email,
		"method_id": method.ID,
		"last_four": method.LastFour,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "submitted",
		"last_four": method.LastFour,
	})
}
