package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/example/shopcore/internal/cart"
	"github.com/example/shopcore/internal/events"
	"github.com/example/shopcore/internal/ratelimit"
	"github.com/example/shopcore/internal/session"
	"github.com/example/shopcore/internal/token"
)

const checkoutAction = "checkout_attempt"

// taxRate and shipping are display derivations, never persisted.
const taxRate = 0.10

type CartHandler struct {
	Cart            *cart.Service
	Sessions        *session.Service
	Tokens          *token.Service
	CheckoutLimiter *ratelimit.Limiter
	Events          *events.Producer
	Log             *slog.Logger
}

func (h *CartHandler) GetCart(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Cart.Items())
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	u, err := activeUser(c, h.Sessions, h.Tokens)
	if err != nil {
		return err
	}

	var req cart.Item
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	added := h.Cart.Add(c.Request().Context(), req)

	h.Events.Publish(c.Request().Context(), "cart_events", u.Email, map[string]any{
		"type":       "cart_item_added",
		"email":      u.Email,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	})
	return c.JSON(http.StatusOK, added)
}

func (h *CartHandler) DeleteFromCart(c echo.Context) error {
	u, err := activeUser(c, h.Sessions, h.Tokens)
	if err != nil {
		return err
	}

	lineID := c.Param("id")
	if lineID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	h.Cart.Remove(c.Request().Context(), lineID)

	h.Events.Publish(c.Request().Context(), "cart_events", u.Email, map[string]any{
		"type":    "cart_item_deleted",
		"email":   u.Email,
		"line_id": lineID,
	})
	return c.JSON(http.StatusOK, h.Cart.Items())
}

// Summary derives subtotal, tax and total for the checkout screen.
func (h *CartHandler) Summary(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}

	subtotal := h.Cart.Total()
	tax := subtotal * taxRate
	return c.JSON(http.StatusOK, echo.Map{
		"subtotal": subtotal,
		"tax":      tax,
		"shipping": 0.0,
		"total":    subtotal + tax,
	})
}

// MakeOrder turns the cart into an order. The checkout limiter gates the
// attempt before anything else happens.
func (h *CartHandler) MakeOrder(c echo.Context) error {
	u, err := activeUser(c, h.Sessions, h.Tokens)
	if err != nil {
		return err
	}

	if !h.CheckoutLimiter.Allow(checkoutAction) {
		return tooManyAttempts(c, h.CheckoutLimiter.TimeUntilReset(checkoutAction))
	}

	items := h.Cart.Items()
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
	}

	subtotal := h.Cart.Total()
	tax := subtotal * taxRate
	orderID := uuid.NewString()

	h.Cart.Clear(c.Request().Context())

	h.Events.Publish(c.Request().Context(), "cart_events", u.Email, map[string]any{
		"type":     "order_created",
		"email":    u.Email,
		"order_id": orderID,
		"total":    subtotal + tax,
	})
	return c.JSON(http.StatusOK, echo.Map{
		"order_id": orderID,
		"subtotal": subtotal,
		"tax":      tax,
		"shipping": 0.0,
		"total":    subtotal + tax,
		"status":   "new",
		"items":    items,
	})
}
