package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/example/shopcore/internal/favorites"
	"github.com/example/shopcore/internal/session"
	"github.com/example/shopcore/internal/token"
)

type FavoritesHandler struct {
	Favorites *favorites.Service
	Sessions  *session.Service
	Tokens    *token.Service
}

func (h *FavoritesHandler) List(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.Favorites.All())
}

func (h *FavoritesHandler) Toggle(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}

	var req favorites.Entry
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ProductID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	h.Favorites.Toggle(c.Request().Context(), req)
	return c.JSON(http.StatusOK, echo.Map{
		"product_id":  req.ProductID,
		"is_favorite": h.Favorites.IsFavorite(req.ProductID),
	})
}

func (h *FavoritesHandler) Remove(c echo.Context) error {
	if _, err := activeUser(c, h.Sessions, h.Tokens); err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	h.Favorites.Remove(c.Request().Context(), uint(id))
	return c.JSON(http.StatusOK, h.Favorites.All())
}
