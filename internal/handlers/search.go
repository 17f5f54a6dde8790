package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/example/shopcore/internal/catalog"
	"github.com/example/shopcore/internal/util"
)

type SearchHandler struct {
	Source catalog.Source
}

func (h *SearchHandler) Search(c echo.Context) error {
	if h.Source == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "catalog is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	ctx := c.Request().Context()

	total, products, err := h.Source.Search(ctx, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
