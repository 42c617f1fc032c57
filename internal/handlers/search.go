package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bookshelf-api/bookshelf/internal/search"
	"github.com/bookshelf-api/bookshelf/internal/util"
)

type SearchHandler struct {
	Search *search.Service
}

func (h *SearchHandler) Handler(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query error")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, books, err := h.Search.Search(c.Request().Context(), q, from, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "books": books})
}
