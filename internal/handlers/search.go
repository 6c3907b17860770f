package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"productcatalog/internal/search"
	"productcatalog/internal/util"
)

type SearchHandler struct {
	Index *search.Index
}

func (h *SearchHandler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, products, err := h.Index.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}
