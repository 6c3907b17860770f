package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// dbError maps storage failures at the handler boundary. Pool-acquire
// timeouts surface as 503 instead of hanging; everything else stays a
// generic 500 so query text never reaches the client.
func dbError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "server error")
}
