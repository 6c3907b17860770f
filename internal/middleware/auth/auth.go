package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"productcatalog/internal/token"
)

// ContextKey is where RequireAuth stores the verified claims on the
// echo context.
const ContextKey = "user"

// RequireAuth extracts the bearer token from the Authorization header,
// verifies it and attaches the claims to the request. Requests without a
// valid token never reach the handler.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			const scheme = "Bearer "
			if !strings.HasPrefix(header, scheme) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			raw := strings.TrimSpace(header[len(scheme):])
			claims, err := token.Parse(raw, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(ContextKey, claims)
			return next(c)
		}
	}
}

// RequireAdmin must run after RequireAuth. It trusts the isadmin claim at
// face value; a stolen admin token keeps its privileges until expiry.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(ContextKey).(*token.Claims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}
		if !claims.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// ClaimsFromContext returns the claims RequireAuth attached, if any.
func ClaimsFromContext(c echo.Context) (*token.Claims, bool) {
	claims, ok := c.Get(ContextKey).(*token.Claims)
	return claims, ok
}
