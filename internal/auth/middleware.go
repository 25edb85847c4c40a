package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AdminKey is set on the echo context once a request carries a valid token.
const AdminKey = "admin"

// Middleware rejects requests without a valid Bearer token.
func (s *Service) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
		}

		if err := s.Validate(parts[1]); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set(AdminKey, true)
		return next(c)
	}
}

// IsAdmin reports whether Middleware admitted the request.
func IsAdmin(c echo.Context) bool {
	ok, _ := c.Get(AdminKey).(bool)
	return ok
}
