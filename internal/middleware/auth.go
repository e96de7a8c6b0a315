package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/jwtutil"
	"bcflats_backend/internal/models"
)

// Context keys set by RequireAuth for downstream handlers.
const (
	ContextAccountID = "accountID"
	ContextEmail     = "accountEmail"
	ContextRole      = "accountRole"
)

// RequireAuth returns a middleware that verifies the bearer token and
// stores the caller's identity in the echo context.
func RequireAuth(jwt *jwtutil.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			claims, err := jwt.Validate(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(ContextAccountID, claims.AccountID)
			c.Set(ContextEmail, claims.Email)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}

// RequireRole returns a middleware that restricts the route to the
// given roles. It must run after RequireAuth.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextRole).(models.Role)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}

// AccountID returns the authenticated account id from the context.
func AccountID(c echo.Context) uint {
	id, _ := c.Get(ContextAccountID).(uint)
	return id
}

// Role returns the authenticated role from the context.
func Role(c echo.Context) models.Role {
	role, _ := c.Get(ContextRole).(models.Role)
	return role
}
