package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eduverse/eduverse-backend/internal/model"
)

// RequireRole returns a gate that only lets through requests whose resolved
// identity carries one of the allowed roles. It must run after Authenticate;
// a missing identity is treated as a role mismatch, not a crash. The 403
// body names the allowed roles joined by "or" so clients can tell what the
// endpoint expects.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups and render the
	// denial message once at registration time.
	allowed := make(map[model.Role]bool, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = true
		names = append(names, string(r))
	}
	denied := fmt.Sprintf("Access denied: requires %s role", strings.Join(names, " or "))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := CurrentIdentity(c)
			if !ok || !allowed[ident.Metadata.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false,
					"error":   denied,
				})
			}
			return next(c)
		}
	}
}
