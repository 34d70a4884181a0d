package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eduverse/eduverse-backend/internal/model"
	"github.com/eduverse/eduverse-backend/internal/provider"
)

// Context keys under which the auth gate stores what it resolved. Handlers
// read them through CurrentIdentity and AccessToken instead of touching the
// keys directly.
const (
	identityKey = "identity"
	tokenKey    = "access_token"
)

// Authenticate returns the auth gate: it extracts the bearer token from the
// Authorization header, resolves it to an identity via the injected
// provider, and stores identity plus raw token in the request context.
// Requests without a token get 401 "Missing token"; requests whose token
// the provider rejects get 401 "Invalid token". Token failures are terminal
// per request, there are no retries.
func Authenticate(p provider.IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing token"})
			}
			ident, err := p.GetUser(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid token"})
			}
			c.Set(identityKey, ident)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// bearerToken pulls the token out of an Authorization header value by
// taking the second whitespace-separated segment ("Bearer <token>").
func bearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// CurrentIdentity returns the identity the auth gate attached to the
// request, if any.
func CurrentIdentity(c echo.Context) (model.Identity, bool) {
	ident, ok := c.Get(identityKey).(model.Identity)
	return ident, ok
}

// AccessToken returns the raw bearer token the auth gate verified for this
// request, or "" when the route is unauthenticated. Handlers reuse it to
// scope profile store calls to the requesting user.
func AccessToken(c echo.Context) string {
	token, _ := c.Get(tokenKey).(string)
	return token
}
