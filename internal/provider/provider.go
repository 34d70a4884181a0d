package provider

import (
	"context"
	"errors"

	"github.com/eduverse/eduverse-backend/internal/model"
)

// IdentityProvider is the contract every identity backend must implement.
// Implementations own credential verification, token issuance and per-user
// metadata; this service only orchestrates calls and reconciles profiles.
// Constructed once in cmd/server and passed explicitly to handlers and
// middleware, never held as package-global state.
type IdentityProvider interface {
	// SignUp creates a new account with the given metadata. The returned
	// session is nil when the backend requires email confirmation before
	// the first token can be issued.
	SignUp(ctx context.Context, email, password string, meta model.Metadata) (model.Identity, *model.Session, error)

	// SignInWithPassword verifies credentials and returns the identity
	// together with a fresh session.
	SignInWithPassword(ctx context.Context, email, password string) (model.Identity, model.Session, error)

	// GetUser resolves an access token to the identity it belongs to.
	// Invalid or expired tokens yield ErrInvalidToken.
	GetUser(ctx context.Context, accessToken string) (model.Identity, error)
}

// ErrInvalidToken is returned by GetUser when the backend rejects a token.
// Token failures are terminal per request; callers do not retry.
var ErrInvalidToken = errors.New("invalid token")

// Error carries a failure message reported by the identity backend. The
// message is surfaced verbatim to API clients on signup/login failures,
// matching the upstream contract. Status holds the backend's HTTP status
// when the failure came over the wire, zero otherwise.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }
