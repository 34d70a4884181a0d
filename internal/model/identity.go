package model

import "fmt"

// Role is the closed set of account roles known to the platform. Incoming
// role strings are validated with ParseRole at the request boundary; rows
// and tokens only ever carry one of these values.
type Role string

const (
	RoleStudent  Role = "student"
	RoleEducator Role = "educator"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role string against the known set. Unknown
// values are rejected rather than stored, so a typo in a signup request
// cannot mint an unrecognized role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleEducator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Metadata is the per-user metadata stored alongside an identity by the
// identity backend. The JSON shape matches GoTrue's user_metadata object.
type Metadata struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Identity is an authenticated account as reported by the identity backend.
// The ID is opaque and owned by the backend; this service never generates
// or mutates it.
type Identity struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Metadata Metadata `json:"user_metadata"`
}

// Session is a live access token issued on signup or login. It is handed
// back to the client and used once per request to resolve an Identity;
// nothing here is persisted server-side.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Profile is the application-side row for a user, keyed by the identity's
// id (1:1). It is created lazily on first login or first profile fetch and
// never deleted by this service.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
