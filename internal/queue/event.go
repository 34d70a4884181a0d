// Package queue defines message payloads exchanged over the message broker.
package queue

// UserEventsQueue is the durable queue carrying authentication events.
const UserEventsQueue = "user.events"

// Event names published by the auth flows.
const (
	EventUserSignedUp = "user.signup"
	EventUserLoggedIn = "user.login"
)

// UserEvent is published after a successful signup or login. It carries
// enough for downstream consumers (audit log, analytics, notifications) to
// act without querying the identity backend.
type UserEvent struct {
	Event  string `json:"event"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	At     string `json:"at"` // RFC3339 UTC
}
