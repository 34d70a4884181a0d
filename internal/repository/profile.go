// Package repository provides access to profile rows. Two implementations
// exist: a MySQL-backed store for self-hosted deployments and a PostgREST
// client for deployments where rows live in the managed platform.
package repository

import (
	"context"
	"errors"

	"github.com/eduverse/eduverse-backend/internal/model"
)

// ErrProfileNotFound is returned by GetByID when no row exists for the id.
// Callers treat it as "absent, create lazily" rather than as a failure.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore is the record store holding one profile row per identity.
// authToken scopes the call to the requesting user where the backing store
// enforces row-level access (the PostgREST store); the SQL store ignores it.
type ProfileStore interface {
	// GetByID fetches the profile for an identity id.
	GetByID(ctx context.Context, authToken, id string) (model.Profile, error)

	// Insert writes a profile row if one does not already exist. Concurrent
	// first logins for the same user converge on a single row; the insert is
	// a no-op when the id is already present.
	Insert(ctx context.Context, authToken string, p model.Profile) error

	// Sample reads at most one row using application credentials. It backs
	// the storage connectivity probe.
	Sample(ctx context.Context) ([]model.Profile, error)
}
