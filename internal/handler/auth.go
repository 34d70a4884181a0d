package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eduverse/eduverse-backend/internal/middleware"
	"github.com/eduverse/eduverse-backend/internal/model"
	"github.com/eduverse/eduverse-backend/internal/provider"
	"github.com/eduverse/eduverse-backend/internal/queue"
	"github.com/eduverse/eduverse-backend/internal/repository"
	queue_publisher "github.com/eduverse/eduverse-backend/internal/service"
)

// AuthHandler bundles the injected identity backend and profile store for
// the auth endpoints. Publish is the event sink for signup/login events;
// it defaults to the RabbitMQ publisher and is swappable in tests.
type AuthHandler struct {
	Provider provider.IdentityProvider
	Profiles repository.ProfileStore
	Publish  func(ctx context.Context, ev queue.UserEvent) error
}

func NewAuthHandler(p provider.IdentityProvider, profiles repository.ProfileStore) *AuthHandler {
	return &AuthHandler{
		Provider: p,
		Profiles: profiles,
		Publish:  queue_publisher.PublishUserEvent,
	}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // student | educator | admin
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates an account with the identity backend and, when a session
// is returned immediately (no email confirmation pending), writes the
// profile row using that session's token. The profile insert is
// best-effort: a failure is logged and signup still succeeds, because the
// row is recreated lazily on the next login or profile fetch.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	role, err := model.ParseRole(req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	ident, sess, err := h.Provider.SignUp(ctx, req.Email, req.Password, model.Metadata{
		Name: req.Name,
		Role: role,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	if sess != nil {
		p := model.Profile{ID: ident.ID, Name: req.Name, Role: role}
		if err := h.Profiles.Insert(ctx, sess.AccessToken, p); err != nil {
			c.Logger().Warnf("profile insert after signup failed for user %s: %v", ident.ID, err)
		}
	}

	_ = h.Publish(ctx, queue.UserEvent{
		Event:  queue.EventUserSignedUp,
		UserID: ident.ID,
		Email:  ident.Email,
		Role:   string(role),
		At:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Signup successful",
		"user":    ident,
	})
}

// Login exchanges credentials for a session and makes sure a profile row
// exists for the user, inserting one with the default "student" role when
// absent. Profile-fetch derives the role from identity metadata instead.
// The asymmetry is inherited from the original service: rows created under
// it already exist, so unifying the two paths would silently change what a
// first login writes.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	ident, sess, err := h.Provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	if _, err := h.Profiles.GetByID(ctx, sess.AccessToken, ident.ID); err != nil {
		// Absent or unreadable: the insert-if-absent below converges the
		// state either way, so only a failed write is worth logging.
		p := model.Profile{ID: ident.ID, Name: ident.Metadata.Name, Role: model.RoleStudent}
		if err := h.Profiles.Insert(ctx, sess.AccessToken, p); err != nil {
			c.Logger().Warnf("profile insert after login failed for user %s: %v", ident.ID, err)
		}
	}

	_ = h.Publish(ctx, queue.UserEvent{
		Event:  queue.EventUserLoggedIn,
		UserID: ident.ID,
		Email:  ident.Email,
		Role:   string(ident.Metadata.Role),
		At:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login successful",
		"session": sess,
		"user":    ident,
	})
}

// Profile returns the caller's identity together with their profile row,
// creating the row from identity metadata when it does not exist yet. The
// route runs behind the auth gate, so the identity and the raw token are
// read from the request context rather than re-verified here.
func (h *AuthHandler) Profile(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "Missing token"})
	}
	token := middleware.AccessToken(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	prof, err := h.Profiles.GetByID(ctx, token, ident.ID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		prof = model.Profile{ID: ident.ID, Name: ident.Metadata.Name, Role: ident.Metadata.Role}
		if err := h.Profiles.Insert(ctx, token, prof); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
		}
	} else if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    ident,
		"profile": prof,
	})
}

// StorageCheck probes the profile store with a one-row sample read. It is
// the only route that reports 5xx, to make storage outages visible to
// uptime checks.
func (h *AuthHandler) StorageCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.Profiles.Sample(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Storage connection failed",
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "Storage connection successful",
		"sampleData": rows,
	})
}
