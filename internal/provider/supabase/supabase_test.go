package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eduverse/eduverse-backend/internal/model"
	"github.com/eduverse/eduverse-backend/internal/provider"
)

func TestSignUpWithImmediateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/signup" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Errorf("apikey header = %q", r.Header.Get("apikey"))
		}
		var req struct {
			Email    string         `json:"email"`
			Password string         `json:"password"`
			Data     model.Metadata `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Email != "a@x.com" || req.Data.Name != "Ann" || req.Data.Role != model.RoleAdmin {
			t.Errorf("request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "jwt-abc",
			"token_type":   "bearer",
			"expires_in":   3600,
			"user": map[string]any{
				"id":            "uid-1",
				"email":         "a@x.com",
				"user_metadata": map[string]any{"name": "Ann", "role": "admin"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	ident, sess, err := c.SignUp(context.Background(), "a@x.com", "p", model.Metadata{Name: "Ann", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if sess == nil || sess.AccessToken != "jwt-abc" || sess.ExpiresIn != 3600 {
		t.Fatalf("session = %+v", sess)
	}
	if ident.ID != "uid-1" || ident.Metadata.Role != model.RoleAdmin {
		t.Errorf("identity = %+v", ident)
	}
}

func TestSignUpPendingConfirmationHasNoSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// GoTrue returns the bare user object when email confirmation is on.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "uid-2",
			"email":         "b@x.com",
			"user_metadata": map[string]any{"name": "Bea", "role": "student"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	ident, sess, err := c.SignUp(context.Background(), "b@x.com", "p", model.Metadata{Name: "Bea", Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if sess != nil {
		t.Errorf("session = %+v, want nil while confirmation is pending", sess)
	}
	if ident.ID != "uid-2" || ident.Metadata.Name != "Bea" {
		t.Errorf("identity = %+v", ident)
	}
}

func TestSignInPasswordGrantAndErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("url = %q", r.URL.String())
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	_, _, err := c.SignInWithPassword(context.Background(), "a@x.com", "wrong")
	var perr *provider.Error
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *provider.Error", err)
	}
	// error_description wins over the bare error code.
	if perr.Message != "Invalid login credentials" {
		t.Errorf("message = %q", perr.Message)
	}
}

func TestErrorMessagePreferenceOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"msg":   "Password should be at least 6 characters",
			"error": "weak_password",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	_, _, err := c.SignUp(context.Background(), "a@x.com", "p", model.Metadata{})
	var perr *provider.Error
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *provider.Error", err)
	}
	if perr.Message != "Password should be at least 6 characters" {
		t.Errorf("message = %q, want msg field preferred", perr.Message)
	}
}

func TestGetUserPassesBearerAndDecodesIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer user-jwt" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "uid-1",
			"email":         "a@x.com",
			"user_metadata": map[string]any{"name": "Ann", "role": "educator"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	ident, err := c.GetUser(context.Background(), "user-jwt")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if ident.Metadata.Role != model.RoleEducator {
		t.Errorf("identity = %+v", ident)
	}
}

func TestGetUserRejectedTokenIsErrInvalidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "invalid JWT"})
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key")
	_, err := c.GetUser(context.Background(), "expired")
	if !errors.Is(err, provider.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
