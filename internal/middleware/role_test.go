package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eduverse/eduverse-backend/internal/model"
)

func runRoleGate(t *testing.T, ident *model.Identity, roles ...model.Role) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/educator/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if ident != nil {
		c.Set(identityKey, *ident)
	}

	h := RequireRole(roles...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func deniedMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Error("success should be false on denial")
	}
	return body.Error
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	ident := model.Identity{ID: "u1", Metadata: model.Metadata{Role: model.RoleEducator}}
	rec := runRoleGate(t, &ident, model.RoleEducator)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	ident := model.Identity{ID: "u1", Metadata: model.Metadata{Role: model.RoleStudent}}
	rec := runRoleGate(t, &ident, model.RoleEducator)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := deniedMessage(t, rec); got != "Access denied: requires educator role" {
		t.Errorf("error = %q, want %q", got, "Access denied: requires educator role")
	}
}

func TestRequireRoleJoinsAllowedRolesWithOr(t *testing.T) {
	ident := model.Identity{ID: "u1", Metadata: model.Metadata{Role: model.RoleStudent}}
	rec := runRoleGate(t, &ident, model.RoleEducator, model.RoleAdmin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := deniedMessage(t, rec); got != "Access denied: requires educator or admin role" {
		t.Errorf("error = %q, want %q", got, "Access denied: requires educator or admin role")
	}
}

func TestRequireRoleMissingIdentityIsMismatch(t *testing.T) {
	// No identity in context (gate misordered or skipped) must deny, not panic.
	rec := runRoleGate(t, nil, model.RoleAdmin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
