package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/eduverse/eduverse-backend/internal/handler"
	"github.com/eduverse/eduverse-backend/internal/middleware"
	"github.com/eduverse/eduverse-backend/internal/model"
	"github.com/eduverse/eduverse-backend/internal/provider"
)

// RegisterRoutes wires the whole HTTP surface. The identity provider feeds
// the auth gate; limiter (optional, nil to disable) is applied per route so
// that on protected routes it runs after the auth gate and can key buckets
// on the resolved user id. Group-level middleware would run before any
// route-level gate, leaving every authenticated caller in the anon slot.
//
//	GET  /                        banner
//	GET  /api/health              liveness
//	GET  /api/test-supabase       storage connectivity probe
//	POST /api/auth/signup         create account
//	POST /api/auth/login          password login
//	GET  /api/auth/profile        auth gate; identity + profile
//	GET  /api/protected           auth gate
//	GET  /api/educator/dashboard  auth gate + educator role
//	GET  /api/admin/panel         auth gate + admin role
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler, p provider.IdentityProvider, limiter echo.MiddlewareFunc) {
	if limiter == nil {
		limiter = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	e.GET("/", handler.Root)

	api := e.Group("/api")

	api.GET("/health", handler.Health, limiter)
	api.GET("/test-supabase", a.StorageCheck, limiter)

	auth := api.Group("/auth")
	auth.POST("/signup", a.Signup, limiter)
	auth.POST("/login", a.Login, limiter)

	// Protected routes: the auth gate resolves the bearer token once and
	// hands the identity to the limiter, role gates and handlers via
	// context.
	authGate := middleware.Authenticate(p)
	auth.GET("/profile", a.Profile, authGate, limiter)

	api.GET("/protected", handler.Protected, authGate, limiter)
	api.GET("/educator/dashboard", handler.EducatorDashboard, authGate, limiter, middleware.RequireRole(model.RoleEducator))
	api.GET("/admin/panel", handler.AdminPanel, authGate, limiter, middleware.RequireRole(model.RoleAdmin))
}
