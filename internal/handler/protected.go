package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduverse/eduverse-backend/internal/middleware"
)

// Protected answers any authenticated request with a flattened view of the
// caller's identity. It demonstrates the auth gate without a role gate.
func Protected(c echo.Context) error {
	ident, ok := middleware.CurrentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "You have accessed a protected route",
		"user": echo.Map{
			"id":    ident.ID,
			"email": ident.Email,
			"name":  ident.Metadata.Name,
			"role":  ident.Metadata.Role,
		},
	})
}

// EducatorDashboard is gated to the educator role by the router.
func EducatorDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Welcome to the educator dashboard",
	})
}

// AdminPanel is gated to the admin role by the router.
func AdminPanel(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Welcome to the admin panel",
	})
}
