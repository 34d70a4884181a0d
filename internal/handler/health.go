package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the JSON health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Backend is running successfully",
	})
}

// Root serves a plain-text banner at the server root.
func Root(c echo.Context) error {
	return c.String(http.StatusOK, "EduVerse backend server is live")
}
