package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers the platform health probe at GET / with a plain "OK".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
