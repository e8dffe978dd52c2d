package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	IsHealthy() bool
}

// Health answers "OK", or 503 when the database connection is down.
func Health(db HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil && !db.IsHealthy() {
			return c.String(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.String(http.StatusOK, "OK")
	}
}
