package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Ping answers GET /ping without touching any dependency.
func Ping(c echo.Context) error {
	return c.String(http.StatusOK, "pong")
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Healthz reports whether the database answers within two seconds. It is
// used by load balancers and returns 503 when the database is unreachable.
func Healthz(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
		}
		return c.JSON(http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
	}
}
