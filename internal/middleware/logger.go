package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/logging"
)

// RequestID tags every request with a uuid and attaches a logger carrying
// that id to the request context.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
		RequestIDHandler: func(c echo.Context, id string) {
			logger := logging.With().Str("request_id", id).Logger()
			req := c.Request()
			c.SetRequest(req.WithContext(logging.AttachLoggerToContext(&logger, req.Context())))
		},
	})
}

// AccessLog writes one line per request. Errors are handed to the HTTP error
// handler first so the logged status is the one the client saw.
func AccessLog() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger := logging.ExtractLogger(c.Request().Context())
			ev := logger.Info()
			if v.Status >= 500 {
				ev = logger.Error()
			}
			ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("user", userID(c)).
				Msg("request")
			return nil
		},
	})
}

// Recover turns a panic in a handler into an Unexpected error.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if e, ok := recovered.(error); ok {
						err = apperr.Unexpected(e, "recovered from panic")
					} else {
						err = apperr.Unexpected(nil, "recovered from panic with value: %v", recovered)
					}
				}
			}()
			return next(c)
		}
	}
}
