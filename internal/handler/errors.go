package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/logging"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// fromHTTPError classifies errors raised by echo itself: unknown routes,
// wrong methods, unreadable bodies and the like.
func fromHTTPError(he *echo.HTTPError) error {
	msg := http.StatusText(he.Code)
	if s, ok := he.Message.(string); ok && s != "" {
		msg = s
	}
	switch {
	case he.Code == http.StatusNotFound:
		return apperr.New(apperr.KindNotFound, he, "resource not found")
	case he.Code == http.StatusUnauthorized:
		return apperr.InvalidToken(he)
	case he.Code >= 400 && he.Code < 500:
		return apperr.New(apperr.KindInvalidInput, he, "%s", msg)
	}
	return apperr.Unexpected(he, "%s", msg)
}

// ErrorHandler is installed as echo's HTTPErrorHandler and is the only place
// that turns an error into a response. Server faults are logged with their
// stack; their cause never reaches the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		err = fromHTTPError(he)
	}
	kind := apperr.KindOf(err)

	logger := logging.ExtractLogger(c.Request().Context())
	if kind.Internal() {
		logger.Error().Stack().Err(err).Str("path", c.Path()).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("path", c.Path()).Msg("request rejected")
	}

	body := errorResponse{
		Code:    kind.Code(),
		Error:   kind.String(),
		Message: apperr.PublicMessage(err),
	}
	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(kind.Status())
	} else {
		werr = c.JSON(kind.Status(), body)
	}
	if werr != nil {
		logger.Error().Err(werr).Msg("failed to write error response")
	}
}
