package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/auth"
)

// Context keys set by RequireAuth and Identify.
const (
	ContextKeyClaims = "claims"
	ContextKeyUserID = "user_id"
)

var errMissingBearer = errors.New("missing bearer token")

// TokenValidator is the part of auth.TokenService the guard needs.
type TokenValidator interface {
	Validate(raw string) (auth.Claims, error)
}

// bearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, auth.TokenType) {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// RequireAuth rejects requests without a valid bearer token. On success the
// claims are stored under ContextKeyClaims and the subject under
// ContextKeyUserID. Failures are returned as InvalidToken errors for the
// HTTP error handler to render.
func RequireAuth(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apperr.InvalidToken(errMissingBearer)
			}
			claims, err := tokens.Validate(raw)
			if err != nil {
				return err
			}
			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyUserID, claims.Sub)
			return next(c)
		}
	}
}

// Identify stores the claims of a valid bearer token like RequireAuth does,
// but lets every request through. It runs ahead of the rate limiter so keys
// carry the caller's user id.
func Identify(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization)); ok {
				if claims, err := tokens.Validate(raw); err == nil {
					c.Set(ContextKeyClaims, claims)
					c.Set(ContextKeyUserID, claims.Sub)
				}
			}
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(c echo.Context) (auth.Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(auth.Claims)
	return claims, ok
}
