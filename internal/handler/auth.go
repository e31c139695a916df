package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/auth"
	"github.com/iliyamo/letters/internal/logging"
	"github.com/iliyamo/letters/internal/repository"
)

// AuthHandler exchanges credentials for an access token.
type AuthHandler struct {
	Users  UserStore
	Hasher PasswordHasher
	Tokens TokenIssuer
}

func NewAuthHandler(users UserStore, hasher PasswordHasher, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{Users: users, Hasher: hasher, Tokens: tokens}
}

type authorizeRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authorize handles POST /authorize (and its /login alias). Unknown email and
// wrong password produce the same InvalidCredentials error.
func (h *AuthHandler) Authorize(c echo.Context) error {
	var req authorizeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	email := repository.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return apperr.InvalidInput("email and password are required")
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.InvalidCredentials(nil)
	}
	if err != nil {
		return err
	}
	if err := checkPassword(c, h.Hasher, req.Password, u.PasswordHash, u.ID); err != nil {
		return err
	}

	tok, err := h.Tokens.Issue(u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tok)
}

// checkPassword verifies password against the stored hash of user uid. A
// corrupt stored hash is logged and reported to the client like a wrong
// password.
func checkPassword(c echo.Context, hasher PasswordHasher, password, stored string, uid uint64) error {
	err := hasher.Verify(c.Request().Context(), password, stored)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrMismatch):
		return apperr.InvalidCredentials(err)
	case errors.Is(err, auth.ErrBadHash):
		logging.ExtractLogger(c.Request().Context()).Error().
			Uint64("user_id", uid).
			Msg("stored password hash is malformed")
		return apperr.InvalidCredentials(err)
	}
	return err
}
