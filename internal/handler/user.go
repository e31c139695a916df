package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/model"
)

// UserHandler serves the profile of the authenticated user.
type UserHandler struct {
	Users  UserStore
	Hasher PasswordHasher
}

func NewUserHandler(users UserStore, hasher PasswordHasher) *UserHandler {
	return &UserHandler{Users: users, Hasher: hasher}
}

type profileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

type passwordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// GetProfile handles GET /users/profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// UpdateProfile handles PUT /users/profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	patch := model.UserPatch{
		Username: trimmed(req.Username),
		Bio:      req.Bio,
		Avatar:   trimmed(req.Avatar),
	}
	if patch.Username != nil {
		if err := requireText("username", *patch.Username); err != nil {
			return err
		}
	}
	if err := checkURL("avatar", patch.Avatar); err != nil {
		return err
	}

	u, err := h.Users.Update(c.Request().Context(), uid, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// ChangePassword handles PUT /users/password. The old password must verify.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	var req passwordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return apperr.InvalidInput("old_password and new_password are required")
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	if err := checkPassword(c, h.Hasher, req.OldPassword, u.PasswordHash, u.ID); err != nil {
		return err
	}
	hash, err := h.Hasher.Hash(ctx, req.NewPassword)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
