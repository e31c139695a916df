package model

import (
	"database/sql"
	"time"
)

// User mirrors a row of the `user` table. PasswordHash is the stored
// argon2id envelope and never leaves the server.
type User struct {
	ID           uint64         // user.id
	Username     string         // user.username (unique)
	Email        string         // user.email (unique)
	PasswordHash string         // user.password_hash
	Bio          sql.NullString // user.bio
	Avatar       sql.NullString // user.avatar
	CreatedAt    time.Time      // user.created_at
	UpdatedAt    time.Time      // user.updated_at
}

// UserPatch holds the profile fields a user may change. Nil fields are left
// untouched.
type UserPatch struct {
	Username *string
	Bio      *string
	Avatar   *string
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Bio == nil && p.Avatar == nil
}
