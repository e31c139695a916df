package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/letters/internal/model"
)

const userColumns = "id, username, email, password_hash, bio, avatar, created_at, updated_at"

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// NormalizeEmail lowercases and trims an address before it is stored or
// looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u and fills in its id and timestamps. PasswordHash must
// already hold the stored envelope.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user (username, email, password_hash, bio, avatar) VALUES (?, ?, ?, ?, ?)",
		u.Username, u.Email, u.PasswordHash, u.Bio, u.Avatar)
	if err != nil {
		return classify(err, "user", "create")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "user", "create")
	}
	u.ID = uint64(id)

	const qSelect = "SELECT created_at, updated_at FROM user WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, qSelect, u.ID).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return classify(err, "user", "load")
	}
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE id = ? LIMIT 1", id))
	if err != nil {
		return nil, classify(err, "user", "get")
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM user WHERE email = ? LIMIT 1", NormalizeEmail(email)))
	if err != nil {
		return nil, classify(err, "user", "get")
	}
	return u, nil
}

func (r *UserRepo) CheckNameExists(ctx context.Context, username string) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM user WHERE username = ? LIMIT 1", "user", username)
}

func (r *UserRepo) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM user WHERE email = ? LIMIT 1", "user", NormalizeEmail(email))
}

// List returns one page of users ordered by creation time.
func (r *UserRepo) List(ctx context.Context, p Pagination) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM user ORDER BY "+p.OrderClause("")+" LIMIT ? OFFSET ?",
		p.Limit(), p.Offset())
	if err != nil {
		return nil, classify(err, "user", "list")
	}
	defer rows.Close()

	out := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, classify(err, "user", "list")
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "user", "list")
	}
	return out, nil
}

// Update applies patch to the profile of user id inside one transaction and
// returns the resulting row. A username taken by another user yields
// AlreadyExists.
func (r *UserRepo) Update(ctx context.Context, id uint64, patch model.UserPatch) (*model.User, error) {
	var out *model.User
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM user WHERE id = ? FOR UPDATE", id))
		if err != nil {
			return classify(err, "user", "get")
		}
		out = u
		if patch.Empty() {
			return nil
		}

		if patch.Username != nil && *patch.Username != u.Username {
			if err := nameTakenByOther(ctx, tx, "SELECT id FROM user WHERE username = ? LIMIT 1", "user", *patch.Username, id); err != nil {
				return err
			}
			u.Username = *patch.Username
		}
		if patch.Bio != nil {
			u.Bio = nullString(patch.Bio)
		}
		if patch.Avatar != nil {
			u.Avatar = nullString(patch.Avatar)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE user SET username = ?, bio = ?, avatar = ? WHERE id = ?",
			u.Username, u.Bio, u.Avatar, id); err != nil {
			return classify(err, "user", "update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePassword replaces the stored password envelope of user id.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE user SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return classify(err, "user", "update")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return classify(sql.ErrNoRows, "user", "update")
	}
	return nil
}
