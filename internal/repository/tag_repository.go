package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/model"
)

const tagColumns = "id, name, type, status, description, created_at, updated_at"

type TagRepo struct{ db *sql.DB }

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

func scanTag(row rowScanner) (*model.Tag, error) {
	var t model.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Type, &t.Status, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) Create(ctx context.Context, t *model.Tag) error {
	taken, err := r.CheckNameExists(ctx, t.Name)
	if err != nil {
		return err
	}
	if taken {
		return apperr.AlreadyExists("tag")
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO tag (name, type, status, description) VALUES (?, ?, ?, ?)",
		t.Name, t.Type, t.Status, t.Description)
	if err != nil {
		return classify(err, "tag", "create")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "tag", "create")
	}
	t.ID = uint64(id)

	const qSelect = "SELECT created_at, updated_at FROM tag WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return classify(err, "tag", "load")
	}
	return nil
}

func (r *TagRepo) GetByID(ctx context.Context, id uint64) (*model.Tag, error) {
	t, err := scanTag(r.db.QueryRowContext(ctx,
		"SELECT "+tagColumns+" FROM tag WHERE id = ? LIMIT 1", id))
	if err != nil {
		return nil, classify(err, "tag", "get")
	}
	return t, nil
}

func (r *TagRepo) CheckNameExists(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM tag WHERE name = ? LIMIT 1", "tag", name)
}

func (r *TagRepo) List(ctx context.Context, p Pagination) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+tagColumns+" FROM tag ORDER BY "+p.OrderClause("")+" LIMIT ? OFFSET ?",
		p.Limit(), p.Offset())
	if err != nil {
		return nil, classify(err, "tag", "list")
	}
	return collectTags(rows)
}

func (r *TagRepo) Update(ctx context.Context, id uint64, patch model.TagPatch) (*model.Tag, error) {
	var out *model.Tag
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		t, err := scanTag(tx.QueryRowContext(ctx,
			"SELECT "+tagColumns+" FROM tag WHERE id = ? FOR UPDATE", id))
		if err != nil {
			return classify(err, "tag", "get")
		}
		out = t
		if patch.Empty() {
			return nil
		}

		if patch.Name != nil && *patch.Name != t.Name {
			if err := nameTakenByOther(ctx, tx, "SELECT id FROM tag WHERE name = ? LIMIT 1", "tag", *patch.Name, id); err != nil {
				return err
			}
			t.Name = *patch.Name
		}
		if patch.Type != nil {
			t.Type = *patch.Type
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Description != nil {
			t.Description = nullString(patch.Description)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE tag SET name = ?, type = ?, status = ?, description = ? WHERE id = ?",
			t.Name, t.Type, t.Status, t.Description, id); err != nil {
			return classify(err, "tag", "update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes tag id together with its article associations.
func (r *TagRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := scanTag(tx.QueryRowContext(ctx,
			"SELECT "+tagColumns+" FROM tag WHERE id = ? FOR UPDATE", id)); err != nil {
			return classify(err, "tag", "get")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM article_tag WHERE tag_id = ?", id); err != nil {
			return classify(err, "tag", "delete")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tag WHERE id = ?", id); err != nil {
			return classify(err, "tag", "delete")
		}
		return nil
	})
}

type rowsQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func tagsByNames(ctx context.Context, q rowsQueryer, names []string) ([]*model.Tag, error) {
	if len(names) == 0 {
		return []*model.Tag{}, nil
	}
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	rows, err := q.QueryContext(ctx,
		"SELECT "+tagColumns+" FROM tag WHERE name IN ("+placeholders(len(names))+") ORDER BY name",
		args...)
	if err != nil {
		return nil, classify(err, "tag", "list")
	}
	return collectTags(rows)
}

func collectTags(rows *sql.Rows) ([]*model.Tag, error) {
	defer rows.Close()
	out := []*model.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, classify(err, "tag", "list")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "tag", "list")
	}
	return out, nil
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
