package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/model"
)

const categoryColumns = "id, name, description, status, created_at, updated_at"

type CategoryRepo struct{ db *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func scanCategory(row rowScanner) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts c after checking that its name is free.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	taken, err := r.CheckNameExists(ctx, c.Name)
	if err != nil {
		return err
	}
	if taken {
		return apperr.AlreadyExists("category")
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO category (name, description, status) VALUES (?, ?, ?)",
		c.Name, c.Description, c.Status)
	if err != nil {
		return classify(err, "category", "create")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "category", "create")
	}
	c.ID = uint64(id)

	const qSelect = "SELECT created_at, updated_at FROM category WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return classify(err, "category", "load")
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM category WHERE id = ? LIMIT 1", id))
	if err != nil {
		return nil, classify(err, "category", "get")
	}
	return c, nil
}

func (r *CategoryRepo) CheckNameExists(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM category WHERE name = ? LIMIT 1", "category", name)
}

func (r *CategoryRepo) List(ctx context.Context, p Pagination) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM category ORDER BY "+p.OrderClause("")+" LIMIT ? OFFSET ?",
		p.Limit(), p.Offset())
	if err != nil {
		return nil, classify(err, "category", "list")
	}
	defer rows.Close()

	out := []*model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, classify(err, "category", "list")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "category", "list")
	}
	return out, nil
}

// Update applies patch to category id in one transaction and returns the
// resulting row.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, patch model.CategoryPatch) (*model.Category, error) {
	var out *model.Category
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		c, err := scanCategory(tx.QueryRowContext(ctx,
			"SELECT "+categoryColumns+" FROM category WHERE id = ? FOR UPDATE", id))
		if err != nil {
			return classify(err, "category", "get")
		}
		out = c
		if patch.Empty() {
			return nil
		}

		if patch.Name != nil && *patch.Name != c.Name {
			if err := nameTakenByOther(ctx, tx, "SELECT id FROM category WHERE name = ? LIMIT 1", "category", *patch.Name, id); err != nil {
				return err
			}
			c.Name = *patch.Name
		}
		if patch.Description != nil {
			c.Description = nullString(patch.Description)
		}
		if patch.Status != nil {
			c.Status = *patch.Status
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE category SET name = ?, description = ?, status = ? WHERE id = ?",
			c.Name, c.Description, c.Status, id); err != nil {
			return classify(err, "category", "update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes category id. A category still referenced by an article is
// kept and InvalidInput is returned.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := scanCategory(tx.QueryRowContext(ctx,
			"SELECT "+categoryColumns+" FROM category WHERE id = ? FOR UPDATE", id)); err != nil {
			return classify(err, "category", "get")
		}
		used, err := exists(ctx, tx, "SELECT 1 FROM article WHERE category_id = ? LIMIT 1", "category", id)
		if err != nil {
			return err
		}
		if used {
			return apperr.InvalidInput("category is still referenced by articles")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM category WHERE id = ?", id); err != nil {
			return classify(err, "category", "delete")
		}
		return nil
	})
}
