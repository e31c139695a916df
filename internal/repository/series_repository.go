package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/model"
)

const seriesColumns = "id, name, description, cover, status, nums, type, published_at, user_id, created_at, updated_at"

type SeriesRepo struct{ db *sql.DB }

func NewSeriesRepo(db *sql.DB) *SeriesRepo { return &SeriesRepo{db: db} }

func scanSeries(row rowScanner) (*model.Series, error) {
	var s model.Series
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Cover, &s.Status, &s.Nums, &s.Type,
		&s.PublishedAt, &s.UserID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts s. A zero PublishedAt is left to the column default.
func (r *SeriesRepo) Create(ctx context.Context, s *model.Series) error {
	taken, err := r.CheckNameExists(ctx, s.Name)
	if err != nil {
		return err
	}
	if taken {
		return apperr.AlreadyExists("series")
	}

	var publishedAt any
	if !s.PublishedAt.IsZero() {
		publishedAt = s.PublishedAt
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO series (name, description, cover, status, nums, type, published_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP), ?)`,
		s.Name, s.Description, s.Cover, s.Status, s.Nums, s.Type, publishedAt, s.UserID)
	if err != nil {
		return classify(err, "series", "create")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify(err, "series", "create")
	}
	s.ID = uint64(id)

	const qSelect = "SELECT published_at, created_at, updated_at FROM series WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, qSelect, s.ID).Scan(&s.PublishedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return classify(err, "series", "load")
	}
	return nil
}

func (r *SeriesRepo) GetByID(ctx context.Context, id uint64) (*model.Series, error) {
	s, err := scanSeries(r.db.QueryRowContext(ctx,
		"SELECT "+seriesColumns+" FROM series WHERE id = ? LIMIT 1", id))
	if err != nil {
		return nil, classify(err, "series", "get")
	}
	return s, nil
}

func (r *SeriesRepo) CheckNameExists(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.db, "SELECT 1 FROM series WHERE name = ? LIMIT 1", "series", name)
}

func (r *SeriesRepo) List(ctx context.Context, p Pagination) ([]*model.Series, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+seriesColumns+" FROM series ORDER BY "+p.OrderClause("")+" LIMIT ? OFFSET ?",
		p.Limit(), p.Offset())
	if err != nil {
		return nil, classify(err, "series", "list")
	}
	defer rows.Close()

	out := []*model.Series{}
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, classify(err, "series", "list")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "series", "list")
	}
	return out, nil
}

func (r *SeriesRepo) Update(ctx context.Context, id uint64, patch model.SeriesPatch) (*model.Series, error) {
	var out *model.Series
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		s, err := scanSeries(tx.QueryRowContext(ctx,
			"SELECT "+seriesColumns+" FROM series WHERE id = ? FOR UPDATE", id))
		if err != nil {
			return classify(err, "series", "get")
		}
		out = s
		if patch.Empty() {
			return nil
		}

		if patch.Name != nil && *patch.Name != s.Name {
			if err := nameTakenByOther(ctx, tx, "SELECT id FROM series WHERE name = ? LIMIT 1", "series", *patch.Name, id); err != nil {
				return err
			}
			s.Name = *patch.Name
		}
		if patch.Description != nil {
			s.Description = nullString(patch.Description)
		}
		if patch.Cover != nil {
			s.Cover = *patch.Cover
		}
		if patch.Status != nil {
			s.Status = *patch.Status
		}
		if patch.Nums != nil {
			s.Nums = *patch.Nums
		}
		if patch.Type != nil {
			s.Type = *patch.Type
		}
		if patch.PublishedAt != nil {
			s.PublishedAt = *patch.PublishedAt
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE series SET name = ?, description = ?, cover = ?, status = ?, nums = ?, type = ?, published_at = ?
			WHERE id = ?`,
			s.Name, s.Description, s.Cover, s.Status, s.Nums, s.Type, s.PublishedAt, id); err != nil {
			return classify(err, "series", "update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes series id and its article memberships. The articles
// themselves are kept.
func (r *SeriesRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "series", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM series_article WHERE series_id = ?", id); err != nil {
			return classify(err, "series", "delete")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM series WHERE id = ?", id); err != nil {
			return classify(err, "series", "delete")
		}
		return nil
	})
}

// AddArticle appends article articleID to series id. Adding an article that
// is already a member is a no-op.
func (r *SeriesRepo) AddArticle(ctx context.Context, id, articleID uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "series", id); err != nil {
			return err
		}
		if err := mustReference(ctx, tx, "article", articleID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO series_article (series_id, article_id) VALUES (?, ?)", id, articleID); err != nil {
			return classify(err, "series", "update")
		}
		return nil
	})
}

// RemoveArticle drops article articleID from series id. NotFound is returned
// when the article is not a member.
func (r *SeriesRepo) RemoveArticle(ctx context.Context, id, articleID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM series_article WHERE series_id = ? AND article_id = ?", id, articleID)
	if err != nil {
		return classify(err, "series", "update")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("series article")
	}
	return nil
}
