package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/model"
)

const articleColumns = "id, title, slug, cover, content, summary, password_hash, source, source_url, topping, status, category_id, user_id, created_at, updated_at"

type ArticleRepo struct{ db *sql.DB }

func NewArticleRepo(db *sql.DB) *ArticleRepo { return &ArticleRepo{db: db} }

func scanArticle(row rowScanner) (*model.Article, error) {
	var a model.Article
	if err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Cover, &a.Content, &a.Summary, &a.PasswordHash,
		&a.Source, &a.SourceURL, &a.Topping, &a.Status, &a.CategoryID, &a.UserID,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a, associates it with the named tags and, when seriesID is
// set, appends it to that series. Tags that do not exist yet are created as
// custom tags. The category and series must exist.
func (r *ArticleRepo) Create(ctx context.Context, a *model.Article, tags []string, seriesID *uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := mustReference(ctx, tx, "category", a.CategoryID); err != nil {
			return err
		}
		if seriesID != nil {
			if err := mustReference(ctx, tx, "series", *seriesID); err != nil {
				return err
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO article (title, slug, cover, content, summary, password_hash, source, source_url, topping, status, category_id, user_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Title, a.Slug, a.Cover, a.Content, a.Summary, a.PasswordHash, a.Source, a.SourceURL,
			a.Topping, a.Status, a.CategoryID, a.UserID)
		if err != nil {
			return classify(err, "article", "create")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return classify(err, "article", "create")
		}
		a.ID = uint64(id)

		if err := attachTags(ctx, tx, a.ID, tags); err != nil {
			return err
		}
		if seriesID != nil {
			if _, err := tx.ExecContext(ctx,
				"INSERT IGNORE INTO series_article (series_id, article_id) VALUES (?, ?)", *seriesID, a.ID); err != nil {
				return classify(err, "series", "update")
			}
		}

		const qSelect = "SELECT created_at, updated_at FROM article WHERE id = ?"
		if err := tx.QueryRowContext(ctx, qSelect, a.ID).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
			return classify(err, "article", "load")
		}
		return nil
	})
}

// Update applies patch to article id in one transaction. A non-nil
// patch.Tags replaces the whole tag set.
func (r *ArticleRepo) Update(ctx context.Context, id uint64, patch model.ArticlePatch) (*model.Article, error) {
	var out *model.Article
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		a, err := scanArticle(tx.QueryRowContext(ctx,
			"SELECT "+articleColumns+" FROM article WHERE id = ? FOR UPDATE", id))
		if err != nil {
			return classify(err, "article", "get")
		}
		out = a
		if patch.Empty() {
			return nil
		}

		if patch.CategoryID != nil && *patch.CategoryID != a.CategoryID {
			if err := mustReference(ctx, tx, "category", *patch.CategoryID); err != nil {
				return err
			}
			a.CategoryID = *patch.CategoryID
		}
		if patch.Title != nil {
			a.Title = *patch.Title
		}
		if patch.Slug != nil {
			a.Slug = *patch.Slug
		}
		if patch.Cover != nil {
			a.Cover = *patch.Cover
		}
		if patch.Content != nil {
			a.Content = *patch.Content
		}
		if patch.Summary != nil {
			a.Summary = *patch.Summary
		}
		if patch.PasswordHash != nil {
			a.PasswordHash = nullString(patch.PasswordHash)
		}
		if patch.Source != nil {
			a.Source = *patch.Source
		}
		if patch.SourceURL != nil {
			a.SourceURL = nullString(patch.SourceURL)
		}
		if patch.Topping != nil {
			a.Topping = *patch.Topping
		}
		if patch.Status != nil {
			a.Status = *patch.Status
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE article SET title = ?, slug = ?, cover = ?, content = ?, summary = ?, password_hash = ?,
			       source = ?, source_url = ?, topping = ?, status = ?, category_id = ?
			WHERE id = ?`,
			a.Title, a.Slug, a.Cover, a.Content, a.Summary, a.PasswordHash,
			a.Source, a.SourceURL, a.Topping, a.Status, a.CategoryID, id); err != nil {
			return classify(err, "article", "update")
		}

		if patch.Tags != nil {
			if _, err := tx.ExecContext(ctx, "DELETE FROM article_tag WHERE article_id = ?", id); err != nil {
				return classify(err, "article", "update")
			}
			if err := attachTags(ctx, tx, id, patch.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes article id with its tag, series and comment rows.
func (r *ArticleRepo) Delete(ctx context.Context, id uint64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "article", id); err != nil {
			return err
		}
		for _, q := range []string{
			"DELETE FROM article_tag WHERE article_id = ?",
			"DELETE FROM series_article WHERE article_id = ?",
			"DELETE FROM comment WHERE article_id = ?",
			"DELETE FROM article WHERE id = ?",
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return classify(err, "article", "delete")
			}
		}
		return nil
	})
}

// mustExist returns NotFound unless table holds a row with the given id.
// table is always a package constant.
func mustExist(ctx context.Context, q queryer, table string, id uint64) error {
	ok, err := exists(ctx, q, "SELECT 1 FROM "+table+" WHERE id = ? LIMIT 1 FOR UPDATE", table, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(table)
	}
	return nil
}

// mustReference is mustExist for ids supplied in a request body: a missing
// row is the caller's mistake rather than an absent resource.
func mustReference(ctx context.Context, q queryer, table string, id uint64) error {
	err := mustExist(ctx, q, table, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.InvalidInput("%s %d does not exist", table, id)
	}
	return err
}

// uniqueTagNames trims names, drops empty ones and removes duplicates while
// keeping the first occurrence.
func uniqueTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// attachTags links article id to the named tags, creating missing tags as
// custom tags.
func attachTags(ctx context.Context, tx *sql.Tx, articleID uint64, names []string) error {
	names = uniqueTagNames(names)
	if len(names) == 0 {
		return nil
	}
	for _, n := range names {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO tag (name, type, status) VALUES (?, ?, ?)",
			n, model.TagTypeCustom, model.StatusPublished); err != nil {
			return classify(err, "tag", "create")
		}
	}
	tags, err := tagsByNames(ctx, tx, names)
	if err != nil {
		return err
	}
	for _, t := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO article_tag (article_id, tag_id) VALUES (?, ?)", articleID, t.ID); err != nil {
			return classify(err, "article", "update")
		}
	}
	return nil
}
