package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/model"
)

// viewSelect is the read model: one row per article with its author, its
// category and its tag names joined by model.TagSeparator. Author and
// category come from LEFT JOINs so a dangling reference yields NULLs rather
// than a missing article.
const viewSelect = `SELECT a.id, a.title, a.slug, a.cover, a.content, a.summary, a.source, a.source_url,
       a.topping, a.status, a.created_at, a.updated_at,
       u.id, u.username, c.id, c.name,
       GROUP_CONCAT(DISTINCT t.name ORDER BY t.name SEPARATOR ' ')
FROM article a
LEFT JOIN user u ON a.user_id = u.id
LEFT JOIN category c ON a.category_id = c.id
LEFT JOIN article_tag at ON at.article_id = a.id
LEFT JOIN tag t ON at.tag_id = t.id`

// viewFilter narrows the read model. At most one of the fields is set.
type viewFilter struct {
	articleID  uint64
	categoryID uint64
	tagID      uint64
	seriesID   uint64
}

// buildViewQuery renders the read-model statement for f. When paged is
// false no ORDER BY or LIMIT is added.
func buildViewQuery(f viewFilter, p Pagination, paged bool) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString(viewSelect)
	if f.seriesID != 0 {
		b.WriteString("\nLEFT JOIN series_article sa ON sa.article_id = a.id")
	}
	if f.categoryID != 0 {
		b.WriteString("\nWHERE a.category_id = ?")
		args = append(args, f.categoryID)
	}
	b.WriteString("\nGROUP BY a.id")
	switch {
	case f.articleID != 0:
		b.WriteString("\nHAVING a.id = ?")
		args = append(args, f.articleID)
	case f.tagID != 0:
		b.WriteString("\nHAVING SUM(at.tag_id = ?) > 0")
		args = append(args, f.tagID)
	case f.seriesID != 0:
		b.WriteString("\nHAVING SUM(sa.series_id = ?) > 0")
		args = append(args, f.seriesID)
	}
	if paged {
		b.WriteString("\nORDER BY " + p.OrderClause("a"))
		b.WriteString("\nLIMIT ? OFFSET ?")
		args = append(args, p.Limit(), p.Offset())
	}
	return b.String(), args
}

func scanView(row rowScanner) (*model.ArticleView, error) {
	var v model.ArticleView
	err := row.Scan(&v.ID, &v.Title, &v.Slug, &v.Cover, &v.Content, &v.Summary, &v.Source, &v.SourceURL,
		&v.Topping, &v.Status, &v.CreatedAt, &v.UpdatedAt,
		&v.AuthorID, &v.AuthorName, &v.CategoryID, &v.CategoryName, &v.TagNames)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetView returns the read-model row of article id.
func (r *ArticleRepo) GetView(ctx context.Context, id uint64) (*model.ArticleView, error) {
	q, args := buildViewQuery(viewFilter{articleID: id}, Pagination{}, false)
	v, err := scanView(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return nil, classify(err, "article", "get")
	}
	return v, nil
}

func (r *ArticleRepo) ListViews(ctx context.Context, p Pagination) ([]*model.ArticleView, error) {
	return r.listViews(ctx, viewFilter{}, p)
}

// ListViewsByCategory lists the articles of category id. An unknown category
// yields NotFound rather than an empty page.
func (r *ArticleRepo) ListViewsByCategory(ctx context.Context, id uint64, p Pagination) ([]*model.ArticleView, error) {
	if err := mustExistRead(ctx, r, "category", id); err != nil {
		return nil, err
	}
	return r.listViews(ctx, viewFilter{categoryID: id}, p)
}

func (r *ArticleRepo) ListViewsByTag(ctx context.Context, id uint64, p Pagination) ([]*model.ArticleView, error) {
	if err := mustExistRead(ctx, r, "tag", id); err != nil {
		return nil, err
	}
	return r.listViews(ctx, viewFilter{tagID: id}, p)
}

func (r *ArticleRepo) ListViewsBySeries(ctx context.Context, id uint64, p Pagination) ([]*model.ArticleView, error) {
	if err := mustExistRead(ctx, r, "series", id); err != nil {
		return nil, err
	}
	return r.listViews(ctx, viewFilter{seriesID: id}, p)
}

func (r *ArticleRepo) listViews(ctx context.Context, f viewFilter, p Pagination) ([]*model.ArticleView, error) {
	q, args := buildViewQuery(f, p, true)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err, "article", "list")
	}
	defer rows.Close()

	out := []*model.ArticleView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, classify(err, "article", "list")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "article", "list")
	}
	return out, nil
}

func mustExistRead(ctx context.Context, r *ArticleRepo, table string, id uint64) error {
	ok, err := exists(ctx, r.db, "SELECT 1 FROM "+table+" WHERE id = ? LIMIT 1", table, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(table)
	}
	return nil
}
