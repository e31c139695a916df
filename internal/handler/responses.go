package handler

import (
	"database/sql"
	"time"

	"github.com/iliyamo/letters/internal/model"
)

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

type userResponse struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Bio:       nullable(u.Bio),
		Avatar:    nullable(u.Avatar),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type categoryResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Status      uint8     `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: nullable(c.Description),
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type tagResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Type        uint8     `json:"type"`
	Status      uint8     `json:"status"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTagResponse(t *model.Tag) tagResponse {
	return tagResponse{
		ID:          t.ID,
		Name:        t.Name,
		Type:        t.Type,
		Status:      t.Status,
		Description: nullable(t.Description),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type seriesResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Cover       string    `json:"cover"`
	Status      uint8     `json:"status"`
	Nums        uint32    `json:"nums"`
	Type        uint8     `json:"type"`
	PublishedAt time.Time `json:"published_at"`
	UserID      uint64    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newSeriesResponse(s *model.Series) seriesResponse {
	return seriesResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: nullable(s.Description),
		Cover:       s.Cover,
		Status:      s.Status,
		Nums:        s.Nums,
		Type:        s.Type,
		PublishedAt: s.PublishedAt,
		UserID:      s.UserID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type categoryRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type authorRef struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// articlePreview is the list form of an article: everything but the body.
type articlePreview struct {
	ID        uint64       `json:"id"`
	Title     string       `json:"title"`
	Slug      string       `json:"slug"`
	Cover     string       `json:"cover"`
	Summary   string       `json:"summary"`
	Source    uint8        `json:"source"`
	SourceURL *string      `json:"source_url"`
	Topping   uint8        `json:"topping"`
	Status    uint8        `json:"status"`
	Category  *categoryRef `json:"category"`
	Author    *authorRef   `json:"author"`
	Tags      []string     `json:"tags"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type articleDetail struct {
	articlePreview
	Content string `json:"content"`
}

func newArticlePreview(v *model.ArticleView) articlePreview {
	p := articlePreview{
		ID:        v.ID,
		Title:     v.Title,
		Slug:      v.Slug,
		Cover:     v.Cover,
		Summary:   v.Summary,
		Source:    v.Source,
		SourceURL: nullable(v.SourceURL),
		Topping:   v.Topping,
		Status:    v.Status,
		Tags:      v.Tags(),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
	if v.CategoryID.Valid {
		p.Category = &categoryRef{ID: uint64(v.CategoryID.Int64), Name: v.CategoryName.String}
	}
	if v.AuthorID.Valid {
		p.Author = &authorRef{ID: uint64(v.AuthorID.Int64), Username: v.AuthorName.String}
	}
	return p
}

func newArticleDetail(v *model.ArticleView) articleDetail {
	return articleDetail{articlePreview: newArticlePreview(v), Content: v.Content}
}

func newArticlePreviews(views []*model.ArticleView) []articlePreview {
	return mapSlice(views, newArticlePreview)
}

// mapSlice converts each element with fn; the result is never nil so lists
// encode as [] rather than null.
func mapSlice[T any, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
