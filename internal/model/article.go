package model

import (
	"database/sql"
	"strings"
	"time"
)

// Article sources.
const (
	SourceOriginal  uint8 = 0
	SourceTransport uint8 = 1
	SourceTranslate uint8 = 2
)

// Article mirrors a row of the `article` table. Reads for clients go through
// ArticleView instead; this struct is used on write paths.
type Article struct {
	ID           uint64
	Title        string
	Slug         string
	Cover        string
	Content      string
	Summary      string
	PasswordHash sql.NullString // per-article access password, argon2id envelope
	Source       uint8
	SourceURL    sql.NullString
	Topping      uint8
	Status       uint8
	CategoryID   uint64
	UserID       uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ArticlePatch is a partial update. Tags, when non-nil, replaces the whole
// tag set of the article; a nil Tags keeps the current associations.
type ArticlePatch struct {
	Title        *string
	Slug         *string
	Cover        *string
	Content      *string
	Summary      *string
	PasswordHash *string
	Source       *uint8
	SourceURL    *string
	Topping      *uint8
	Status       *uint8
	CategoryID   *uint64
	Tags         []string
}

func (p ArticlePatch) Empty() bool {
	return p.Title == nil && p.Slug == nil && p.Cover == nil && p.Content == nil &&
		p.Summary == nil && p.PasswordHash == nil && p.Source == nil && p.SourceURL == nil &&
		p.Topping == nil && p.Status == nil && p.CategoryID == nil && p.Tags == nil
}

// ArticleView is one row of the denormalised read model: the article joined
// with its author, its category and its space-joined tag names. Author and
// category columns come from LEFT JOINs and may be NULL.
type ArticleView struct {
	ID           uint64
	Title        string
	Slug         string
	Cover        string
	Content      string
	Summary      string
	Source       uint8
	SourceURL    sql.NullString
	Topping      uint8
	Status       uint8
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AuthorID     sql.NullInt64
	AuthorName   sql.NullString
	CategoryID   sql.NullInt64
	CategoryName sql.NullString
	TagNames     sql.NullString
}

// TagSeparator joins tag names inside ArticleView.TagNames.
const TagSeparator = " "

// Tags splits TagNames on TagSeparator. A NULL or empty column yields an
// empty, non-nil slice.
func (v ArticleView) Tags() []string {
	if !v.TagNames.Valid || v.TagNames.String == "" {
		return []string{}
	}
	return strings.Split(v.TagNames.String, TagSeparator)
}
