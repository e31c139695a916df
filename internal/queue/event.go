// Package queue defines the article lifecycle events exchanged over RabbitMQ
// and the consumer that reads them back.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	ArticleCreated = "article.created"
	ArticleUpdated = "article.updated"
	ArticleDeleted = "article.deleted"
)

// ArticleEvent is published after an article write has been committed. It
// carries identifiers only; consumers that need the article read it back.
type ArticleEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ArticleID  uint64    `json:"article_id"`
	UserID     uint64    `json:"user_id"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewArticleEvent stamps an event with a fresh id and the current time.
func NewArticleEvent(typ string, articleID, userID uint64, title string) ArticleEvent {
	return ArticleEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		ArticleID:  articleID,
		UserID:     userID,
		Title:      title,
		OccurredAt: time.Now().UTC(),
	}
}
