package handler

import (
	"context"

	"github.com/iliyamo/letters/internal/auth"
	"github.com/iliyamo/letters/internal/model"
	"github.com/iliyamo/letters/internal/queue"
	"github.com/iliyamo/letters/internal/repository"
)

// The interfaces below are the capabilities each handler needs. The
// repository types satisfy them; tests substitute in-memory fakes.

type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id uint64, patch model.UserPatch) (*model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id uint64) (*model.Category, error)
	List(ctx context.Context, p repository.Pagination) ([]*model.Category, error)
	Update(ctx context.Context, id uint64, patch model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id uint64) error
}

type TagStore interface {
	Create(ctx context.Context, t *model.Tag) error
	GetByID(ctx context.Context, id uint64) (*model.Tag, error)
	List(ctx context.Context, p repository.Pagination) ([]*model.Tag, error)
	Update(ctx context.Context, id uint64, patch model.TagPatch) (*model.Tag, error)
	Delete(ctx context.Context, id uint64) error
}

type SeriesStore interface {
	Create(ctx context.Context, s *model.Series) error
	GetByID(ctx context.Context, id uint64) (*model.Series, error)
	List(ctx context.Context, p repository.Pagination) ([]*model.Series, error)
	Update(ctx context.Context, id uint64, patch model.SeriesPatch) (*model.Series, error)
	Delete(ctx context.Context, id uint64) error
	AddArticle(ctx context.Context, id, articleID uint64) error
	RemoveArticle(ctx context.Context, id, articleID uint64) error
}

// ArticleReader is the article read model.
type ArticleReader interface {
	GetView(ctx context.Context, id uint64) (*model.ArticleView, error)
	ListViews(ctx context.Context, p repository.Pagination) ([]*model.ArticleView, error)
	ListViewsByCategory(ctx context.Context, id uint64, p repository.Pagination) ([]*model.ArticleView, error)
	ListViewsByTag(ctx context.Context, id uint64, p repository.Pagination) ([]*model.ArticleView, error)
	ListViewsBySeries(ctx context.Context, id uint64, p repository.Pagination) ([]*model.ArticleView, error)
}

type ArticleStore interface {
	ArticleReader
	Create(ctx context.Context, a *model.Article, tags []string, seriesID *uint64) error
	Update(ctx context.Context, id uint64, patch model.ArticlePatch) (*model.Article, error)
	Delete(ctx context.Context, id uint64) error
}

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encoded string) error
}

type TokenIssuer interface {
	Issue(sub uint64) (auth.Token, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ArticleEvent) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}
