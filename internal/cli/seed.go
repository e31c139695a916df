package cli

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"strings"

	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/spf13/cobra"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/auth"
	"github.com/iliyamo/letters/internal/database"
	"github.com/iliyamo/letters/internal/logging"
	"github.com/iliyamo/letters/internal/model"
	"github.com/iliyamo/letters/internal/repository"
	"github.com/iliyamo/letters/internal/utils"
)

const (
	defaultAdminEmail    = "test@123.com"
	defaultAdminPassword = "Pa$$wd123"
	adminUsername        = "admin"
)

type userSeeder interface {
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CheckNameExists(ctx context.Context, username string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type passwordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
}

// ensureUser returns the user with email, creating it when it does not exist
// yet. created reports whether a row was inserted. A username held by a
// different email is AlreadyExists and nothing is hashed.
func ensureUser(ctx context.Context, users userSeeder, hasher passwordHasher, username, email, password string) (u *model.User, created bool, err error) {
	email = repository.NormalizeEmail(email)
	registered, err := users.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if registered {
		u, err = users.GetByEmail(ctx, email)
		if err != nil {
			return nil, false, err
		}
		return u, false, nil
	}

	taken, err := users.CheckNameExists(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if taken {
		return nil, false, apperr.AlreadyExists("user")
	}

	hash, err := hasher.Hash(ctx, password)
	if err != nil {
		return nil, false, err
	}
	u = &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Avatar:       sql.NullString{String: utils.AvatarURL(email, utils.DefaultAvatarSize), Valid: true},
	}
	if err := users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func newCreateAdminCommand(load configLoader) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the admin user unless its email is already registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database.URL, cfg.Database.MaxConnections)
			if err != nil {
				return err
			}
			defer db.Close()

			u, created, err := ensureUser(context.Background(), repository.NewUserRepo(db), auth.NewHasher(1),
				adminUsername, email, password)
			if err != nil {
				return err
			}
			if !created {
				logging.Info().Str("email", u.Email).Msg("admin already exists, skipping")
				return nil
			}
			logging.Info().Uint64("id", u.ID).Str("email", u.Email).Msg("created admin user")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", defaultAdminEmail, "admin email")
	cmd.Flags().StringVar(&password, "password", defaultAdminPassword, "admin password")
	return cmd
}

type namedSeeder[T any] interface {
	CheckNameExists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, v T) error
}

type articleSeeder interface {
	Create(ctx context.Context, a *model.Article, tags []string, seriesID *uint64) error
}

type categoryLister interface {
	List(ctx context.Context, p repository.Pagination) ([]*model.Category, error)
}

type fakeCounts struct {
	Users, Tags, Categories, Articles int
}

type fakeSeeder struct {
	Users      userSeeder
	Hasher     passwordHasher
	Tags       namedSeeder[*model.Tag]
	Categories interface {
		namedSeeder[*model.Category]
		categoryLister
	}
	Articles articleSeeder
	Rand     *rand.Rand
}

// seed creates one writer, 30 tags, 10 categories and 30 articles. Names
// that already exist are skipped, so running it twice is safe.
func (s fakeSeeder) seed(ctx context.Context) (fakeCounts, error) {
	var counts fakeCounts

	writer, created, err := ensureUser(ctx, s.Users, s.Hasher, "writer", "writer@letters.local", defaultAdminPassword)
	if err != nil {
		return counts, err
	}
	if created {
		counts.Users++
	}

	var tagNames []string
	for range 30 {
		name := strings.ToLower(lorem.Word(4, 10))
		tagNames = append(tagNames, name)
		ok, err := createNamed[*model.Tag](ctx, s.Tags, name, &model.Tag{
			Name: name, Type: model.TagTypeCustom, Status: model.StatusPublished,
		})
		if err != nil {
			return counts, err
		}
		if ok {
			counts.Tags++
		}
	}

	for range 10 {
		name := capitalize(lorem.Word(5, 12))
		ok, err := createNamed[*model.Category](ctx, s.Categories, name, &model.Category{
			Name:        name,
			Description: sql.NullString{String: lorem.Sentence(4, 10), Valid: true},
			Status:      model.StatusPublished,
		})
		if err != nil {
			return counts, err
		}
		if ok {
			counts.Categories++
		}
	}
	categories, err := s.Categories.List(ctx, repository.Pagination{Page: 1, PerPage: 100})
	if err != nil {
		return counts, err
	}
	if len(categories) == 0 {
		return counts, fmt.Errorf("no categories to attach articles to")
	}

	for range 30 {
		paragraphs := make([]string, 2+s.Rand.IntN(4))
		for i := range paragraphs {
			paragraphs[i] = lorem.Paragraph(3, 6)
		}
		content := "# " + lorem.Sentence(2, 5) + "\n\n" + strings.Join(paragraphs, "\n\n")
		title := strings.TrimSuffix(lorem.Sentence(3, 8), ".")

		tags := make([]string, 1+s.Rand.IntN(3))
		for i := range tags {
			tags[i] = tagNames[s.Rand.IntN(len(tagNames))]
		}
		a := &model.Article{
			Title:      title,
			Slug:       title,
			Content:    content,
			Summary:    utils.Summarize(content),
			Status:     model.StatusPublished,
			CategoryID: categories[s.Rand.IntN(len(categories))].ID,
			UserID:     writer.ID,
		}
		if err := s.Articles.Create(ctx, a, tags, nil); err != nil {
			return counts, err
		}
		counts.Articles++
	}
	return counts, nil
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

// createNamed inserts v unless name is taken. It reports whether a row was
// written.
func createNamed[T any](ctx context.Context, store namedSeeder[T], name string, v T) (bool, error) {
	taken, err := store.CheckNameExists(ctx, name)
	if err != nil || taken {
		return false, err
	}
	if err := store.Create(ctx, v); err != nil {
		if apperr.Is(err, apperr.KindAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func newFakeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "fake",
		Short: "Fill the database with placeholder content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.Database.URL, cfg.Database.MaxConnections)
			if err != nil {
				return err
			}
			defer db.Close()

			counts, err := fakeSeeder{
				Users:      repository.NewUserRepo(db),
				Hasher:     auth.NewHasher(1),
				Tags:       repository.NewTagRepo(db),
				Categories: repository.NewCategoryRepo(db),
				Articles:   repository.NewArticleRepo(db),
				Rand:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
			}.seed(context.Background())
			if err != nil {
				return err
			}
			logging.Info().
				Int("users", counts.Users).
				Int("tags", counts.Tags).
				Int("categories", counts.Categories).
				Int("articles", counts.Articles).
				Msg("fake content created")
			return nil
		},
	}
}
