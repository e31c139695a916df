package handler_test

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/model"
	"github.com/iliyamo/letters/internal/queue"
	"github.com/iliyamo/letters/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL store. Every write advances
// the clock by one second so rows get distinct timestamps.
type memDB struct {
	mu          sync.Mutex
	now         time.Time
	ids         map[string]uint64
	users       map[uint64]*model.User
	categories  map[uint64]*model.Category
	tags        map[uint64]*model.Tag
	articles    map[uint64]*model.Article
	articleTags map[uint64][]string
}

func newMemDB() *memDB {
	return &memDB{
		now:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ids:         map[string]uint64{},
		users:       map[uint64]*model.User{},
		categories:  map[uint64]*model.Category{},
		tags:        map[uint64]*model.Tag{},
		articles:    map[uint64]*model.Article{},
		articleTags: map[uint64][]string{},
	}
}

func (db *memDB) tick() time.Time {
	db.now = db.now.Add(time.Second)
	return db.now
}

func (db *memDB) nextID(table string) uint64 {
	db.ids[table]++
	return db.ids[table]
}

func (db *memDB) addUser(username, email, hash string) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	ts := db.tick()
	u := &model.User{ID: db.nextID("user"), Username: username, Email: email, PasswordHash: hash, CreatedAt: ts, UpdatedAt: ts}
	db.users[u.ID] = u
	return u
}

func (db *memDB) addCategory(name string) *model.Category {
	db.mu.Lock()
	defer db.mu.Unlock()
	ts := db.tick()
	c := &model.Category{ID: db.nextID("category"), Name: name, Status: model.StatusPublished, CreatedAt: ts, UpdatedAt: ts}
	db.categories[c.ID] = c
	return c
}

func page[T any](items []T, p repository.Pagination) []T {
	off := min(p.Offset(), len(items))
	end := min(off+p.Limit(), len(items))
	return slices.Clone(items[off:end])
}

type fakeUsers struct{ *memDB }

func (f fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f fakeUsers) Update(_ context.Context, id uint64, patch model.UserPatch) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Bio != nil {
		u.Bio = sql.NullString{String: *patch.Bio, Valid: true}
	}
	if patch.Avatar != nil {
		u.Avatar = sql.NullString{String: *patch.Avatar, Valid: true}
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user")
	}
	u.PasswordHash = hash
	return nil
}

type fakeTags struct{ *memDB }

func (f fakeTags) Create(_ context.Context, t *model.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tags {
		if existing.Name == t.Name {
			return apperr.AlreadyExists("tag")
		}
	}
	t.ID = f.nextID("tag")
	t.CreatedAt = f.tick()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	f.tags[t.ID] = &cp
	return nil
}

func (f fakeTags) GetByID(_ context.Context, id uint64) (*model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[id]
	if !ok {
		return nil, apperr.NotFound("tag")
	}
	cp := *t
	return &cp, nil
}

func (f fakeTags) List(_ context.Context, p repository.Pagination) ([]*model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Tag, 0, len(f.tags))
	for _, t := range f.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, p), nil
}

func (f fakeTags) Update(_ context.Context, id uint64, patch model.TagPatch) (*model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[id]
	if !ok {
		return nil, apperr.NotFound("tag")
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	cp := *t
	return &cp, nil
}

func (f fakeTags) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tags[id]; !ok {
		return apperr.NotFound("tag")
	}
	delete(f.tags, id)
	return nil
}

type fakeArticles struct{ *memDB }

func (f fakeArticles) Create(_ context.Context, a *model.Article, tags []string, seriesID *uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[a.CategoryID]; !ok {
		return apperr.InvalidInput("category %d does not exist", a.CategoryID)
	}
	if seriesID != nil {
		return apperr.InvalidInput("series %d does not exist", *seriesID)
	}
	a.ID = f.nextID("article")
	a.CreatedAt = f.tick()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	f.articles[a.ID] = &cp
	f.articleTags[a.ID] = f.attach(tags)
	return nil
}

func (f fakeArticles) attach(names []string) []string {
	out := []string{}
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func (f fakeArticles) Update(_ context.Context, id uint64, patch model.ArticlePatch) (*model.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return nil, apperr.NotFound("article")
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Summary != nil {
		a.Summary = *patch.Summary
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Topping != nil {
		a.Topping = *patch.Topping
	}
	if patch.CategoryID != nil {
		if _, ok := f.categories[*patch.CategoryID]; !ok {
			return nil, apperr.InvalidInput("category %d does not exist", *patch.CategoryID)
		}
		a.CategoryID = *patch.CategoryID
	}
	if patch.Tags != nil {
		f.articleTags[id] = f.attach(patch.Tags)
	}
	cp := *a
	return &cp, nil
}

func (f fakeArticles) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.articles[id]; !ok {
		return apperr.NotFound("article")
	}
	delete(f.articles, id)
	delete(f.articleTags, id)
	return nil
}

func (f fakeArticles) view(a *model.Article) *model.ArticleView {
	v := &model.ArticleView{
		ID: a.ID, Title: a.Title, Slug: a.Slug, Cover: a.Cover, Content: a.Content, Summary: a.Summary,
		Source: a.Source, SourceURL: a.SourceURL, Topping: a.Topping, Status: a.Status,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
	if u, ok := f.users[a.UserID]; ok {
		v.AuthorID = sql.NullInt64{Int64: int64(u.ID), Valid: true}
		v.AuthorName = sql.NullString{String: u.Username, Valid: true}
	}
	if c, ok := f.categories[a.CategoryID]; ok {
		v.CategoryID = sql.NullInt64{Int64: int64(c.ID), Valid: true}
		v.CategoryName = sql.NullString{String: c.Name, Valid: true}
	}
	if names := slices.Sorted(slices.Values(f.articleTags[a.ID])); len(names) > 0 {
		v.TagNames = sql.NullString{String: strings.Join(names, model.TagSeparator), Valid: true}
	}
	return v
}

func (f fakeArticles) GetView(_ context.Context, id uint64) (*model.ArticleView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return nil, apperr.NotFound("article")
	}
	return f.view(a), nil
}

func (f fakeArticles) list(p repository.Pagination, keep func(*model.Article) bool) []*model.ArticleView {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []*model.Article
	for _, a := range f.articles {
		if keep(a) {
			rows = append(rows, a)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			if p.Direction == repository.Desc {
				return rows[i].CreatedAt.After(rows[j].CreatedAt)
			}
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
	out := []*model.ArticleView{}
	for _, a := range page(rows, p) {
		out = append(out, f.view(a))
	}
	return out
}

func (f fakeArticles) ListViews(_ context.Context, p repository.Pagination) ([]*model.ArticleView, error) {
	return f.list(p, func(*model.Article) bool { return true }), nil
}

func (f fakeArticles) ListViewsByCategory(_ context.Context, id uint64, p repository.Pagination) ([]*model.ArticleView, error) {
	return f.list(p, func(a *model.Article) bool { return a.CategoryID == id }), nil
}

func (f fakeArticles) ListViewsByTag(_ context.Context, id uint64, p repository.Pagination) ([]*model.ArticleView, error) {
	f.mu.Lock()
	t, ok := f.tags[id]
	f.mu.Unlock()
	if !ok {
		return nil, apperr.NotFound("tag")
	}
	return f.list(p, func(a *model.Article) bool { return slices.Contains(f.articleTags[a.ID], t.Name) }), nil
}

func (f fakeArticles) ListViewsBySeries(context.Context, uint64, repository.Pagination) ([]*model.ArticleView, error) {
	return nil, apperr.NotFound("series")
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ArticleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev.Type)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}
