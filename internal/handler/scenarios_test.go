package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/letters/internal/auth"
	"github.com/iliyamo/letters/internal/handler"
	"github.com/iliyamo/letters/internal/model"
	"github.com/iliyamo/letters/internal/queue"
	"github.com/iliyamo/letters/internal/router"
)

type envelope struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type articleBody struct {
	ID       uint64   `json:"id"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary"`
	Slug     string   `json:"slug"`
	Status   uint8    `json:"status"`
	Tags     []string `json:"tags"`
	Category *struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
	Author *struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
	} `json:"author"`
}

type testServer struct {
	e      *echo.Echo
	db     *memDB
	hasher *auth.Hasher
	tokens *auth.TokenService
	events *recordingPublisher
}

func newTestServer(t *testing.T, tokens *auth.TokenService) *testServer {
	t.Helper()
	db := newMemDB()
	hasher := auth.NewHasher(1)
	events := &recordingPublisher{}
	articles := fakeArticles{db}
	e := router.New(router.Deps{
		Handlers: router.Handlers{
			Auth:     handler.NewAuthHandler(fakeUsers{db}, hasher, tokens),
			Users:    handler.NewUserHandler(fakeUsers{db}, hasher),
			Tags:     handler.NewTagHandler(fakeTags{db}, articles),
			Articles: handler.NewArticleHandler(articles, hasher, events),
		},
		Tokens: tokens,
	})
	return &testServer{e: e, db: db, hasher: hasher, tokens: tokens, events: events}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// login seeds a user and returns an access token for it.
func (s *testServer) login(t *testing.T) (*model.User, string) {
	t.Helper()
	u := s.db.addUser("writer", "writer@x.io", "unused")
	tok, err := s.tokens.Issue(u.ID)
	require.NoError(t, err)
	return u, tok.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLoginAfterSeedingUser(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	creds := map[string]string{"email": "u@x.io", "password": "hunter2!"}

	rec := s.do(t, http.MethodPost, "/api/v1/authorize", "", creds)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidCredentials", decode[envelope](t, rec).Error)

	hash, err := s.hasher.Hash(context.Background(), "hunter2!")
	require.NoError(t, err)
	u := s.db.addUser("u", "u@x.io", hash)

	for _, path := range []string{"/api/v1/authorize", "/api/v1/login"} {
		rec = s.do(t, http.MethodPost, path, "", creds)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		tok := decode[auth.Token](t, rec)
		assert.Equal(t, "Bearer", tok.TokenType)
		assert.Equal(t, uint64(3600), tok.ExpiresIn)

		claims, err := s.tokens.Validate(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.Sub)
		assert.Equal(t, uint64(3600), claims.Exp-claims.Iat)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/authorize", "", map[string]string{"email": "u@x.io", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", decode[envelope](t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/v1/authorize", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTagNameIsUnique(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	_, token := s.login(t)
	body := map[string]any{"name": "rust", "type": 1, "status": 0}

	rec := s.do(t, http.MethodPost, "/api/v1/tags", token, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/tags", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decode[envelope](t, rec)
	assert.Equal(t, "AlreadyExists", env.Error)
	assert.Equal(t, "already_exists", env.Code)
	assert.Equal(t, "tag already exists", env.Message)
}

func TestTagWritesNeedToken(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	rec := s.do(t, http.MethodPost, "/api/v1/tags", "", map[string]any{"name": "go"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidToken", decode[envelope](t, rec).Error)

	rec = s.do(t, http.MethodGet, "/api/v1/tags", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestArticleWithTags(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	u, token := s.login(t)
	cat := s.db.addCategory("general")

	rec := s.do(t, http.MethodPost, "/api/v1/articles", token, map[string]any{
		"title":       "Async Rust",
		"content":     "# Futures\n\nPolling **all** the way down.",
		"category_id": cat.ID,
		"tags":        []string{"rust", "async", "rust"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[articleBody](t, rec)
	assert.Equal(t, "Async Rust", created.Slug)
	assert.Equal(t, "Futures Polling all the way down.", created.Summary)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/articles/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[articleBody](t, rec)
	assert.ElementsMatch(t, []string{"rust", "async"}, got.Tags)
	require.NotNil(t, got.Category)
	assert.Equal(t, "general", got.Category.Name)
	require.NotNil(t, got.Author)
	assert.Equal(t, u.Username, got.Author.Username)

	assert.Equal(t, []string{queue.ArticleCreated}, s.events.types())
}

func TestArticleValidation(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	_, token := s.login(t)
	cat := s.db.addCategory("general")

	tests := map[string]map[string]any{
		"missing content":  {"title": "t", "category_id": cat.ID},
		"bad status":       {"title": "t", "content": "c", "category_id": cat.ID, "status": 2},
		"bad source":       {"title": "t", "content": "c", "category_id": cat.ID, "source": 3},
		"bad source url":   {"title": "t", "content": "c", "category_id": cat.ID, "source_url": "not a url"},
		"spaced tag":       {"title": "t", "content": "c", "category_id": cat.ID, "tags": []string{"two words"}},
		"blank title":      {"title": "  ", "content": "c", "category_id": cat.ID},
		"unknown category": {"title": "t", "content": "c", "category_id": 99},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/articles", token, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "InvalidInput", decode[envelope](t, rec).Error)
		})
	}
	assert.Empty(t, s.events.types())
}

func TestArticlePagination(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	_, token := s.login(t)
	cat := s.db.addCategory("general")

	for i := 1; i <= 12; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/articles", token, map[string]any{
			"title": fmt.Sprintf("post-%d", i), "content": "body", "category_id": cat.ID,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/v1/articles?page=2&per_page=5&order_direction=Asc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var titles []string
	for _, a := range decode[[]articleBody](t, rec) {
		titles = append(titles, a.Title)
		assert.Empty(t, a.Content, "previews carry no content")
	}
	assert.Equal(t, []string{"post-6", "post-7", "post-8", "post-9", "post-10"}, titles)

	rec = s.do(t, http.MethodGet, "/api/v1/articles?page=1&per_page=2&order_direction=Desc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]articleBody](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "post-12", got[0].Title)

	rec = s.do(t, http.MethodGet, "/api/v1/articles?page=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	issuedAt := time.Unix(1_700_000_000, 0)
	tokens := auth.NewTokenService("test-secret", 1).WithClock(func() time.Time { return issuedAt })

	s := newTestServer(t, tokens)
	u, token := s.login(t)
	rec := s.do(t, http.MethodGet, "/api/v1/users/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), u.Email)

	later := newTestServer(t, tokens.WithClock(func() time.Time { return issuedAt.Add(2 * time.Second) }))
	rec = later.do(t, http.MethodGet, "/api/v1/users/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidToken", decode[envelope](t, rec).Error)
}

func TestArticlePatchKeepsUnsetFields(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	_, token := s.login(t)
	cat := s.db.addCategory("general")

	rec := s.do(t, http.MethodPost, "/api/v1/articles", token, map[string]any{
		"title": "Patch me", "content": "original body", "category_id": cat.ID, "tags": []string{"go", "sql"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	before := decode[articleBody](t, rec)
	path := fmt.Sprintf("/api/v1/articles/%d", before.ID)

	rec = s.do(t, http.MethodPut, path, token, map[string]any{"status": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, path, "", nil)
	after := decode[articleBody](t, rec)
	assert.Equal(t, uint8(1), after.Status)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Content, after.Content)
	assert.Equal(t, before.Category.ID, after.Category.ID)
	assert.ElementsMatch(t, before.Tags, after.Tags)

	rec = s.do(t, http.MethodPut, path, token, map[string]any{"tags": []string{}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[articleBody](t, rec).Tags)

	rec = s.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{queue.ArticleCreated, queue.ArticleUpdated, queue.ArticleUpdated, queue.ArticleDeleted}, s.events.types())
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	hash, err := s.hasher.Hash(context.Background(), "old-secret")
	require.NoError(t, err)
	u := s.db.addUser("pw", "pw@x.io", hash)
	tok, err := s.tokens.Issue(u.ID)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPut, "/api/v1/users/password", tok.AccessToken,
		map[string]string{"old_password": "nope", "new_password": "new-secret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/users/password", tok.AccessToken,
		map[string]string{"old_password": "old-secret", "new_password": "new-secret"})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/authorize", "", map[string]string{"email": "pw@x.io", "password": "new-secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	s := newTestServer(t, auth.NewTokenService("test-secret", 3600))
	rec := s.do(t, http.MethodGet, "/api/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, envelope{Code: "not_found", Error: "NotFound", Message: "resource not found"}, decode[envelope](t, rec))

	rec = s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
