package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/letters/internal/apperr"
	"github.com/iliyamo/letters/internal/auth"
	"github.com/iliyamo/letters/internal/config"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func serveGuarded(t *testing.T, tokens TokenValidator, header string) (echo.Context, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	called := false
	err := RequireAuth(tokens)(func(c echo.Context) error {
		called = true
		return nil
	})(c)
	return c, called, err
}

func TestRequireAuth(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tokens := auth.NewTokenService("secret", 3600).WithClock(func() time.Time { return now })
	tok, err := tokens.Issue(42)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		c, called, err := serveGuarded(t, tokens, "Bearer "+tok.AccessToken)
		require.NoError(t, err)
		assert.True(t, called)
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		assert.Equal(t, uint64(42), claims.Sub)
		assert.Equal(t, uint64(42), c.Get(ContextKeyUserID))
		assert.Equal(t, "42", userID(c))
	})

	rejected := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + tok.AccessToken,
		"garbage":        "Bearer not-a-token",
	}
	for name, header := range rejected {
		t.Run(name, func(t *testing.T) {
			c, called, err := serveGuarded(t, tokens, header)
			assert.False(t, called)
			assert.True(t, apperr.Is(err, apperr.KindInvalidToken))
			_, ok := ClaimsFrom(c)
			assert.False(t, ok)
			assert.Equal(t, "anon", userID(c))
		})
	}

	t.Run("expired", func(t *testing.T) {
		later := tokens.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
		_, called, err := serveGuarded(t, later, "Bearer "+tok.AccessToken)
		assert.False(t, called)
		assert.True(t, apperr.Is(err, apperr.KindInvalidToken))
	})
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/v1/tags")

	cfg := config.RateLimitConfig{Prefix: "rl"}
	tests := map[string]string{
		"ip":         "rl:ip:10.0.0.1",
		"user":       "rl:user:anon",
		"route":      "rl:route:GET /api/v1/tags",
		"ip_user":    "rl:ip:10.0.0.1:user:anon",
		"ip_route":   "rl:ip:10.0.0.1:route:GET /api/v1/tags",
		"user_route": "rl:user:anon:route:GET /api/v1/tags",
		"":           "rl:ip:10.0.0.1:user:anon:route:GET /api/v1/tags",
	}
	for strategy, want := range tests {
		cfg.KeyStrategy = strategy
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}

	c.Set(ContextKeyUserID, uint64(7))
	cfg.KeyStrategy = "USER"
	assert.Equal(t, "rl:user:7", buildRateKey(cfg, c))
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	called := false
	next := func(c echo.Context) error { called = true; return nil }

	require.NoError(t, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)(next)(c))
	assert.True(t, called)
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(3), asInt64("3"))
	assert.Equal(t, int64(0), asInt64("x"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestRecover(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := Recover()(func(echo.Context) error { panic("boom") })(c)
	assert.True(t, apperr.Is(err, apperr.KindUnexpected))

	cause := errors.New("nil map")
	err = Recover()(func(echo.Context) error { panic(cause) })(c)
	assert.ErrorIs(t, err, cause)
}

func TestIdentifyFeedsRateKey(t *testing.T) {
	tokens := auth.NewTokenService("secret", 3600)
	tok, err := tokens.Issue(42)
	require.NoError(t, err)
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}

	tests := map[string]string{
		"Bearer " + tok.AccessToken: "rl:user:42",
		"Bearer not-a-token":        "rl:user:anon",
		"":                          "rl:user:anon",
	}
	for header, want := range tests {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/tags", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		c := e.NewContext(req, httptest.NewRecorder())

		var key string
		err := Identify(tokens)(func(c echo.Context) error {
			key = buildRateKey(cfg, c)
			return nil
		})(c)
		require.NoError(t, err)
		assert.Equal(t, want, key, header)
	}
}
