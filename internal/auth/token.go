package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iliyamo/letters/internal/apperr"
)

const TokenType = "Bearer"

// Claims is the fixed payload of an access token. Times are seconds since
// the Unix epoch.
type Claims struct {
	Sub uint64 `json:"sub"`
	Iat uint64 `json:"iat"`
	Exp uint64 `json:"exp"`
}

var _ jwt.Claims = Claims{}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.Exp == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(int64(c.Exp), 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.Iat == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(time.Unix(int64(c.Iat), 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuer() (string, error)              { return "", nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

func (c Claims) GetSubject() (string, error) {
	return strconv.FormatUint(c.Sub, 10), nil
}

// Token is the body returned by the authorize endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   uint64 `json:"expires_in"`
}

var errMissingIssuedAt = errors.New("token has no iat claim")

// TokenService issues and validates HS256 access tokens with a shared secret.
type TokenService struct {
	secret []byte
	ttl    uint64
	now    func() time.Time
}

func NewTokenService(secret string, ttlSeconds uint64) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttlSeconds,
		now:    time.Now,
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

func (s *TokenService) TTL() uint64 { return s.ttl }

func (s *TokenService) Issue(sub uint64) (Token, error) {
	iat := uint64(s.now().UTC().Unix())
	claims := Claims{
		Sub: sub,
		Iat: iat,
		Exp: iat + s.ttl,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, apperr.Unexpected(err, "failed to sign token")
	}
	return Token{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresIn:   s.ttl,
	}, nil
}

// Validate checks the signature, the algorithm and the expiry of raw. Every
// failure is reported as the same InvalidToken error.
func (s *TokenService) Validate(raw string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	tok, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, apperr.InvalidToken(err)
	}
	if claims.Iat == 0 {
		return Claims{}, apperr.InvalidToken(errMissingIssuedAt)
	}
	return claims, nil
}
