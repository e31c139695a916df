package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/iliyamo/letters/internal/apperr"
	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// Argon2id parameters. These match the defaults of the reference argon2
// implementations, so hashes written by other tools verify here and the
// other way round.
const (
	argonVersion = argon2.Version
	saltLength   = 16
)

type Argon2Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
}

var DefaultArgon2Params = Argon2Params{
	Memory:  19 * 1024,
	Time:    2,
	Threads: 1,
	KeyLen:  32,
}

var (
	// ErrBadHash means the stored value is empty or not a base64-wrapped
	// argon2id PHC string.
	ErrBadHash = errors.New("malformed password hash")
	// ErrMismatch means the password does not match the stored hash.
	ErrMismatch = errors.New("password does not match")
)

// Hasher derives and verifies Argon2id password hashes. Each derivation
// allocates Memory KiB, so the number of concurrent derivations is bounded.
type Hasher struct {
	params Argon2Params
	sem    *semaphore.Weighted
}

// NewHasher returns a hasher allowing at most concurrency derivations at
// once. A non-positive value means one per CPU.
func NewHasher(concurrency int64) *Hasher {
	if concurrency <= 0 {
		concurrency = int64(runtime.NumCPU())
	}
	return &Hasher{
		params: DefaultArgon2Params,
		sem:    semaphore.NewWeighted(concurrency),
	}
}

func (h *Hasher) acquire(ctx context.Context) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return apperr.Unexpected(err, "waiting for password hasher")
	}
	return nil
}

// Hash returns the stored form of password: the argon2id PHC string wrapped
// in unpadded standard base64.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", apperr.Hashing(err, "failed to generate salt")
	}

	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)
	h.sem.Release(1)

	phc := encodePHC(h.params, salt, key)
	return base64.RawStdEncoding.EncodeToString([]byte(phc)), nil
}

// Verify checks password against a value produced by Hash. It returns
// ErrBadHash or ErrMismatch on failure.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) error {
	raw, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(raw) == 0 {
		return ErrBadHash
	}
	params, salt, want, err := decodePHC(string(raw))
	if err != nil {
		return ErrBadHash
	}

	if err := h.acquire(ctx); err != nil {
		return err
	}
	got := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)
	h.sem.Release(1)

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatch
	}
	return nil
}

func encodePHC(p Argon2Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonVersion, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

// decodePHC parses $argon2id$v=19$m=..,t=..,p=..$<salt>$<hash>.
func decodePHC(s string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, ErrBadHash
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return p, nil, nil, ErrBadHash
	}
	if v, err := strconv.Atoi(version); err != nil || v != argonVersion {
		return p, nil, nil, ErrBadHash
	}

	seen := 0
	for _, kv := range strings.Split(parts[3], ",") {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return p, nil, nil, ErrBadHash
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil || n == 0 {
			return p, nil, nil, ErrBadHash
		}
		switch name {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return p, nil, nil, ErrBadHash
			}
			p.Threads = uint8(n)
		default:
			return p, nil, nil, ErrBadHash
		}
		seen++
	}
	if seen != 3 || p.Memory == 0 || p.Time == 0 || p.Threads == 0 {
		return p, nil, nil, ErrBadHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrBadHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrBadHash
	}
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
