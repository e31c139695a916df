package utils

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2s"
)

// DefaultAvatarSize is the pixel size requested for generated avatars.
const DefaultAvatarSize = 128

// AvatarURL returns a generated avatar for users who have not set one. The
// image is keyed by a digest of the email so the address itself is not
// disclosed.
func AvatarURL(email string, size int) string {
	sum := blake2s.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	digest := base64.RawURLEncoding.EncodeToString(sum[:])
	return fmt.Sprintf("https://api.dicebear.com/9.x/bottts/svg?seed=%s&size=%d", digest, size)
}
