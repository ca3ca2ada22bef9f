// Package metadata computes content fingerprints for published posts.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FingerprintLength is the number of hex characters kept in a short fingerprint.
const FingerprintLength = 16

// CalculateHash computes the SHA-256 hash of the content with trailing newlines trimmed.
func CalculateHash(content string) string {
	hash := sha256.Sum256([]byte(strings.TrimRight(content, "\n")))

	return hex.EncodeToString(hash[:])
}

// Fingerprint returns a short stable identifier of a post body.
// External schedulers can compare it across runs to spot repeated posts.
func Fingerprint(content string) string {
	return CalculateHash(content)[:FingerprintLength]
}

// ArticleKey identifies the source article independent of post formatting.
// URL is preferred; the title is used when a feed item has no link.
func ArticleKey(url, title string) string {
	key := strings.TrimSpace(url)
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(title))
	}

	return CalculateHash(key)[:FingerprintLength]
}
