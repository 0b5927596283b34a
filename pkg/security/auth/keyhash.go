package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey derives the non-reversible identifier for an API key. The hash
// is the universal join key across the cache, limiter, pool, and logs;
// the raw key never appears in any of them.
//
// Returns an empty string for an empty key.
func HashKey(rawKey string) string {
	if rawKey == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(rawKey))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// TruncatedHash shortens a key hash for human-facing output, keeping
// enough of the digest to tell keys apart.
//
// Example: "sha256:9f86d081..." -> "sha256:9f86d081"
func TruncatedHash(keyHash string) string {
	const keep = len("sha256:") + 8
	if len(keyHash) <= keep {
		return keyHash
	}
	return keyHash[:keep]
}
