package resources

import "encoding/base64"

const (
	// FallbackKey names the built-in texture used when a remote image is
	// missing or cannot be loaded.
	FallbackKey = "ship"
	// KeyPrefix marks keys derived from remote URLs.
	KeyPrefix = "remote-"
)

// KeyFor derives the cache key of a remote image URL.
// Distinct URLs map to distinct keys; the empty URL maps to FallbackKey.
func KeyFor(url string) string {
	if url == "" {
		return FallbackKey
	}
	return KeyPrefix + base64.RawURLEncoding.EncodeToString([]byte(url))
}

// URLFor reverses KeyFor. It returns false for keys not derived from a URL.
func URLFor(key string) (string, bool) {
	if len(key) <= len(KeyPrefix) || key[:len(KeyPrefix)] != KeyPrefix {
		return "", false
	}
	b, err := base64.RawURLEncoding.DecodeString(key[len(KeyPrefix):])
	if err != nil {
		return "", false
	}
	return string(b), true
}
