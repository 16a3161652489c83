package resources

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "empty", url: "", want: FallbackKey},
		{name: "url", url: "http://x/y.png", want: "remote-aHR0cDovL3gveS5wbmc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyFor(tt.url))
		})
	}
}

func TestKeyFor_injectiveAndURLSafe(t *testing.T) {
	urls := []string{
		"http://x/y.png",
		"http://x/y.png?",
		"https://x/y.png",
		"http://x/Y.png",
		"http://x/?a=b&c=d",
		"http://x/ü/☃.png",
	}
	seen := make(map[string]string)
	for _, u := range urls {
		k := KeyFor(u)
		assert.True(t, strings.HasPrefix(k, KeyPrefix))
		assert.NotContains(t, k, "=")
		assert.NotContains(t, k, "/")
		assert.NotContains(t, k, "+")
		prev, dup := seen[k]
		assert.False(t, dup, "%q and %q share key %q", prev, u, k)
		seen[k] = u

		back, ok := URLFor(k)
		assert.True(t, ok)
		assert.Equal(t, u, back)
	}
	assert.Equal(t, KeyFor(urls[0]), KeyFor(urls[0]))
}

func TestURLFor_rejects(t *testing.T) {
	for _, key := range []string{FallbackKey, KeyPrefix, "remote-***"} {
		_, ok := URLFor(key)
		assert.False(t, ok, key)
	}
}
