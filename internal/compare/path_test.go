package compare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDirectoryPath(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		depth int
		want  string
	}{
		{"truncates", "https://x.ch/a/b/c?x=1", 2, "/a/b"},
		{"shorter than depth", "https://x.ch/a", 4, "/a"},
		{"root", "https://x.ch/", 3, "/"},
		{"no path", "https://x.ch", 1, "/"},
		{"empty segments dropped", "https://x.ch//a///b/", 5, "/a/b"},
		{"depth one", "https://x.ch/de/hypotheken/zins", 1, "/de"},
		{"unparseable", "https://[::1", 3, "/"},
		{"bad escape", "https://x.ch/%zz", 2, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDirectoryPath(tt.url, tt.depth))
		})
	}
}

func TestExtractDirectoryPathDepthBound(t *testing.T) {
	urls := []string{
		"https://x.ch/a/b/c/d/e/f/g",
		"https://x.ch/1/2/3",
		"http://example.com/en/products/loans/mortgage/fixed/10y?utm=1#top",
	}
	for depth := MinDirectoryDepth; depth <= MaxDirectoryDepth; depth++ {
		for _, u := range urls {
			path := ExtractDirectoryPath(u, depth)
			assert.True(t, strings.HasPrefix(path, "/"))
			segments := strings.Split(strings.Trim(path, "/"), "/")
			assert.LessOrEqual(t, len(segments), depth, "url %s depth %d", u, depth)
		}
	}
}

func TestDirectoryPathReportsParseFailure(t *testing.T) {
	_, ok := directoryPath("https://[::1", 2)
	assert.False(t, ok)

	_, ok = directoryPath("https://x.ch/a", 2)
	assert.True(t, ok)
}
