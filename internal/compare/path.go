package compare

import (
	"net/url"
	"strings"
)

const (
	MinDirectoryDepth = 1
	MaxDirectoryDepth = 5
)

// ExtractDirectoryPath truncates the path of rawURL to depth segments. URLs that fail
// to parse map to "/".
func ExtractDirectoryPath(rawURL string, depth int) string {
	path, _ := directoryPath(rawURL, depth)
	return path
}

func directoryPath(rawURL string, depth int) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "/", false
	}
	if depth < MinDirectoryDepth {
		depth = MinDirectoryDepth
	}

	segments := make([]string, 0, depth)
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
		if len(segments) == depth {
			break
		}
	}

	return "/" + strings.Join(segments, "/"), true
}
