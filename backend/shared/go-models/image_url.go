package models

import (
	"regexp"
	"strings"
)

const (
	MaxImages = 6

	driveDirectURLPrefix = "https://drive.google.com/uc?export=view&id="
)

// Matches ".../file/d/<id>/view?usp=sharing" style share links.
var driveFileID = regexp.MustCompile(`^https?://(?:drive|docs)\.google\.com/(?:[^?#]*/)?d/([A-Za-z0-9_-]+)(?:[/?#]|$)`)

// ResolveImageURL rewrites a drive share link into a URL an <img> tag can
// fetch directly. Anything else is returned unchanged.
func ResolveImageURL(url string) string {
	m := driveFileID.FindStringSubmatch(url)
	if m == nil {
		return url
	}
	return driveDirectURLPrefix + m[1]
}

// ResolveImages trims, resolves and deduplicates urls in order, dropping
// blanks and keeping at most MaxImages entries. The result is never nil.
func ResolveImages(urls []string) []string {
	out := make([]string, 0, MaxImages)
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		u = ResolveImageURL(u)
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if len(out) == MaxImages {
			break
		}
	}
	return out
}
