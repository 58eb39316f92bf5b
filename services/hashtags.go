package services

import (
	"regexp"
	"strings"
)

var hashtagPattern = regexp.MustCompile(`#[A-Za-z0-9_]+`)

// ExtractHashtags returns every #tag in text, lowercased, in order of
// appearance. Repeated tags are kept.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllString(text, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.ToLower(m))
	}
	return tags
}

// NormalizeHashtag turns a route parameter ("Sunset", "#sunset") into the
// stored form "#sunset".
func NormalizeHashtag(tag string) string {
	return "#" + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}
