package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

func NormalizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	slug = slugRegex.ReplaceAllString(slug, `-`)
	slug = strings.Trim(slug, "-")
	return slug
}

// ArticlePath derives the permanent URL of an article from its title and id.
// It is stable for the lifetime of the article because the id never changes
// and the title is immutable once the article left the pending state.
func ArticlePath(title string, id int) string {
	return fmt.Sprintf("/about/news/%s-%d/", NormalizeSlug(title), id)
}

var ErrMalformedPath = errors.New("malformed path")

// ParseArticleSlug extracts the article id from a "<slug>-<id>" path segment.
// Only the trailing id counts, the slug part is decorative and may be outdated.
func ParseArticleSlug(segment string) (int, error) {
	var i = strings.LastIndexByte(segment, '-')
	if i < 0 || i+1 >= len(segment) {
		return 0, ErrMalformedPath
	}
	id, err := strconv.Atoi(segment[i+1:])
	if err != nil || id <= 0 {
		return 0, ErrMalformedPath
	}
	return id, nil
}
