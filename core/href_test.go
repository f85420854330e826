package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlug(t *testing.T) {
	assert.Equal(t, "postgresql-test-news", NormalizeSlug("PostgreSQL test news"))
	assert.Equal(t, "hello-world", NormalizeSlug("  Hello,   World!  "))
	assert.Equal(t, "", NormalizeSlug("!!!"))
}

func TestArticlePath(t *testing.T) {
	assert.Equal(t, "/about/news/postgresql-test-news-42/", ArticlePath("PostgreSQL test news", 42))
	assert.Equal(t, "/about/news/release-1-0-7/", ArticlePath("Release 1.0", 7))
}

func TestParseArticleSlug(t *testing.T) {

	id, err := ParseArticleSlug("postgresql-test-news-42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	// the slug part is ignored, only the trailing id counts
	id, err = ParseArticleSlug("anything-42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, malformed := range []string{"", "42abc", "no-id-here", "slug-", "slug-0"} {
		_, err := ParseArticleSlug(malformed)
		assert.Error(t, err, malformed)
	}
}
