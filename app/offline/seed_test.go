package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedArticles(t *testing.T) {
	articles := SeedArticles()
	require.Len(t, articles, 20)

	seen := make(map[string]bool)
	for _, article := range articles {
		assert.NotEmpty(t, article.ID)
		assert.False(t, seen[article.ID], "duplicate seed id %s", article.ID)
		seen[article.ID] = true

		assert.NotEmpty(t, article.Title)
		assert.NotEmpty(t, article.Summary)
		assert.NotEmpty(t, article.Category)
		assert.False(t, article.PublishedAt.IsZero())
		assert.GreaterOrEqual(t, article.ReadTime, 1)
	}
}

func TestSeedArticlesReturnsCopy(t *testing.T) {
	first := SeedArticles()
	first[0].Title = "mutated"

	assert.NotEqual(t, "mutated", SeedArticles()[0].Title)
}
