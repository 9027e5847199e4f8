package offline

import (
	_ "embed"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/lysyi3m/rss-lens/app/feed"
)

//go:embed seed.json
var seedJSON []byte

var decodeSeed = sync.OnceValue(func() []feed.Article {
	var articles []feed.Article
	if err := json.Unmarshal(seedJSON, &articles); err != nil {
		slog.Error("Embedded seed articles are invalid", "error", err)
		return []feed.Article{}
	}
	return articles
})

// SeedArticles returns a copy of the built-in article set served when
// neither live nor cached data is available.
func SeedArticles() []feed.Article {
	return slices.Clone(decodeSeed())
}
