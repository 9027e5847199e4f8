package feed

import (
	"cmp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const DefaultAuthor = "News Staff"

type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock is used where publish-time fallbacks must be deterministic.
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

func (n *Normalizer) Run(item RawItem, defaultCategory string) Article {
	title := Sanitize(item.Title)
	description := Sanitize(item.Description)

	content := description
	if item.Content != "" {
		content = Sanitize(item.Content)
	}

	return Article{
		ID:          GenerateID(title, item.Link),
		Title:       title,
		Summary:     Summarize(description),
		Content:     Backfill(content, description),
		Author:      cmp.Or(strings.TrimSpace(item.Author), DefaultAuthor),
		PublishedAt: n.publishedAt(item.PubDate),
		ImageURL:    ExtractImage(item),
		Category:    n.category(item, defaultCategory),
		ReadTime:    EstimateReadTime(content),
	}
}

func (n *Normalizer) publishedAt(pubDate string) time.Time {
	pubDate = strings.TrimSpace(pubDate)
	if pubDate != "" {
		if parsed, err := dateparse.ParseIn(pubDate, time.UTC); err == nil {
			return parsed.UTC()
		}
	}
	return n.now().UTC()
}

func (n *Normalizer) category(item RawItem, defaultCategory string) string {
	if category := strings.TrimSpace(item.Category); category != "" {
		return category
	}
	for _, category := range item.Categories {
		if category = strings.TrimSpace(category); category != "" {
			return category
		}
	}
	return defaultCategory
}
