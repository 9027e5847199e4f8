package feed

import (
	"context"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type FeedFetcher interface {
	FetchFeed(ctx context.Context, feedURL string) ([]Article, error)
}

var _ FeedFetcher = (*Fetcher)(nil)

// Aggregator fans a fetch out over several feeds. A failing feed contributes
// nothing; the batch itself never fails.
type Aggregator struct {
	fetcher     FeedFetcher
	fallbackURL string
	concurrency int
}

// NewAggregator builds an aggregator. concurrency <= 0 fetches every feed at once;
// an empty fallbackURL disables the retry against a fallback feed.
func NewAggregator(fetcher FeedFetcher, fallbackURL string, concurrency int) *Aggregator {
	return &Aggregator{
		fetcher:     fetcher,
		fallbackURL: fallbackURL,
		concurrency: concurrency,
	}
}

// FetchMultiple returns the articles of all feeds, newest first.
func (a *Aggregator) FetchMultiple(ctx context.Context, feedURLs []string) []Article {
	articles := a.fanOut(ctx, feedURLs)

	if len(articles) == 0 && a.fallbackURL != "" && !lo.Contains(feedURLs, a.fallbackURL) {
		slog.Info("No articles from configured feeds, trying fallback feed", "feed", a.fallbackURL)

		fallback, err := a.fetcher.FetchFeed(ctx, a.fallbackURL)
		if err != nil {
			slog.Warn("Fallback feed failed", "feed", a.fallbackURL, "error", err)
			return []Article{}
		}
		articles = fallback
	}

	slices.SortStableFunc(articles, func(x, y Article) int {
		return y.PublishedAt.Compare(x.PublishedAt)
	})

	return articles
}

func (a *Aggregator) fanOut(ctx context.Context, feedURLs []string) []Article {
	results := make([][]Article, len(feedURLs))

	var group errgroup.Group
	if a.concurrency > 0 {
		group.SetLimit(a.concurrency)
	}

	for i, feedURL := range feedURLs {
		group.Go(func() error {
			articles, err := a.fetcher.FetchFeed(ctx, feedURL)
			if err != nil {
				slog.Warn("Failed to fetch feed", "feed", feedURL, "error", err)
				return nil
			}
			results[i] = articles
			return nil
		})
	}
	_ = group.Wait()

	return lo.Flatten(results)
}
