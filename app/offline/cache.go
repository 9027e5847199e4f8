package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/rss-lens/app/feed"
)

const (
	ArticlesKey    = "rss-articles"
	LastUpdatedKey = "rss-last-updated"
)

// Store is the keyed string storage the cache persists into.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Source tells where a set of articles came from.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
	SourceSeed  Source = "seed"
)

// Result is what the offline policy serves when no live data is available.
// LastUpdated is nil for seed data.
type Result struct {
	Articles    []feed.Article
	LastUpdated *time.Time
	Source      Source
}

// Cache keeps the last successful article set in a Store.
type Cache struct {
	store Store
	now   func() time.Time
}

func NewCache(store Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

func NewCacheWithClock(store Store, now func() time.Time) *Cache {
	return &Cache{store: store, now: now}
}

// Save overwrites the cached articles and their timestamp.
func (c *Cache) Save(ctx context.Context, articles []feed.Article, at time.Time) error {
	if articles == nil {
		articles = []feed.Article{}
	}

	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to encode articles: %w", err)
	}

	if err := c.store.Set(ctx, ArticlesKey, string(data)); err != nil {
		return fmt.Errorf("failed to save cached articles: %w", err)
	}
	if err := c.store.Set(ctx, LastUpdatedKey, at.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to save cache timestamp: %w", err)
	}

	return nil
}

// Load returns the cached articles and the time they were saved.
// It fails with ErrCacheMiss when nothing is cached and with a *ParseError
// when the entry is not a JSON array of articles.
func (c *Cache) Load(ctx context.Context) ([]feed.Article, time.Time, error) {
	raw, ok, err := c.store.Get(ctx, ArticlesKey)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}
	if !ok {
		return nil, time.Time{}, ErrCacheMiss
	}

	payload := bytes.TrimSpace([]byte(raw))
	if len(payload) == 0 || payload[0] != '[' {
		return nil, time.Time{}, &ParseError{Key: ArticlesKey}
	}

	var articles []feed.Article
	if err := json.Unmarshal(payload, &articles); err != nil {
		return nil, time.Time{}, &ParseError{Key: ArticlesKey, Err: err}
	}

	return articles, c.lastUpdated(ctx), nil
}

// Fallback serves the cache when it can be loaded and the seed set otherwise.
func (c *Cache) Fallback(ctx context.Context) Result {
	articles, at, err := c.Load(ctx)
	if err == nil {
		slog.Debug("Serving cached articles", "articles", len(articles), "last_updated", at)
		return Result{Articles: articles, LastUpdated: &at, Source: SourceCache}
	}

	if errors.Is(err, ErrCacheParse) {
		slog.Warn("Cached articles are unreadable, serving seed articles", "error", err)
	} else {
		slog.Debug("No cached articles, serving seed articles", "error", err)
	}

	return Result{Articles: SeedArticles(), Source: SourceSeed}
}

func (c *Cache) lastUpdated(ctx context.Context) time.Time {
	raw, ok, err := c.store.Get(ctx, LastUpdatedKey)
	if err != nil || !ok {
		return c.now().UTC()
	}

	at, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		slog.Debug("Unreadable cache timestamp", "value", raw, "error", err)
		return c.now().UTC()
	}
	return at.UTC()
}
