package feed

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"
)

const (
	MaxArticlesPerFeed = 20
	DefaultProxyURL    = "https://api.rss2json.com/v1/api.json"
	DefaultCategory    = "News"

	maxResponseBytes    = 10 << 20
	retryInitialBackoff = 200 * time.Millisecond
)

type FetcherOptions struct {
	ProxyURL        string
	DefaultFeedURL  string
	DefaultCategory string
	UserAgent       string
	Timeout         time.Duration
	MaxRetries      int
	HTTPClient      *http.Client
	Sources         *ConfigCache
}

// Fetcher retrieves one feed through the JSON conversion proxy and normalizes its items.
// It holds configuration only and is safe for concurrent use.
type Fetcher struct {
	proxyURL        string
	defaultFeedURL  string
	defaultCategory string
	userAgent       string
	maxRetries      int
	httpClient      *http.Client
	sources         *ConfigCache
	normalizer      *Normalizer
	filterer        *Filterer
}

func NewFetcher(opts FetcherOptions, normalizer *Normalizer, filterer *Filterer) *Fetcher {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cmp.Or(opts.Timeout, 30*time.Second)}
	}

	return &Fetcher{
		proxyURL:        cmp.Or(opts.ProxyURL, DefaultProxyURL),
		defaultFeedURL:  opts.DefaultFeedURL,
		defaultCategory: cmp.Or(opts.DefaultCategory, DefaultCategory),
		userAgent:       opts.UserAgent,
		maxRetries:      max(0, opts.MaxRetries),
		httpClient:      httpClient,
		sources:         opts.Sources,
		normalizer:      normalizer,
		filterer:        filterer,
	}
}

// FetchFeed returns at most MaxArticlesPerFeed articles in feed order.
// An empty feedURL selects the configured default feed.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) ([]Article, error) {
	feedURL = cmp.Or(feedURL, f.defaultFeedURL)
	if feedURL == "" {
		return nil, ErrNoFeedURL
	}

	items, err := f.fetchItems(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	if len(items) > MaxArticlesPerFeed {
		items = items[:MaxArticlesPerFeed]
	}

	source := f.source(feedURL)
	category := f.defaultCategory
	if source != nil && source.Category != "" {
		category = source.Category
	}

	articles := make([]Article, 0, len(items))
	for i, raw := range items {
		var item RawItem
		if err := json.Unmarshal(raw, &item); err != nil {
			slog.Debug("Skipping undecodable feed item", "feed", feedURL, "index", i, "error", err)
			continue
		}
		articles = append(articles, f.normalizer.Run(item, category))
	}

	articles = lo.Filter(articles, func(article Article, _ int) bool {
		return article.Title != "" && article.Summary != ""
	})

	if source != nil {
		articles = f.filterer.Run(articles, source)
	}

	slog.Debug("Feed fetched", "feed", feedURL, "items", len(items), "articles", len(articles))
	return articles, nil
}

// TestConnection reports whether the default feed currently yields any article.
func (f *Fetcher) TestConnection(ctx context.Context) bool {
	articles, err := f.FetchFeed(ctx, "")
	if err != nil {
		slog.Debug("Connection test failed", "error", err)
		return false
	}
	return len(articles) > 0
}

func (f *Fetcher) fetchItems(ctx context.Context, feedURL string) ([]json.RawMessage, error) {
	requestURL, err := f.requestURL(feedURL)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrNetwork, Err: err}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialBackoff

	operation := func() ([]json.RawMessage, error) {
		items, err := f.fetchOnce(ctx, feedURL, requestURL)
		if err == nil {
			return items, nil
		}
		if errors.Is(err, ErrNetwork) && ctx.Err() == nil {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	notify := func(err error, delay time.Duration) {
		slog.Warn("Feed fetch failed, retrying", "feed", feedURL, "delay", delay.String(), "error", err)
	}

	return backoff.RetryNotifyWithData(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(f.maxRetries)), ctx), notify)
}

func (f *Fetcher) fetchOnce(ctx context.Context, feedURL, requestURL string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrNetwork, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: feedURL, Kind: ErrHTTP, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrNetwork, Err: err}
	}

	var payload struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrFormat, Err: err}
	}

	rawItems := bytes.TrimSpace(payload.Items)
	if len(rawItems) == 0 || rawItems[0] != '[' {
		return nil, &FetchError{URL: feedURL, Kind: ErrFormat}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return nil, &FetchError{URL: feedURL, Kind: ErrFormat, Err: err}
	}

	return items, nil
}

func (f *Fetcher) requestURL(feedURL string) (string, error) {
	u, err := url.Parse(f.proxyURL)
	if err != nil {
		return "", fmt.Errorf("invalid proxy URL %q: %w", f.proxyURL, err)
	}

	query := u.Query()
	query.Set("rss_url", feedURL)
	u.RawQuery = query.Encode()

	return u.String(), nil
}

func (f *Fetcher) source(feedURL string) *Config {
	if f.sources == nil {
		return nil
	}
	return f.sources.GetConfigByURL(feedURL)
}
