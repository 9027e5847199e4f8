package cfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://api.rss2json.com/v1/api.json", cfg.ProxyURL)
	assert.Equal(t, "https://design-milk.com/feed/", cfg.FeedURL)
	assert.Empty(t, cfg.FeedURLs)
	assert.Equal(t, "News", cfg.DefaultCategory)
	assert.Equal(t, "./feeds", cfg.FeedsDir)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Zero(t, cfg.FetchRetries)
	assert.Zero(t, cfg.Concurrency)
	assert.Equal(t, "./data/rss-lens.db", cfg.DBPath)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 30*time.Second, cfg.ProbeInterval)
	assert.False(t, cfg.Offline)
	assert.False(t, cfg.Debug)
	assert.Equal(t, GetVersion(), cfg.Version)
}

func TestLoadFlags(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--feed-urls", "https://a.example.com/rss",
		"--feed-urls", " https://b.example.com/rss ",
		"--feed-urls", "https://a.example.com/rss",
		"--fallback-feed", "https://fallback.example.com/rss",
		"--refresh-interval", "0",
		"--fetch-retries", "2",
		"--concurrency", "4",
		"--offline",
		"--debug",
		"--api-key", "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com/rss", "https://b.example.com/rss"}, cfg.FeedURLs)
	assert.Equal(t, "https://fallback.example.com/rss", cfg.FallbackFeedURL)
	assert.Zero(t, cfg.RefreshInterval)
	assert.Equal(t, 2, cfg.FetchRetries)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.Offline)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "secret", cfg.APIAccessKey)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FEED_URLS", "https://a.example.com/rss,https://b.example.com/rss")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("DB_PATH", "/tmp/lens.db")

	cfg, err := LoadArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example.com/rss", "https://b.example.com/rss"}, cfg.FeedURLs)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "/tmp/lens.db", cfg.DBPath)
}

func TestLoadValidation(t *testing.T) {
	tests := map[string][]string{
		"relative feed url":  {"--feed-url", "/feed"},
		"bad proxy scheme":   {"--proxy-url", "ftp://proxy.example.com"},
		"bad feed list":      {"--feed-urls", "not a url"},
		"bad fallback":       {"--fallback-feed", "nope"},
		"zero timeout":       {"--fetch-timeout", "0s"},
		"negative retries":   {"--fetch-retries", "-1"},
		"negative interval":  {"--refresh-interval", "-1m"},
		"zero probe":         {"--probe-interval", "0s"},
		"empty db path":      {"--db-path", ""},
		"unknown flag":       {"--no-such-flag"},
		"malformed duration": {"--fetch-timeout", "soon"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadArgs(args)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadHelp(t *testing.T) {
	cfg, err := LoadArgs([]string{"--help"})
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}
