package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/samber/lo"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Feed configuration
	ProxyURL        string        `long:"proxy-url" env:"PROXY_URL" default:"https://api.rss2json.com/v1/api.json" description:"RSS-to-JSON proxy endpoint"`
	FeedURL         string        `long:"feed-url" env:"FEED_URL" default:"https://design-milk.com/feed/" description:"Default feed URL"`
	FeedURLs        []string      `long:"feed-urls" env:"FEED_URLS" env-delim:"," description:"Feed URLs aggregated into one article list (repeatable)"`
	FallbackFeedURL string        `long:"fallback-feed" env:"FALLBACK_FEED" description:"Feed tried when every aggregated feed yields nothing"`
	DefaultCategory string        `long:"default-category" env:"DEFAULT_CATEGORY" default:"News" description:"Category of articles whose feed declares none"`
	FeedsDir        string        `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed source files"`
	FetchTimeout    time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30s" description:"Timeout of a single proxy request"`
	FetchRetries    int           `long:"fetch-retries" env:"FETCH_RETRIES" default:"0" description:"Retries of a feed request after a network error"`
	Concurrency     int           `long:"concurrency" env:"CONCURRENCY" default:"0" description:"Feeds fetched at once when aggregating (0 means all)"`

	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/rss-lens.db" description:"SQLite database file"`

	// Application configuration
	Port            string        `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey    string        `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for mutating routes (optional)"`
	RefreshInterval time.Duration `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"15m" description:"Periodic refresh interval (0 disables)"`
	ProbeInterval   time.Duration `long:"probe-interval" env:"PROBE_INTERVAL" default:"30s" description:"Connectivity probe interval"`
	Offline         bool          `long:"offline" env:"OFFLINE" description:"Start offline and never probe the network"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Lens/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments and environment. It returns nil, nil
// when help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ProxyURL:        strings.TrimSpace(raw.ProxyURL),
		FeedURL:         strings.TrimSpace(raw.FeedURL),
		FeedURLs:        normalizeURLs(raw.FeedURLs),
		FallbackFeedURL: strings.TrimSpace(raw.FallbackFeedURL),
		DefaultCategory: strings.TrimSpace(raw.DefaultCategory),
		FeedsDir:        raw.FeedsDir,
		FetchTimeout:    raw.FetchTimeout,
		FetchRetries:    raw.FetchRetries,
		Concurrency:     raw.Concurrency,
		DBPath:          raw.DBPath,
		Port:            raw.Port,
		APIAccessKey:    raw.APIAccessKey,
		RefreshInterval: raw.RefreshInterval,
		ProbeInterval:   raw.ProbeInterval,
		Offline:         raw.Offline,
		UserAgent:       raw.UserAgent,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	for _, u := range append([]string{cfg.ProxyURL, cfg.FeedURL}, cfg.FeedURLs...) {
		if err := validateURL(u); err != nil {
			return err
		}
	}
	if cfg.FallbackFeedURL != "" {
		if err := validateURL(cfg.FallbackFeedURL); err != nil {
			return err
		}
	}

	if cfg.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", cfg.FetchTimeout)
	}
	if cfg.FetchRetries < 0 {
		return fmt.Errorf("fetch retries must not be negative, got %d", cfg.FetchRetries)
	}
	if cfg.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if cfg.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must not be negative, got %s", cfg.RefreshInterval)
	}
	if cfg.ProbeInterval <= 0 {
		return fmt.Errorf("probe interval must be positive, got %s", cfg.ProbeInterval)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("database path is required")
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid URL %q: must be an absolute http(s) URL", raw)
	}
	return nil
}

func normalizeURLs(urls []string) []string {
	trimmed := lo.Map(urls, func(u string, _ int) string { return strings.TrimSpace(u) })
	return lo.Uniq(lo.Compact(trimmed))
}
