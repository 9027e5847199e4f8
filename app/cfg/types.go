package cfg

import "time"

type Cfg struct {
	// Feed configuration
	ProxyURL        string
	FeedURL         string
	FeedURLs        []string
	FallbackFeedURL string
	DefaultCategory string
	FeedsDir        string
	FetchTimeout    time.Duration
	FetchRetries    int
	Concurrency     int

	// Storage configuration
	DBPath string

	// Application configuration
	Port            string
	APIAccessKey    string
	RefreshInterval time.Duration
	ProbeInterval   time.Duration
	Offline         bool

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
