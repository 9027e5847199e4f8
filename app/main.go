package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/samber/lo"

	"github.com/lysyi3m/rss-lens/app/api"
	"github.com/lysyi3m/rss-lens/app/cfg"
	"github.com/lysyi3m/rss-lens/app/connectivity"
	"github.com/lysyi3m/rss-lens/app/database"
	"github.com/lysyi3m/rss-lens/app/favorites"
	"github.com/lysyi3m/rss-lens/app/feed"
	"github.com/lysyi3m/rss-lens/app/offline"
	"github.com/lysyi3m/rss-lens/app/scheduler"
	"github.com/lysyi3m/rss-lens/app/session"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("RSS Lens server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting RSS Lens server", "version", appCfg.Version)

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	store := database.NewKVRepository(db)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load feed sources: %w", err)
	}
	slog.Info("Feed sources loaded", "dir", appCfg.FeedsDir, "count", configCache.GetConfigCount())

	fetcher := feed.NewFetcher(feed.FetcherOptions{
		ProxyURL:        appCfg.ProxyURL,
		DefaultFeedURL:  appCfg.FeedURL,
		DefaultCategory: appCfg.DefaultCategory,
		UserAgent:       appCfg.UserAgent,
		Timeout:         appCfg.FetchTimeout,
		MaxRetries:      appCfg.FetchRetries,
		Sources:         configCache,
	}, feed.NewNormalizer(), feed.NewFilterer())

	aggregator := feed.NewAggregator(fetcher, appCfg.FallbackFeedURL, appCfg.Concurrency)
	feedURLs := func() []string {
		return lo.Uniq(append(slices.Clone(appCfg.FeedURLs), configCache.EnabledURLs()...))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var monitor connectivity.Monitor
	if appCfg.Offline {
		slog.Info("Offline mode, network probing disabled")
		monitor = connectivity.NewSwitch(false)
	} else {
		prober := connectivity.NewProber(connectivity.ProberOptions{
			URL:      appCfg.ProxyURL,
			Interval: appCfg.ProbeInterval,
			Timeout:  appCfg.FetchTimeout,
		})
		prober.Start(ctx)
		defer prober.Stop()
		monitor = prober
	}

	sess := session.New(session.Deps{
		Fetcher:    fetcher,
		Aggregator: aggregator,
		Cache:      offline.NewCache(store),
		Monitor:    monitor,
	}, session.Options{FeedURLs: feedURLs})
	defer sess.Close()

	refreshScheduler := scheduler.NewScheduler(sess, configCache, appCfg.RefreshInterval)
	refreshScheduler.Start()
	defer refreshScheduler.Stop()

	handler := api.NewHandler(sess, favorites.NewService(store), fetcher, monitor, configCache)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appCfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "feeds", len(feedURLs()), "auth", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("RSS Lens server shutdown complete")
	return nil
}
