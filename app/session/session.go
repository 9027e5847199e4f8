package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/rss-lens/app/connectivity"
	"github.com/lysyi3m/rss-lens/app/feed"
	"github.com/lysyi3m/rss-lens/app/offline"
)

var ErrClosed = errors.New("session closed")

type MultiFeedFetcher interface {
	FetchMultiple(ctx context.Context, feedURLs []string) []feed.Article
}

type Deps struct {
	Fetcher    feed.FeedFetcher
	Aggregator MultiFeedFetcher
	Cache      *offline.Cache
	Monitor    connectivity.Monitor
}

type Options struct {
	// FeedURL is fetched when FeedURLs yields no URL. Empty means the fetcher's default feed.
	FeedURL string
	// FeedURLs is consulted on every run, so source changes apply to the next refresh.
	FeedURLs func() []string
	Now      func() time.Time
}

// Session owns the article state shown to readers. It loads articles on
// creation, refreshes on demand, follows connectivity changes and falls back
// to cached or seed articles whenever live data is unavailable.
type Session struct {
	fetcher    feed.FeedFetcher
	aggregator MultiFeedFetcher
	cache      *offline.Cache
	monitor    connectivity.Monitor
	feedURL    string
	feedURLs   func() []string
	now        func() time.Time

	mu            sync.Mutex
	state         State
	subscribers   map[int]func(State)
	nextID        int
	reloadPending bool
	closed        bool

	// Notifications are delivered in ticket order, outside mu.
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	issued     uint64
	delivered  uint64

	// runMu serializes pipeline runs.
	runMu sync.Mutex

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
	ready       chan struct{}
}

// New creates a session and starts the initial load in the background.
func New(deps Deps, opts Options) *Session {
	aggregator := deps.Aggregator
	if aggregator == nil && opts.FeedURLs != nil {
		aggregator = feed.NewAggregator(deps.Fetcher, "", 0)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		fetcher:     deps.Fetcher,
		aggregator:  aggregator,
		cache:       deps.Cache,
		monitor:     deps.Monitor,
		feedURL:     opts.FeedURL,
		feedURLs:    opts.FeedURLs,
		now:         now,
		subscribers: make(map[int]func(State)),
		ctx:         ctx,
		cancel:      cancel,
		ready:       make(chan struct{}),
		state: State{
			Articles: []feed.Article{},
			Loading:  true,
		},
	}
	s.notifyCond = sync.NewCond(&s.notifyMu)

	// Subscribe before reading so a transition in between is not lost.
	s.unsubscribe = deps.Monitor.Subscribe(s.handleConnectivity)
	online := deps.Monitor.Online()
	s.mu.Lock()
	s.state.IsOnline = online
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(s.ready)
		_ = s.run(ctx, true)
	}()

	return s
}

// Ready is closed once the initial load has been committed.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive every state change, in order.
// fn must not call Refresh or Close.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	if !s.closed {
		s.subscribers[id] = fn
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Refresh reloads articles without showing the loading state. Runs queue
// behind each other. The returned error is the live fetch failure, if any;
// the state is updated with fallback articles either way.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	return s.run(ctx, false)
}

// Close detaches from the connectivity monitor, cancels in-flight runs and
// waits for them. The state does not change after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.subscribers = nil
	s.mu.Unlock()

	s.unsubscribe()
	s.cancel()
	s.wg.Wait()
}

func (s *Session) run(ctx context.Context, showLoading bool) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	logger := slog.With("run", uuid.NewString())

	if showLoading {
		if !s.mutate(func(st *State) {
			st.Loading = true
			st.Error = ""
		}) {
			return ErrClosed
		}
	}

	if !s.online() {
		result := s.cache.Fallback(ctx)
		logger.Info("Offline, serving fallback articles", "source", result.Source, "articles", len(result.Articles))

		s.mutate(func(st *State) {
			st.apply(result)
			st.Error = ""
			if showLoading {
				st.Loading = false
			}
		})
		return nil
	}

	started := time.Now()
	articles, err := s.fetch(ctx)
	if err == nil && len(articles) == 0 {
		err = feed.ErrEmptyFeed
	}

	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("Pipeline run canceled", "error", err)
			if showLoading {
				s.mutate(func(st *State) { st.Loading = false })
			}
			return err
		}

		result := s.cache.Fallback(ctx)
		logger.Warn("Live fetch failed, serving fallback articles", "error", err, "source", result.Source, "articles", len(result.Articles))

		s.mutate(func(st *State) {
			st.apply(result)
			st.Error = err.Error()
			if showLoading {
				st.Loading = false
			}
		})
		return err
	}

	fetchedAt := s.now().UTC()
	if !s.mutate(func(st *State) {
		st.Articles = articles
		st.Error = ""
		st.LastUpdated = &fetchedAt
		st.Source = offline.SourceLive
		if showLoading {
			st.Loading = false
		}
	}) {
		return ErrClosed
	}

	if err := s.cache.Save(ctx, articles, fetchedAt); err != nil {
		logger.Warn("Failed to cache articles", "error", err)
	}

	logger.Info("Articles loaded", "articles", len(articles), "duration", time.Since(started).String())
	return nil
}

func (s *Session) fetch(ctx context.Context) ([]feed.Article, error) {
	var feedURLs []string
	if s.feedURLs != nil {
		feedURLs = s.feedURLs()
	}
	if len(feedURLs) > 0 {
		return s.aggregator.FetchMultiple(ctx, feedURLs), nil
	}
	return s.fetcher.FetchFeed(ctx, s.feedURL)
}

func (s *Session) online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsOnline
}

func (s *Session) handleConnectivity(online bool) {
	// Callbacks count as in-flight work so Close waits for them.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	var reload bool

	s.mutate(func(st *State) {
		st.IsOnline = online
		reload = online && len(st.Articles) == 0 && !s.reloadPending
		if reload {
			s.reloadPending = true
			s.wg.Add(1)
		}
	})

	if !reload {
		return
	}

	slog.Info("Back online without articles, reloading")
	go func() {
		defer s.wg.Done()
		_ = s.run(s.ctx, true)

		s.mu.Lock()
		s.reloadPending = false
		s.mu.Unlock()
	}()
}

// mutate applies fn to the state and notifies subscribers. It reports false,
// without calling fn, once the session is closed.
func (s *Session) mutate(fn func(st *State)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	fn(&s.state)
	snapshot := s.state.clone()

	subscribers := make([]func(State), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subscribers = append(subscribers, sub)
	}

	s.issued++
	ticket := s.issued
	s.mu.Unlock()

	s.notifyMu.Lock()
	for s.delivered != ticket-1 {
		s.notifyCond.Wait()
	}
	s.notifyMu.Unlock()

	for _, sub := range subscribers {
		sub(snapshot.clone())
	}

	s.notifyMu.Lock()
	s.delivered = ticket
	s.notifyCond.Broadcast()
	s.notifyMu.Unlock()

	return true
}
