package api

import (
	"context"

	"github.com/lysyi3m/rss-lens/app/connectivity"
	"github.com/lysyi3m/rss-lens/app/favorites"
	"github.com/lysyi3m/rss-lens/app/feed"
	"github.com/lysyi3m/rss-lens/app/session"
)

type SessionInterface interface {
	Snapshot() session.State
	Refresh(ctx context.Context) error
}

type FavoritesInterface interface {
	List(ctx context.Context) ([]string, error)
	Toggle(ctx context.Context, id string) (bool, error)
}

type ConnectionTester interface {
	TestConnection(ctx context.Context) bool
}

var (
	_ SessionInterface   = (*session.Session)(nil)
	_ FavoritesInterface = (*favorites.Service)(nil)
	_ ConnectionTester   = (*feed.Fetcher)(nil)
)

type Handler struct {
	session     SessionInterface
	favorites   FavoritesInterface
	tester      ConnectionTester
	monitor     connectivity.Monitor
	configCache *feed.ConfigCache
}

// ArticlesResponse is a session snapshot, possibly narrowed by query filters.
type ArticlesResponse struct {
	session.State
	Total int `json:"total"`
}
