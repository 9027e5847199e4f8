package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/lysyi3m/rss-lens/app/offline"
)

const Key = "news-favorites"

// Service keeps the ids of favorite articles as a JSON array in a keyed store.
type Service struct {
	store offline.Store
	mu    sync.Mutex
}

func NewService(store offline.Store) *Service {
	return &Service{store: store}
}

// List returns the favorite ids in the order they were added.
// A missing or corrupted entry reads as no favorites.
func (s *Service) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) Contains(ctx context.Context, id string) (bool, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return lo.Contains(ids, id), nil
}

// Toggle adds id when absent and removes it otherwise. It reports whether
// id is a favorite afterwards.
func (s *Service) Toggle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	favorite := !lo.Contains(ids, id)
	if favorite {
		ids = append(ids, id)
	} else {
		ids = lo.Without(ids, id)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return false, fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := s.store.Set(ctx, Key, string(data)); err != nil {
		return false, fmt.Errorf("failed to save favorites: %w", err)
	}

	return favorite, nil
}

func (s *Service) load(ctx context.Context) ([]string, error) {
	raw, ok, err := s.store.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		slog.Warn("Favorites entry is unreadable, treating as empty", "error", err)
		return []string{}, nil
	}

	return lo.Uniq(lo.Compact(ids)), nil
}
