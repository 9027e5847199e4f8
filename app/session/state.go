package session

import (
	"slices"
	"time"

	"github.com/lysyi3m/rss-lens/app/feed"
	"github.com/lysyi3m/rss-lens/app/offline"
)

// State is the observable view of a session. Error is empty when the last
// run succeeded; Source tells whether Articles are live, cached or seeded.
type State struct {
	Articles    []feed.Article `json:"articles"`
	Loading     bool           `json:"loading"`
	Error       string         `json:"error"`
	LastUpdated *time.Time     `json:"lastUpdated"`
	IsOnline    bool           `json:"isOnline"`
	Source      offline.Source `json:"source"`
}

func (s State) clone() State {
	out := s
	out.Articles = slices.Clone(s.Articles)
	if out.Articles == nil {
		out.Articles = []feed.Article{}
	}
	if s.LastUpdated != nil {
		at := *s.LastUpdated
		out.LastUpdated = &at
	}
	return out
}

func (s *State) apply(result offline.Result) {
	s.Articles = result.Articles
	s.Source = result.Source
	if result.LastUpdated != nil {
		s.LastUpdated = result.LastUpdated
	}
}
