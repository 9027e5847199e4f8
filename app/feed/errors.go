package feed

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork   = errors.New("network error")
	ErrHTTP      = errors.New("HTTP error")
	ErrFormat    = errors.New("invalid RSS response format")
	ErrEmptyFeed = errors.New("no articles found in RSS feed")
	ErrNoFeedURL = errors.New("no feed URL configured")
)

// FetchError describes why a single feed could not be fetched.
// Kind is one of ErrNetwork, ErrHTTP or ErrFormat and is matched by errors.Is.
type FetchError struct {
	URL        string
	Kind       error
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to fetch RSS feed: %v: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("failed to fetch RSS feed: %v: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("failed to fetch RSS feed: %v", e.Kind)
	}
}

func (e *FetchError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
