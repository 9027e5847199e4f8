package offline

import (
	"errors"
	"fmt"
)

var (
	ErrCacheMiss  = errors.New("no cached articles")
	ErrCacheParse = errors.New("failed to parse cached articles")
)

// ParseError reports a cache entry that exists but cannot be decoded.
// It matches ErrCacheParse with errors.Is.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: key %s", ErrCacheParse, e.Key)
	}
	return fmt.Sprintf("%v: key %s: %v", ErrCacheParse, e.Key, e.Err)
}

func (e *ParseError) Unwrap() []error {
	errs := []error{ErrCacheParse}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
