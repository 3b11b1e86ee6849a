package stores

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a store did not produce a price.
type ErrorKind string

const (
	KindNone         ErrorKind = ""
	KindNotFound     ErrorKind = "not-found"
	KindRateLimited  ErrorKind = "rate-limited"
	KindTimeout      ErrorKind = "timeout"
	KindParseFailure ErrorKind = "parse-failure"
	KindOther        ErrorKind = "error"
)

// Sentinels for errors.Is; every *FetchError matches the sentinel of its kind.
var (
	ErrNotFound     = errors.New("product not found")
	ErrRateLimited  = errors.New("rate limited by store")
	ErrTimeout      = errors.New("store request timed out")
	ErrParseFailure = errors.New("no price found on page")

	// ErrMalformedIdentity is a contract violation: the identity lacks a field the
	// store's template requires.
	ErrMalformedIdentity = errors.New("malformed printing identity")
)

// FetchError is the error returned by renderers, extractors and adapters.
type FetchError struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	msg := string(e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.URL != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.URL)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match a FetchError against the sentinel for its kind.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrParseFailure:
		return e.Kind == KindParseFailure
	}
	return false
}

// KindOf returns the ErrorKind carried by err or matched by one of the
// sentinels, KindOther for foreign errors and KindNone for nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrParseFailure):
		return KindParseFailure
	}
	return KindOther
}

// IsRateLimited is the default retry predicate.
func IsRateLimited(err error) bool {
	return KindOf(err) == KindRateLimited
}
