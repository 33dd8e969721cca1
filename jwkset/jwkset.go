// The package jwkset provides a decorator pipeline for fetching and
// caching JWK Sets from a remote source.
package jwkset

import (
	"context"
	"fmt"
	"time"

	"github.com/shogo82148/jose-go/jwk"
)

// Source is a source of a JWK Set.
type Source interface {
	// JWKSet returns the current JWK Set. If force is true, the source
	// must bypass any cache it holds and attempt a fresh fetch.
	JWKSet(ctx context.Context, force bool) (*jwk.Set, error)
}

// UnavailableError reports that a Source could not be reached. It is
// transient: a later call may succeed.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("jwkset: source unavailable: %s", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// ParseError reports that the data returned by a Source could not be
// parsed as a JWK Set. It is fatal for the response that produced it.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jwkset: failed to parse JWK set: %s", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RateLimitReachedError reports that a forced refresh was rejected by
// the RateLimited decorator.
type RateLimitReachedError struct{}

func (e *RateLimitReachedError) Error() string {
	return "jwkset: rate limit reached for forced refresh"
}

// Health is a snapshot of a Source's most recent outcome.
type Health struct {
	Success   bool
	Timestamp time.Time
}

// Immutable wraps a static JWK Set. It never fails.
type Immutable struct {
	Set *jwk.Set
}

var _ Source = (*Immutable)(nil)

// JWKSet implements Source.
func (s *Immutable) JWKSet(ctx context.Context, force bool) (*jwk.Set, error) {
	return s.Set, nil
}
