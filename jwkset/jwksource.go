package jwkset

import (
	"context"
	"sync"
	"time"

	"github.com/shogo82148/jose-go/jwk"
)

// JWKSetBasedSource adapts a Source to a key-level lookup, running a
// matcher against the currently cached set and forcing a refresh only
// when nothing matches.
type JWKSetBasedSource struct {
	source Source

	mu        sync.Mutex
	set       *jwk.Set
	fetchedAt time.Time
}

// NewJWKSetBasedSource returns a new JWKSetBasedSource wrapping source.
func NewJWKSetBasedSource(source Source) *JWKSetBasedSource {
	return &JWKSetBasedSource{source: source}
}

// Get runs m against the currently cached set. If nothing matches, it
// requests a forced refresh and reruns m against the refreshed set.
//
// The refresh is keyed off the timestamp observed before the first
// selector run: if another caller has already refreshed the set after
// that timestamp, the fresher set is used directly instead of forcing
// a redundant fetch.
func (s *JWKSetBasedSource) Get(ctx context.Context, m *jwk.Matcher) ([]*jwk.Key, error) {
	s.mu.Lock()
	set := s.set
	before := s.fetchedAt
	s.mu.Unlock()

	if set != nil {
		if keys := m.Select(set); len(keys) > 0 {
			return keys, nil
		}
	}

	set, err := s.refresh(ctx, before)
	if err != nil {
		return nil, err
	}
	return m.Select(set), nil
}

func (s *JWKSetBasedSource) refresh(ctx context.Context, before time.Time) (*jwk.Set, error) {
	s.mu.Lock()
	if s.fetchedAt.After(before) {
		set := s.set
		s.mu.Unlock()
		return set, nil
	}
	s.mu.Unlock()

	set, err := s.source.JWKSet(ctx, true)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.set = set
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return set, nil
}
