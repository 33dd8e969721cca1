package jwkset

import (
	"context"
	"sync"
	"time"

	"github.com/shogo82148/jose-go/jwk"
	"golang.org/x/sync/singleflight"
)

// CachingConfig configures a Caching source.
type CachingConfig struct {
	// TTL is how long a fetched set is considered fresh.
	// If zero, an hour is used.
	TTL time.Duration
}

// Caching wraps a Source, holding the most recently fetched set and its
// expiry. Concurrent refreshes for the same underlying source are
// coalesced with a single-flight group.
type Caching struct {
	source Source
	ttl    time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	set       *jwk.Set
	createdAt time.Time
	expiresAt time.Time
}

var _ Source = (*Caching)(nil)

// NewCaching returns a new Caching source wrapping source.
func NewCaching(source Source, config *CachingConfig) *Caching {
	if config == nil {
		config = &CachingConfig{}
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Caching{
		source: source,
		ttl:    ttl,
	}
}

// JWKSet implements Source. force=false returns the cached set when it
// is still within its TTL; otherwise it refreshes, coalescing concurrent
// refreshes into a single underlying fetch.
func (s *Caching) JWKSet(ctx context.Context, force bool) (*jwk.Set, error) {
	now := time.Now()
	if !force {
		if set, ok := s.cached(now); ok {
			return set, nil
		}
	}

	v, err, _ := s.group.Do("", func() (any, error) {
		set, err := s.source.JWKSet(ctx, force)
		if err != nil {
			return nil, err
		}
		s.store(set, now, now.Add(s.ttl))
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jwk.Set), nil
}

func (s *Caching) cached(now time.Time) (*jwk.Set, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil || now.After(s.expiresAt) {
		return nil, false
	}
	return s.set, true
}

func (s *Caching) store(set *jwk.Set, createdAt, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = set
	s.createdAt = createdAt
	s.expiresAt = expiresAt
}

// Expiry returns the expiry of the currently cached set, and whether one
// is cached at all.
func (s *Caching) Expiry() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return time.Time{}, false
	}
	return s.expiresAt, true
}
