package jwkset

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shogo82148/jose-go/jwk"
	"golang.org/x/sync/singleflight"
)

// RefreshAheadConfig configures a RefreshAhead source.
type RefreshAheadConfig struct {
	// TTL is how long a fetched set is considered fresh.
	// If zero, an hour is used.
	TTL time.Duration

	// RefreshAheadTime is how long before expiry a background refresh is
	// triggered. If zero, a tenth of TTL is used.
	RefreshAheadTime time.Duration

	// ScheduleRefresh, if non-nil, is used to run the background
	// refresh instead of a bare goroutine. It is useful for tests that
	// want to control when the refresh actually runs.
	ScheduleRefresh func(refresh func())
}

// RefreshAhead wraps a Source, caching its result like Caching, but also
// triggers a background refresh shortly before the cached copy expires,
// so that foreground callers rarely observe a cache miss.
type RefreshAhead struct {
	source   Source
	ttl      time.Duration
	ahead    time.Duration
	runLater func(func())

	group singleflight.Group

	mu         sync.RWMutex
	set        *jwk.Set
	expiresAt  time.Time
	refreshing int32
}

var _ Source = (*RefreshAhead)(nil)

// NewRefreshAhead returns a new RefreshAhead source wrapping source.
func NewRefreshAhead(source Source, config *RefreshAheadConfig) *RefreshAhead {
	if config == nil {
		config = &RefreshAheadConfig{}
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	ahead := config.RefreshAheadTime
	if ahead <= 0 {
		ahead = ttl / 10
	}
	if ahead > ttl {
		ahead = ttl / 2
	}
	runLater := config.ScheduleRefresh
	if runLater == nil {
		runLater = func(refresh func()) { go refresh() }
	}
	return &RefreshAhead{
		source:   source,
		ttl:      ttl,
		ahead:    ahead,
		runLater: runLater,
	}
}

// JWKSet implements Source.
func (s *RefreshAhead) JWKSet(ctx context.Context, force bool) (*jwk.Set, error) {
	now := time.Now()

	if !force {
		set, expiresAt, ok := s.cached()
		if ok {
			if now.After(expiresAt.Add(-s.ahead)) {
				s.triggerRefresh()
			}
			return set, nil
		}
	}

	return s.refresh(ctx, force)
}

func (s *RefreshAhead) cached() (*jwk.Set, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil || time.Now().After(s.expiresAt) {
		return nil, time.Time{}, false
	}
	return s.set, s.expiresAt, true
}

func (s *RefreshAhead) triggerRefresh() {
	if !atomic.CompareAndSwapInt32(&s.refreshing, 0, 1) {
		return
	}
	s.runLater(func() {
		defer atomic.StoreInt32(&s.refreshing, 0)
		_, _ = s.refresh(context.Background(), true)
	})
}

func (s *RefreshAhead) refresh(ctx context.Context, force bool) (*jwk.Set, error) {
	v, err, _ := s.group.Do("", func() (any, error) {
		set, err := s.source.JWKSet(ctx, force)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		s.mu.Lock()
		s.set = set
		s.expiresAt = now.Add(s.ttl)
		s.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jwk.Set), nil
}
