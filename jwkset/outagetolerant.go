package jwkset

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shogo82148/jose-go/jwk"
)

// OutageEvent reports that OutageTolerant served a stale set in place
// of a failed fetch.
type OutageEvent struct {
	RemainingMillis int64
}

// OutageTolerantConfig configures an OutageTolerant source.
type OutageTolerantConfig struct {
	// Tolerance is how long a previously fetched set may continue to be
	// served after the underlying source starts failing with an
	// UnavailableError. If zero, 24 hours is used.
	Tolerance time.Duration

	// OnOutage, if non-nil, is called whenever a stale set is served in
	// place of a failed fetch.
	OnOutage func(OutageEvent)
}

// OutageTolerant wraps a Source, remembering the last successfully
// fetched set. If a later, non-forced call fails with an
// UnavailableError, the last known good set is served instead, as long
// as it was fetched within Tolerance. Forced calls and ParseError are
// never masked.
type OutageTolerant struct {
	source    Source
	tolerance time.Duration
	onOutage  func(OutageEvent)

	mu        sync.Mutex
	lastGood  *jwk.Set
	fetchedAt time.Time
}

var _ Source = (*OutageTolerant)(nil)

// NewOutageTolerant returns a new OutageTolerant source wrapping source.
func NewOutageTolerant(source Source, config *OutageTolerantConfig) *OutageTolerant {
	if config == nil {
		config = &OutageTolerantConfig{}
	}
	tolerance := config.Tolerance
	if tolerance <= 0 {
		tolerance = 24 * time.Hour
	}
	return &OutageTolerant{
		source:    source,
		tolerance: tolerance,
		onOutage:  config.OnOutage,
	}
}

// JWKSet implements Source.
func (s *OutageTolerant) JWKSet(ctx context.Context, force bool) (*jwk.Set, error) {
	set, err := s.source.JWKSet(ctx, force)
	if err == nil {
		s.mu.Lock()
		s.lastGood = set
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		return set, nil
	}

	if force {
		return nil, err
	}
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.tolerance - time.Since(s.fetchedAt)
	if s.lastGood == nil || remaining <= 0 {
		return nil, err
	}
	if s.onOutage != nil {
		s.onOutage(OutageEvent{RemainingMillis: remaining.Milliseconds()})
	}
	return s.lastGood, nil
}
