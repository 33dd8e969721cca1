package jwkset

import (
	"context"
	"sync"
	"time"

	"github.com/shogo82148/jose-go/jwk"
)

// HealthReporter is implemented by sources that can report their most
// recent fetch outcome, optionally after forcing a fresh check.
type HealthReporter interface {
	GetHealth(ctx context.Context, refresh bool) (Health, error)
}

// Monitored wraps a Source, recording the outcome of every call so that
// GetHealth can report it without forcing a new fetch.
type Monitored struct {
	source Source

	mu     sync.Mutex
	health Health
}

var _ Source = (*Monitored)(nil)
var _ HealthReporter = (*Monitored)(nil)

// NewMonitored returns a new Monitored source wrapping source.
func NewMonitored(source Source) *Monitored {
	return &Monitored{source: source}
}

// JWKSet implements Source.
func (s *Monitored) JWKSet(ctx context.Context, force bool) (*jwk.Set, error) {
	set, err := s.source.JWKSet(ctx, force)
	s.record(err == nil)
	return set, err
}

func (s *Monitored) record(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.health = Health{Success: success, Timestamp: time.Now()}
}

// GetHealth implements HealthReporter. If refresh is true, a forced
// fetch is performed and its outcome recorded before returning; the
// error from that fetch, if any, is returned alongside the resulting
// Health.
func (s *Monitored) GetHealth(ctx context.Context, refresh bool) (Health, error) {
	if !refresh {
		s.mu.Lock()
		h := s.health
		s.mu.Unlock()
		return h, nil
	}

	_, err := s.JWKSet(ctx, true)
	s.mu.Lock()
	h := s.health
	s.mu.Unlock()
	return h, err
}
