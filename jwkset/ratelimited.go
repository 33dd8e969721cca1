package jwkset

import (
	"context"
	"time"

	"github.com/shogo82148/jose-go/jwk"
	"golang.org/x/time/rate"
)

// RateLimitedConfig configures a RateLimited source.
type RateLimitedConfig struct {
	// Rate is the sustained number of forced refreshes permitted per
	// second. If zero, one refresh per minute is used.
	Rate rate.Limit

	// Burst is the maximum number of forced refreshes permitted in a
	// burst. If zero, 1 is used.
	Burst int
}

// RateLimited wraps a Source, bounding the rate of forced refreshes so
// that a caller cannot exhaust the underlying source by repeatedly
// requesting force=true. Non-forced calls always pass through.
type RateLimited struct {
	source  Source
	limiter *rate.Limiter
}

var _ Source = (*RateLimited)(nil)

// NewRateLimited returns a new RateLimited source wrapping source.
func NewRateLimited(source Source, config *RateLimitedConfig) *RateLimited {
	if config == nil {
		config = &RateLimitedConfig{}
	}
	r := config.Rate
	if r == 0 {
		r = rate.Every(time.Minute)
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{
		source:  source,
		limiter: rate.NewLimiter(r, burst),
	}
}

// cacheExpiry is implemented by sources, such as Caching, that can report
// whether they currently hold a still-valid set without performing a
// fetch.
type cacheExpiry interface {
	Expiry() (time.Time, bool)
}

// JWKSet implements Source. A non-forced call always passes through.
// A forced call that would exceed the configured rate falls back to the
// wrapped source's still-valid cached set, if it has one; only when no
// valid cached set is available is the call rejected with
// RateLimitReachedError.
func (s *RateLimited) JWKSet(ctx context.Context, force bool) (*jwk.Set, error) {
	if force && !s.limiter.Allow() {
		if cached, ok := s.source.(cacheExpiry); ok {
			if expiresAt, has := cached.Expiry(); has && time.Now().Before(expiresAt) {
				return s.source.JWKSet(ctx, false)
			}
		}
		return nil, &RateLimitReachedError{}
	}
	return s.source.JWKSet(ctx, force)
}
