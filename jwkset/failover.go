package jwkset

import (
	"context"
	"fmt"

	"github.com/shogo82148/jose-go/jwk"
)

// Failover wraps a primary Source and a failover Source. If the primary
// fails, the failover is tried. If both fail, the errors are combined.
type Failover struct {
	Primary  Source
	Failover Source
}

var _ Source = (*Failover)(nil)

// JWKSet implements Source.
func (s *Failover) JWKSet(ctx context.Context, force bool) (*jwk.Set, error) {
	set, err := s.Primary.JWKSet(ctx, force)
	if err == nil {
		return set, nil
	}

	set, ferr := s.Failover.JWKSet(ctx, force)
	if ferr == nil {
		return set, nil
	}

	return nil, fmt.Errorf("jwkset: primary source failed: %w; failover source failed: %s", err, ferr)
}
