// Package procselect selects candidate keys out of a JWK set for
// verifying a JWS or decrypting a JWE, based on the algorithm and key ID
// carried in the message's own header.
package procselect

import (
	"context"
	"fmt"

	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/jwe"
	"github.com/shogo82148/jose-go/jwk"
	"github.com/shogo82148/jose-go/jwk/jwktypes"
	"github.com/shogo82148/jose-go/jwkset"
	"github.com/shogo82148/jose-go/jws"
)

// Source is the subset of jwkset's key-level lookup that a selector needs.
type Source interface {
	Get(ctx context.Context, m *jwk.Matcher) ([]*jwk.Key, error)
}

var _ Source = (*jwkset.JWKSetBasedSource)(nil)

// JWSVerificationKeySelector builds a jwk.Matcher from a JWS header and
// selects candidate verification keys from source. Headers carrying an
// alg outside Accepted are rejected outright; symmetric keys and
// asymmetric keys that carry a public key are returned, and asymmetric
// keys without a public key are dropped. A returned asymmetric key may
// still carry its private key as well.
type JWSVerificationKeySelector struct {
	Accepted map[jwa.SignatureAlgorithm]bool
	Source   Source
}

// NewJWSVerificationKeySelector returns a selector that only accepts the
// given algorithms.
func NewJWSVerificationKeySelector(source Source, accepted ...jwa.SignatureAlgorithm) *JWSVerificationKeySelector {
	m := make(map[jwa.SignatureAlgorithm]bool, len(accepted))
	for _, alg := range accepted {
		m[alg] = true
	}
	return &JWSVerificationKeySelector{Accepted: m, Source: source}
}

// SelectKeys returns the keys eligible to verify a JWS whose protected
// header is header.
func (s *JWSVerificationKeySelector) SelectKeys(ctx context.Context, header *jws.Header) ([]*jwk.Key, error) {
	alg := header.Algorithm()
	if alg == "" {
		return nil, fmt.Errorf("procselect: missing alg in JWS header")
	}
	if !s.Accepted[alg] {
		return nil, fmt.Errorf("procselect: alg %q is not in the accepted set", alg)
	}

	m := &jwk.Matcher{
		KeyOperation: jwktypes.KeyOpVerify,
	}
	if kid := header.KeyID(); kid != "" {
		m.KeyIDs = []string{kid}
	}

	keys, err := s.Source.Get(ctx, m)
	if err != nil {
		return nil, err
	}
	return filterUsableForVerify(keys), nil
}

func filterUsableForVerify(keys []*jwk.Key) []*jwk.Key {
	out := make([]*jwk.Key, 0, len(keys))
	for _, key := range keys {
		if isSymmetric(key) {
			out = append(out, key)
			continue
		}
		// an asymmetric key with no public half cannot verify anything.
		if key.PublicKey() == nil {
			continue
		}
		out = append(out, key)
	}
	return out
}

// JWEDecryptionKeySelector builds a jwk.Matcher from a JWE header's own
// alg/enc and selects candidate decryption keys from source. Only
// private and symmetric keys are ever returned, since a public key can
// never unwrap or derive a content encryption key.
type JWEDecryptionKeySelector struct {
	Algorithm  jwa.KeyManagementAlgorithm
	Encryption jwa.EncryptionAlgorithm
	Source     Source
}

// NewJWEDecryptionKeySelector returns a selector for the given key
// management and content encryption algorithms.
func NewJWEDecryptionKeySelector(source Source, alg jwa.KeyManagementAlgorithm, enc jwa.EncryptionAlgorithm) *JWEDecryptionKeySelector {
	return &JWEDecryptionKeySelector{Algorithm: alg, Encryption: enc, Source: source}
}

// SelectKeys returns the keys eligible to decrypt a JWE whose header is header.
func (s *JWEDecryptionKeySelector) SelectKeys(ctx context.Context, header *jwe.Header) ([]*jwk.Key, error) {
	alg := header.Algorithm()
	if alg == "" {
		return nil, fmt.Errorf("procselect: missing alg in JWE header")
	}
	if alg != s.Algorithm {
		return nil, fmt.Errorf("procselect: alg %q does not match expected %q", alg, s.Algorithm)
	}
	if enc := header.EncryptionAlgorithm(); enc != "" && enc != s.Encryption {
		return nil, fmt.Errorf("procselect: enc %q does not match expected %q", enc, s.Encryption)
	}

	m := &jwk.Matcher{
		KeyOperation: jwktypes.KeyOpDecrypt,
	}
	if kid := header.KeyID(); kid != "" {
		m.KeyIDs = []string{kid}
	}

	keys, err := s.Source.Get(ctx, m)
	if err != nil {
		return nil, err
	}
	return filterUsableForDecrypt(keys), nil
}

func filterUsableForDecrypt(keys []*jwk.Key) []*jwk.Key {
	out := make([]*jwk.Key, 0, len(keys))
	for _, key := range keys {
		if key.PrivateKey() == nil && !isSymmetric(key) {
			continue
		}
		out = append(out, key)
	}
	return out
}

func isSymmetric(key *jwk.Key) bool {
	return key.KeyType() == jwa.Oct
}
