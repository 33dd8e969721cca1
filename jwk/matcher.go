package jwk

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"

	"github.com/shogo82148/jose-go/ed448"
	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/jwk/jwktypes"
	"github.com/shogo82148/jose-go/x25519"
	"github.com/shogo82148/jose-go/x448"
)

// Matcher selects JWKs out of a Set by any combination of their metadata.
// A zero Matcher matches every key. Every non-zero field narrows the match;
// the final result satisfies all of them.
type Matcher struct {
	KeyType        jwa.KeyType
	KeyUse         jwktypes.KeyUse
	KeyOperation   jwktypes.KeyOp
	Algorithm      jwa.KeyAlgorithm
	KeyIDs         []string
	Curves         []jwa.EllipticCurve
	MinSize        int
	HasX509SHA1    bool
	HasX509Chain   bool
	RequirePrivate bool
	RequirePublic  bool
}

// Match reports whether key satisfies every constraint set on m.
func (m *Matcher) Match(key *Key) bool {
	if m.KeyType != "" && key.KeyType() != m.KeyType {
		return false
	}
	if m.KeyUse != "" && key.PublicKeyUse() != m.KeyUse {
		return false
	}
	if m.KeyOperation != "" && !jwktypes.CanUseFor(key, m.KeyOperation) {
		return false
	}
	if m.Algorithm != "" && key.Algorithm() != m.Algorithm {
		return false
	}
	if len(m.KeyIDs) > 0 && !containsString(m.KeyIDs, key.KeyID()) {
		return false
	}
	if len(m.Curves) > 0 && !containsCurve(m.Curves, keyCurve(key)) {
		return false
	}
	if m.MinSize > 0 && keySize(key) < m.MinSize {
		return false
	}
	if m.HasX509SHA1 && len(key.X509CertificateSHA1()) == 0 {
		return false
	}
	if m.HasX509Chain && len(key.X509CertificateChain()) == 0 {
		return false
	}
	if m.RequirePrivate && key.PrivateKey() == nil {
		return false
	}
	if m.RequirePublic && key.PublicKey() == nil {
		return false
	}
	return true
}

// Select returns the ordered sublist of set.Keys that m matches.
func (m *Matcher) Select(set *Set) []*Key {
	if set == nil {
		return nil
	}
	matched := make([]*Key, 0, len(set.Keys))
	for _, key := range set.Keys {
		if m.Match(key) {
			matched = append(matched, key)
		}
	}
	return matched
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsCurve(list []jwa.EllipticCurve, c jwa.EllipticCurve) bool {
	if c == "" {
		return false
	}
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

// keyCurve reports the RFC7518/RFC8037 "crv" identifier of key's
// underlying key material, or "" if key is not an EC/OKP key.
func keyCurve(key *Key) jwa.EllipticCurve {
	pub := key.PublicKey()
	if pub == nil {
		pub = key.PrivateKey()
	}
	switch pub := pub.(type) {
	case *ecdsa.PublicKey:
		switch pub.Curve.Params().BitSize {
		case 256:
			// both P-256 and secp256k1 report BitSize 256; fall back to
			// the decoded "crv" member to disambiguate when available.
			if crv, ok := key.Raw["crv"].(string); ok {
				return jwa.EllipticCurve(crv)
			}
			return jwa.P256
		case 384:
			return jwa.P384
		case 521:
			return jwa.P521
		}
	case ed25519.PublicKey:
		return jwa.Ed25519
	case ed448.PublicKey:
		return jwa.Ed448
	case x25519.PublicKey:
		return jwa.X25519
	case x448.PublicKey:
		return jwa.X448
	}
	return ""
}

// keySize reports the key size in bits, for the kty-specific notion of
// size: the RSA modulus, the EC curve's bit size, the length of an OKP
// public key's encoding (256 for Ed25519 and X25519, 456 for Ed448, 448
// for X448), or the length of an oct key.
func keySize(key *Key) int {
	pub := key.PublicKey()
	if pub == nil {
		pub = key.PrivateKey()
	}
	switch pub := pub.(type) {
	case *rsa.PublicKey:
		return pub.N.BitLen()
	case *ecdsa.PublicKey:
		return pub.Curve.Params().BitSize
	case ed25519.PublicKey:
		return 256
	case ed448.PublicKey:
		return 456
	case x25519.PublicKey:
		return 256
	case x448.PublicKey:
		return 448
	}
	if priv, ok := key.PrivateKey().([]byte); ok {
		return len(priv) * 8
	}
	return 0
}
