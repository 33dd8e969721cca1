package x448

import (
	"bytes"
	"crypto"
	"crypto/subtle"
	"fmt"
)

const (
	// PublicKeySize is the size, in bytes, of public keys as used in this package.
	PublicKeySize = 56
	// PrivateKeySize is the size, in bytes, of private keys as used in this package.
	PrivateKeySize = 112
	// SeedSize is the size, in bytes, of private key seeds. These are the private key representations used by RFC 7748.
	SeedSize = 56
)

// basePoint is the standard X448 base point u=5.
var basePoint = func() []byte {
	p := make([]byte, 56)
	p[0] = 5
	return p
}()

// PublicKey is the type of X448 public keys.
type PublicKey []byte

// Equal reports whether pub and x have the same value.
func (pub PublicKey) Equal(x crypto.PublicKey) bool {
	xx, ok := x.(PublicKey)
	if !ok {
		return false
	}
	return bytes.Equal(pub, xx)
}

// PrivateKey is the type of X448 private keys. It carries the 56-byte scalar
// followed by its corresponding 56-byte public key.
type PrivateKey []byte

// Public returns the PublicKey corresponding to priv.
func (priv PrivateKey) Public() crypto.PublicKey {
	publicKey := make([]byte, PublicKeySize)
	copy(publicKey, priv[SeedSize:])
	return PublicKey(publicKey)
}

// Equal reports whether priv and x have the same value.
func (priv PrivateKey) Equal(x crypto.PrivateKey) bool {
	xx, ok := x.(PrivateKey)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare(priv, xx) == 1
}

// Seed returns the private key seed corresponding to priv.
func (priv PrivateKey) Seed() []byte {
	seed := make([]byte, SeedSize)
	copy(seed, priv[:SeedSize])
	return seed
}

// NewKeyFromSeed calculates a private key from a seed. It will panic if
// len(seed) is not SeedSize.
func NewKeyFromSeed(seed []byte) PrivateKey {
	if len(seed) != SeedSize {
		panic(fmt.Sprintf("x448: bad seed length: %d", len(seed)))
	}
	pub, err := X448(seed, basePoint)
	if err != nil {
		panic(err)
	}
	priv := make([]byte, 0, PrivateKeySize)
	priv = append(priv, seed...)
	priv = append(priv, pub...)
	return PrivateKey(priv)
}
