// package es256k implements the ES256K signature algorithm: ECDSA using
// the SECG secp256k1 curve and SHA-256.
package es256k

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"math/big"

	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/secp256k1"
	"github.com/shogo82148/jose-go/sig"
)

var es256k = &Algorithm{
	alg:  jwa.ES256K,
	hash: crypto.SHA256,
}

// New returns ECDSA using secp256k1 and SHA-256.
func New() sig.Algorithm {
	return es256k
}

func init() {
	jwa.RegisterSignatureAlgorithm(jwa.ES256K, New)
}

var _ sig.Algorithm = (*Algorithm)(nil)

type Algorithm struct {
	alg  jwa.SignatureAlgorithm
	hash crypto.Hash
}

var _ sig.SigningKey = (*Key)(nil)

type Key struct {
	hash       crypto.Hash
	privateKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
}

// NewSigningKey implements [github.com/shogo82148/jose-go/sig.Algorithm].
func (alg *Algorithm) NewSigningKey(rawKey sig.Key) sig.SigningKey {
	privateKey := rawKey.PrivateKey()
	publicKey := rawKey.PublicKey()
	crv := secp256k1.Curve()
	key := &Key{
		hash: alg.hash,
	}
	if k, ok := privateKey.(*ecdsa.PrivateKey); ok && k != nil {
		if k.Curve != crv {
			return sig.NewInvalidKey(alg.alg.String(), privateKey, publicKey)
		}
		key.privateKey = k
	} else if !ok && privateKey != nil {
		return sig.NewInvalidKey(alg.alg.String(), privateKey, publicKey)
	}
	if k, ok := publicKey.(*ecdsa.PublicKey); ok && k != nil {
		if k.Curve != crv {
			return sig.NewInvalidKey(alg.alg.String(), privateKey, publicKey)
		}
		key.publicKey = k
	} else if !ok && publicKey != nil {
		return sig.NewInvalidKey(alg.alg.String(), privateKey, publicKey)
	}
	if key.privateKey != nil && key.publicKey == nil {
		key.publicKey = &key.privateKey.PublicKey
	}
	return key
}

// Sign implements [github.com/shogo82148/jose-go/sig.SigningKey].
func (key *Key) Sign(payload []byte) (signature []byte, err error) {
	if !key.hash.Available() {
		return nil, sig.ErrHashUnavailable
	}
	if key.privateKey == nil {
		return nil, sig.ErrSignUnavailable
	}

	hash := key.hash.New()
	if _, err := hash.Write(payload); err != nil {
		return nil, err
	}
	sum := hash.Sum(nil)

	r, s, err := ecdsa.Sign(rand.Reader, key.privateKey, sum)
	if err != nil {
		return nil, err
	}
	bits := key.privateKey.Curve.Params().BitSize
	size := (bits + 7) / 8

	ret := make([]byte, 2*size)
	r.FillBytes(ret[:size])
	s.FillBytes(ret[size:])
	return ret, nil
}

// Verify implements [github.com/shogo82148/jose-go/sig.SigningKey].
func (key *Key) Verify(payload, signature []byte) error {
	if !key.hash.Available() {
		return sig.ErrHashUnavailable
	}
	if key.publicKey == nil {
		return sig.ErrSignatureMismatch
	}

	bits := key.publicKey.Curve.Params().BitSize
	size := (bits + 7) / 8
	if len(signature) != 2*size {
		return sig.ErrSignatureMismatch
	}

	hash := key.hash.New()
	if _, err := hash.Write(payload); err != nil {
		return err
	}
	sum := hash.Sum(nil)

	r := new(big.Int).SetBytes(signature[:size])
	s := new(big.Int).SetBytes(signature[size:])
	if r.Sign() == 0 || s.Sign() == 0 {
		return sig.ErrSignatureMismatch
	}
	if !ecdsa.Verify(key.publicKey, sum, r, s) {
		return sig.ErrSignatureMismatch
	}
	return nil
}
