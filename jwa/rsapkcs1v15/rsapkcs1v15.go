// Package rsapkcs1v15 implements a Key Encryption Algorithm RSAES-PKCS1-v1_5.
package rsapkcs1v15

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/keymanage"
)

var alg = &Algorithm{}

func New() keymanage.Algorithm {
	return alg
}

func init() {
	jwa.RegisterKeyManagementAlgorithm(jwa.RSA1_5, New)
}

var _ keymanage.Algorithm = (*Algorithm)(nil)

type Algorithm struct{}

// NewKeyWrapper implements [github.com/shogo82148/jose-go/keymanage.Algorithm].
func (alg *Algorithm) NewKeyWrapper(key keymanage.Key) keymanage.KeyWrapper {
	privateKey := key.PrivateKey()
	priv, ok := privateKey.(*rsa.PrivateKey)
	if !ok && privateKey != nil {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("rsapkcs1v15: invalid private key type: %T", privateKey))
	}

	publicKey := key.PublicKey()
	pub, ok := publicKey.(*rsa.PublicKey)
	if !ok && publicKey != nil {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("rsapkcs1v15: invalid public key type: %T", publicKey))
	}

	if priv != nil {
		return &KeyWrapper{
			priv: priv,
			pub:  &priv.PublicKey,
		}
	}

	return &KeyWrapper{
		pub: pub,
	}
}

var _ keymanage.KeyWrapper = (*KeyWrapper)(nil)

type KeyWrapper struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

// encryptionAlgorithmHeader is the subset of the header this package needs
// to size the substitute key used to mask padding failures.
type encryptionAlgorithmHeader interface {
	EncryptionAlgorithm() jwa.EncryptionAlgorithm
}

func (w *KeyWrapper) WrapKey(cek []byte, opts any) ([]byte, error) {
	return rsa.EncryptPKCS1v15(rand.Reader, w.pub, cek)
}

// UnwrapKey decrypts the encrypted CEK. RSAES-PKCS1-v1_5 padding failures
// must not be distinguishable from a valid decrypt, in timing or in the
// returned error, or an attacker can mount a Bleichenbacher oracle attack
// against the endpoint; rsa.DecryptPKCS1v15SessionKey implements the
// standard mitigation by filling a pre-sized buffer with the recovered key
// on success and leaving it untouched (so it keeps whatever random bytes it
// was seeded with) on padding failure, rather than returning a distinct
// error.
func (w *KeyWrapper) UnwrapKey(data []byte, opts any) ([]byte, error) {
	header, ok := opts.(encryptionAlgorithmHeader)
	if !ok {
		return nil, fmt.Errorf("rsapkcs1v15: unsupported header type: %T", opts)
	}
	enc := header.EncryptionAlgorithm()
	if !enc.Available() {
		return nil, fmt.Errorf("rsapkcs1v15: content encryption algorithm %q is not available", enc)
	}

	cek := make([]byte, enc.New().CEKSize())
	if _, err := io.ReadFull(rand.Reader, cek); err != nil {
		return nil, err
	}
	if err := rsa.DecryptPKCS1v15SessionKey(rand.Reader, w.priv, data, cek); err != nil {
		return nil, err
	}
	return cek, nil
}
