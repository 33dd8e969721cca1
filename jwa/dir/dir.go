// Package dir implements a Key Wrapping algorithm
// that is direct use of a shared symmetric key as the CEK.
package dir

import (
	"crypto"
	"fmt"

	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/keymanage"
)

var alg = &Algorithm{}

func New() keymanage.Algorithm {
	return alg
}

func init() {
	jwa.RegisterKeyManagementAlgorithm(jwa.Direct, New)
}

var _ keymanage.Algorithm = (*Algorithm)(nil)

type Algorithm struct{}

// Options carries the raw shared symmetric key used directly as the CEK. It
// implements [github.com/shogo82148/jose-go/keymanage.Key] so it can be
// passed directly to Algorithm.NewKeyWrapper.
type Options struct {
	Key []byte
}

func (o *Options) PrivateKey() crypto.PrivateKey { return o.Key }
func (o *Options) PublicKey() crypto.PublicKey   { return nil }

// NewKeyWrapper implements [github.com/shogo82148/jose-go/keymanage.Algorithm].
func (alg *Algorithm) NewKeyWrapper(rawKey keymanage.Key) keymanage.KeyWrapper {
	privateKey := rawKey.PrivateKey()
	key, ok := privateKey.([]byte)
	if !ok {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("dir: invalid key type: %T", privateKey))
	}
	return &KeyWrapper{
		cek: key,
	}
}

var _ keymanage.KeyWrapper = (*KeyWrapper)(nil)

type KeyWrapper struct {
	cek []byte
}

func (w *KeyWrapper) WrapKey(cek []byte, opts any) ([]byte, error) {
	return []byte{}, nil
}

func (w *KeyWrapper) UnwrapKey(data []byte, opts any) ([]byte, error) {
	return w.cek, nil
}
