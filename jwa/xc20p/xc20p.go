// Package xc20p implements XChaCha20-Poly1305 content encryption.
package xc20p

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/shogo82148/jose-go/enc"
	"github.com/shogo82148/jose-go/internal/joseerr"
	"github.com/shogo82148/jose-go/jwa"
	"golang.org/x/crypto/chacha20poly1305"
)

// keyLen is the key length for XC20P: 256 bits.
const keyLen = 32

// tagSize is the authentication tag size: 128 bits.
const tagSize = chacha20poly1305.Overhead

var xc20p = &algorithm{
	name: "XC20P",
}

// New returns XChaCha20-Poly1305 content encryption.
func New() enc.Algorithm {
	return xc20p
}

func init() {
	jwa.RegisterEncryptionAlgorithm(jwa.XC20P, New)
}

var _ enc.Algorithm = (*algorithm)(nil)

// algorithm implements XChaCha20-Poly1305 content encryption. Like agcm, the
// 24-byte extended nonce is a random salt fixed per CEK, concatenated with an
// incrementing counter, so GenerateIV never needs a fresh 192-bit random draw.
type algorithm struct {
	name string

	mu      sync.Mutex
	salt    [16]byte
	counter uint64
}

func (alg *algorithm) keyLengthError() error {
	return &joseerr.KeyLengthError{
		Pkg: "xc20p",
		Msg: fmt.Sprintf("The Content Encryption Key (CEK) length for %s must be %d bits", alg.name, keyLen*8),
	}
}

func (alg *algorithm) CEKSize() int {
	return keyLen
}

func (alg *algorithm) IVSize() int {
	return chacha20poly1305.NonceSizeX
}

func (alg *algorithm) GenerateCEK() ([]byte, error) {
	cek := make([]byte, keyLen)
	if _, err := rand.Read(cek); err != nil {
		return nil, err
	}

	alg.mu.Lock()
	defer alg.mu.Unlock()
	if _, err := rand.Read(alg.salt[:]); err != nil {
		return nil, err
	}
	alg.counter = 0
	return cek, nil
}

func (alg *algorithm) GenerateIV() ([]byte, error) {
	alg.mu.Lock()
	defer alg.mu.Unlock()
	if alg.counter == math.MaxUint64 {
		return nil, fmt.Errorf("xc20p: iv space exhausted for this content encryption key")
	}
	iv := make([]byte, chacha20poly1305.NonceSizeX)
	copy(iv, alg.salt[:])
	binary.BigEndian.PutUint64(iv[16:], alg.counter)
	alg.counter++
	return iv, nil
}

func (alg *algorithm) aead(cek []byte) (cipher.AEAD, error) {
	if len(cek) != keyLen {
		return nil, alg.keyLengthError()
	}
	return chacha20poly1305.NewX(cek)
}

func (alg *algorithm) Encrypt(cek, iv, aad, plaintext []byte) (ciphertext, authTag []byte, err error) {
	aead, err := alg.aead(cek)
	if err != nil {
		return nil, nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, nil, &joseerr.InvalidKeyError{Pkg: "xc20p", Msg: "invalid size of iv"}
	}
	sealed := aead.Seal(nil, iv, plaintext, aad)
	n := len(sealed) - tagSize
	ciphertext = sealed[:n:n]
	authTag = sealed[n:]
	return ciphertext, authTag, nil
}

func (alg *algorithm) Decrypt(cek, iv, aad, ciphertext, authTag []byte) (plaintext []byte, err error) {
	aead, err := alg.aead(cek)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, &joseerr.InvalidKeyError{Pkg: "xc20p", Msg: "invalid size of iv"}
	}
	sealed := make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)
	plaintext, err = aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, &joseerr.DecryptionError{Pkg: "xc20p"}
	}
	return plaintext, nil
}
