// Package agcm implements AES GCM content encryption.
package agcm

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/shogo82148/jose-go/enc"
	"github.com/shogo82148/jose-go/internal/joseerr"
	"github.com/shogo82148/jose-go/jwa"
)

// ivSize is the IV size for AES GCM defined in RFC 7518 Section 5.3: 96 bits.
const ivSize = 12

// tagSize is the authentication tag size: 128 bits.
const tagSize = 16

var a128gcm = &algorithm{
	name:   "A128GCM",
	keyLen: 16,
}

// New128 returns AES GCM using 128-bit key.
func New128() enc.Algorithm {
	return a128gcm
}

var a192gcm = &algorithm{
	name:   "A192GCM",
	keyLen: 24,
}

// New192 returns AES GCM using 192-bit key.
func New192() enc.Algorithm {
	return a192gcm
}

var a256gcm = &algorithm{
	name:   "A256GCM",
	keyLen: 32,
}

// New256 returns AES GCM using 256-bit key.
func New256() enc.Algorithm {
	return a256gcm
}

func init() {
	jwa.RegisterEncryptionAlgorithm(jwa.A128GCM, New128)
	jwa.RegisterEncryptionAlgorithm(jwa.A192GCM, New192)
	jwa.RegisterEncryptionAlgorithm(jwa.A256GCM, New256)
}

var _ enc.Algorithm = (*algorithm)(nil)

// algorithm implements AES GCM content encryption. The IV is a 4-byte
// random salt, fixed per CEK, concatenated with an 8-byte big-endian
// counter that increments on every call to GenerateIV; this guarantees
// IV uniqueness for the lifetime of a single CEK without relying on a
// full 96-bit random draw for every message. GenerateCEK reseeds the
// salt and resets the counter, since a fresh CEK starts a fresh IV space.
type algorithm struct {
	name   string
	keyLen int

	mu      sync.Mutex
	salt    [4]byte
	counter uint64
}

func (alg *algorithm) keyLengthError() error {
	return &joseerr.KeyLengthError{
		Pkg: "agcm",
		Msg: fmt.Sprintf("The Content Encryption Key (CEK) length for %s must be %d bits", alg.name, alg.keyLen*8),
	}
}

func (alg *algorithm) CEKSize() int {
	return alg.keyLen
}

func (alg *algorithm) IVSize() int {
	return ivSize
}

func (alg *algorithm) GenerateCEK() ([]byte, error) {
	cek := make([]byte, alg.keyLen)
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
		return nil, fmt.Errorf("agcm: iv space exhausted for this content encryption key")
	}
	iv := make([]byte, ivSize)
	copy(iv, alg.salt[:])
	binary.BigEndian.PutUint64(iv[4:], alg.counter)
	alg.counter++
	return iv, nil
}

func (alg *algorithm) aead(cek []byte) (cipher.AEAD, error) {
	if len(cek) != alg.keyLen {
		return nil, alg.keyLengthError()
	}
	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithTagSize(block, tagSize)
}

func (alg *algorithm) Encrypt(cek, iv, aad, plaintext []byte) (ciphertext, authTag []byte, err error) {
	aead, err := alg.aead(cek)
	if err != nil {
		return nil, nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, nil, &joseerr.InvalidKeyError{Pkg: "agcm", Msg: "invalid size of iv"}
	}
	sealed := aead.Seal(nil, iv, plaintext, aad)
	n := len(sealed) - aead.Overhead()
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
		return nil, &joseerr.InvalidKeyError{Pkg: "agcm", Msg: "invalid size of iv"}
	}
	sealed := make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)
	plaintext, err = aead.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, &joseerr.DecryptionError{Pkg: "agcm"}
	}
	return plaintext, nil
}
