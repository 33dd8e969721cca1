// Package ecdhes implements Key Agreement with Elliptic Curve Diffie-Hellman Ephemeral Static (ECDH-ES).
package ecdhes

import (
	"crypto/ecdsa"
	"crypto/rand"
	_ "crypto/sha256" // for crypto.SHA256
	"crypto"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/jwa/akw"
	"github.com/shogo82148/jose-go/jwa/dir"
	"github.com/shogo82148/jose-go/jwk"
	"github.com/shogo82148/jose-go/keymanage"
	"github.com/shogo82148/jose-go/x25519"
	"github.com/shogo82148/jose-go/x448"
)

var alg = &Algorithm{
	algID: jwa.ECDH_ES,
	f: func(key []byte) keymanage.KeyWrapper {
		return dir.New().NewKeyWrapper(&dir.Options{
			Key: key,
		})
	},
}

// New returns a new algorithm
// Elliptic Curve Diffie-Hellman Ephemeral Static key agreement using Concat KDF.
func New() keymanage.Algorithm {
	return alg
}

var a128kw = &Algorithm{
	algID: jwa.ECDH_ES_A128KW,
	size:  16,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New128().NewKeyWrapper(&akw.Options{
			Key: key,
		})
	},
}

// NewA128KW returns a new algorithm ECDH-ES using Concat KDF and CEK wrapped with "A128KW".
func NewA128KW() keymanage.Algorithm {
	return a128kw
}

var a192kw = &Algorithm{
	algID: jwa.ECDH_ES_A192KW,
	size:  24,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New192().NewKeyWrapper(&akw.Options{
			Key: key,
		})
	},
}

// NewA192KW returns a new algorithm ECDH-ES using Concat KDF and CEK wrapped with "A192KW".
func NewA192KW() keymanage.Algorithm {
	return a192kw
}

var a256kw = &Algorithm{
	algID: jwa.ECDH_ES_A256KW,
	size:  32,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New256().NewKeyWrapper(&akw.Options{
			Key: key,
		})
	},
}

// NewA256KW returns a new algorithm ECDH-ES using Concat KDF and CEK wrapped with "A256KW".
func NewA256KW() keymanage.Algorithm {
	return a256kw
}

func init() {
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_ES, New)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_ES_A128KW, NewA128KW)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_ES_A192KW, NewA192KW)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_ES_A256KW, NewA256KW)
}

var _ keymanage.Algorithm = (*Algorithm)(nil)

// Algorithm is ECDH-ES, optionally followed by AES Key Wrap of the CEK.
// size is zero for plain "ECDH-ES", in which case the CEK is derived
// directly and f is unused.
type Algorithm struct {
	algID jwa.KeyManagementAlgorithm
	size  int
	f     func([]byte) keymanage.KeyWrapper
}

// NewKeyWrapper implements [github.com/shogo82148/jose-go/keymanage.Algorithm].
// key carries the static EC (or OKP X25519/X448) key of the party this
// wrapper acts for: the recipient's public key when used to wrap a key for
// them, or the recipient's private key when used to unwrap.
func (alg *Algorithm) NewKeyWrapper(rawKey keymanage.Key) keymanage.KeyWrapper {
	privateKey := rawKey.PrivateKey()
	publicKey := rawKey.PublicKey()

	if privateKey != nil && !isAgreementKey(privateKey) {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("ecdhes: invalid private key type: %T", privateKey))
	}
	if publicKey != nil && !isAgreementKey(publicKey) {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("ecdhes: invalid public key type: %T", publicKey))
	}
	if publicKey == nil && privateKey != nil {
		publicKey = publicFromPrivate(privateKey)
	}
	return &KeyWrapper{
		alg:  alg,
		priv: privateKey,
		pub:  publicKey,
	}
}

var _ keymanage.KeyWrapper = (*KeyWrapper)(nil)
var _ keymanage.KeyDeriver = (*KeyWrapper)(nil)

type KeyWrapper struct {
	alg  *Algorithm
	priv any
	pub  any
}

// agreementHeader is the subset of header accessors this package needs to
// read or write "epk", "apu", "apv" and "enc". Both [*jwe.Header] and the
// unexported merged header type used while decrypting satisfy it
// structurally, so this package never imports jwe.
type agreementHeader interface {
	EncryptionAlgorithm() jwa.EncryptionAlgorithm
	EphemeralPublicKey() *jwk.Key
	AgreementPartyUInfo() []byte
	AgreementPartyVInfo() []byte
}

// writableAgreementHeader is agreementHeader plus the setter needed to
// record the ephemeral public key generated while wrapping or deriving a key.
type writableAgreementHeader interface {
	agreementHeader
	SetEphemeralPublicKey(epk *jwk.Key)
}

// DerivesDirectly reports whether this instance derives the CEK directly
// (plain "ECDH-ES") instead of wrapping an independently generated one
// (the "+AxxxKW" family). Both variants share the *KeyWrapper type and so
// both satisfy keymanage.KeyDeriver's method set regardless of which one a
// given instance is; callers that need to dispatch on the distinction, such
// as jwe, must check this instead of relying on the type assertion alone.
func (w *KeyWrapper) DerivesDirectly() bool {
	return w.alg.size == 0
}

// DeriveKey implements [github.com/shogo82148/jose-go/keymanage.KeyDeriver].
// It is only valid for plain "ECDH-ES": the CEK is derived directly, and no
// encrypted key is produced.
func (w *KeyWrapper) DeriveKey(rawHeader any) (cek, encryptedCEK []byte, err error) {
	if w.alg.size != 0 {
		return nil, nil, errors.New("ecdhes: DeriveKey is only valid for direct ECDH-ES")
	}
	header, ok := rawHeader.(writableAgreementHeader)
	if !ok {
		return nil, nil, fmt.Errorf("ecdhes: unsupported header type: %T", rawHeader)
	}
	if w.pub == nil {
		return nil, nil, errors.New("ecdhes: public key is required to derive a key")
	}
	ephPriv, epk, err := generateEphemeral(w.pub)
	if err != nil {
		return nil, nil, err
	}
	header.SetEphemeralPublicKey(epk)

	keySize := header.EncryptionAlgorithm().New().CEKSize()
	cek, err = deriveECDHES(
		[]byte(header.EncryptionAlgorithm().String()),
		header.AgreementPartyUInfo(),
		header.AgreementPartyVInfo(),
		ephPriv,
		w.pub,
		keySize,
	)
	if err != nil {
		return nil, nil, err
	}
	return cek, []byte{}, nil
}

// WrapKey implements [github.com/shogo82148/jose-go/keymanage.KeyWrapper].
// It is only valid for the "ECDH-ES+AxxxKW" family: an ephemeral key is
// generated, a key-wrapping key is derived via Concat KDF, and cek is
// wrapped with it.
func (w *KeyWrapper) WrapKey(cek []byte, opts any) ([]byte, error) {
	if w.alg.size == 0 {
		return nil, errors.New("ecdhes: direct ECDH-ES does not wrap a key; use DeriveKey")
	}
	header, ok := opts.(writableAgreementHeader)
	if !ok {
		return nil, fmt.Errorf("ecdhes: unsupported header type: %T", opts)
	}
	if w.pub == nil {
		return nil, errors.New("ecdhes: public key is required to wrap a key")
	}
	ephPriv, epk, err := generateEphemeral(w.pub)
	if err != nil {
		return nil, err
	}
	header.SetEphemeralPublicKey(epk)

	kek, err := deriveECDHES(
		[]byte(w.alg.algID.String()),
		header.AgreementPartyUInfo(),
		header.AgreementPartyVInfo(),
		ephPriv,
		w.pub,
		w.alg.size,
	)
	if err != nil {
		return nil, err
	}
	return w.alg.f(kek).WrapKey(cek, opts)
}

func (w *KeyWrapper) UnwrapKey(data []byte, opts any) ([]byte, error) {
	header, ok := opts.(agreementHeader)
	if !ok {
		return nil, fmt.Errorf("ecdhes: unsupported header type: %T", opts)
	}
	if w.priv == nil {
		return nil, errors.New("ecdhes: private key is required to unwrap a key")
	}
	epk := header.EphemeralPublicKey()
	if epk == nil {
		return nil, errors.New("ecdhes: epk header parameter is missing")
	}
	pub := epk.PublicKey()
	if pub == nil || !isAgreementKey(pub) {
		return nil, fmt.Errorf("ecdhes: epk is not a supported agreement key: %T", pub)
	}

	if w.alg.size == 0 {
		keySize := header.EncryptionAlgorithm().New().CEKSize()
		return deriveECDHES(
			[]byte(header.EncryptionAlgorithm().String()),
			header.AgreementPartyUInfo(),
			header.AgreementPartyVInfo(),
			w.priv,
			pub,
			keySize,
		)
	}

	kek, err := deriveECDHES(
		[]byte(w.alg.algID.String()),
		header.AgreementPartyUInfo(),
		header.AgreementPartyVInfo(),
		w.priv,
		pub,
		w.alg.size,
	)
	if err != nil {
		return nil, err
	}
	return w.alg.f(kek).UnwrapKey(data, opts)
}

func isAgreementKey(k any) bool {
	switch k.(type) {
	case *ecdsa.PrivateKey, *ecdsa.PublicKey, x25519.PrivateKey, x25519.PublicKey, x448.PrivateKey, x448.PublicKey:
		return true
	default:
		return false
	}
}

func publicFromPrivate(priv any) any {
	switch priv := priv.(type) {
	case *ecdsa.PrivateKey:
		return &priv.PublicKey
	case x25519.PrivateKey:
		return priv.Public()
	case x448.PrivateKey:
		return priv.Public()
	default:
		return nil
	}
}

// generateEphemeral generates a fresh key pair on the same curve as pub and
// returns it both as the concrete private key (for the Z computation) and
// as a JWK (to place in the "epk" header parameter).
func generateEphemeral(pub any) (priv any, epk *jwk.Key, err error) {
	switch pub := pub.(type) {
	case *ecdsa.PublicKey:
		k, err := ecdsa.GenerateKey(pub.Curve, rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		jwkKey, err := jwk.NewPrivateKey(k)
		if err != nil {
			return nil, nil, err
		}
		return k, jwkKey, nil
	case x25519.PublicKey:
		seed := make([]byte, x25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, nil, err
		}
		k := x25519.NewKeyFromSeed(seed)
		jwkKey, err := jwk.NewPrivateKey(k)
		if err != nil {
			return nil, nil, err
		}
		return k, jwkKey, nil
	case x448.PublicKey:
		seed := make([]byte, x448.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, nil, err
		}
		k := x448.NewKeyFromSeed(seed)
		jwkKey, err := jwk.NewPrivateKey(k)
		if err != nil {
			return nil, nil, err
		}
		return k, jwkKey, nil
	default:
		return nil, nil, fmt.Errorf("ecdhes: unsupported public key type: %T", pub)
	}
}

func deriveECDHES(alg, apu, apv []byte, priv, pub any, keySize int) ([]byte, error) {
	z, err := deriveZ(priv, pub)
	if err != nil {
		return nil, err
	}

	var pubinfo [4]byte
	bits := keySize * 8
	pubinfo[0] = byte(bits >> 24)
	pubinfo[1] = byte(bits >> 16)
	pubinfo[2] = byte(bits >> 8)
	pubinfo[3] = byte(bits)

	r := newKDF(crypto.SHA256, z, alg, apu, apv, pubinfo[:], []byte{})
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// deriveZ is implemented per Go version in ecdhes_go1.20.go / ecdhes_not_go1.20.go.

type kdf struct {
	hash hash.Hash

	z []byte

	// AlgorithmID
	alg []byte

	// PartyUInfo, PartyVInfo
	apu, apv []byte

	// SuppPubInfo, SuppPrivInfo
	pub, priv []byte

	round uint32
	n     int
	buf   []byte
}

func newKDF(hash crypto.Hash, z, alg, apu, apv, pub, priv []byte) *kdf {
	h := hash.New()
	size := h.Size()
	if size < 4 {
		size = 4
	}
	return &kdf{
		z:    z,
		hash: h,
		alg:  alg,
		apu:  apu,
		apv:  apv,
		pub:  pub,
		priv: priv,
		buf:  make([]byte, size),
	}
}

func (r *kdf) Read(data []byte) (n int, err error) {
	if r.n == 0 {
		r.round++
		r.hash.Reset()

		r.putUint32(r.round)
		r.hash.Write(r.z)
		r.putUint32(uint32(len(r.alg)))
		r.hash.Write(r.alg)
		r.putUint32(uint32(len(r.apu)))
		r.hash.Write(r.apu)
		r.putUint32(uint32(len(r.apv)))
		r.hash.Write(r.apv)
		r.hash.Write(r.pub)
		r.hash.Write(r.priv)

		r.buf = r.hash.Sum(r.buf[:0])
		r.n = len(r.buf)
	}
	n = copy(data, r.buf[len(r.buf)-r.n:])
	r.n -= n
	return
}

func (r *kdf) putUint32(v uint32) {
	buf := r.buf[:4]
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
	r.hash.Write(buf)
}
