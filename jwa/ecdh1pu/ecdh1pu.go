// Package ecdh1pu implements Key Agreement with Elliptic Curve Diffie-Hellman
// One-Pass Unified Model (ECDH-1PU), draft-madden-jose-ecdh-1pu.
//
// Unlike ECDH-ES, which derives the CEK from a single ephemeral-static
// agreement, ECDH-1PU additionally authenticates the sender by mixing in a
// static-static agreement between the sender's and recipient's long-term
// keys: Z = Ze || Zs.
package ecdh1pu

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	_ "crypto/sha256" // for crypto.SHA256
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
	algID: jwa.ECDH_1PU,
	f: func(key []byte) keymanage.KeyWrapper {
		return dir.New().NewKeyWrapper(&dir.Options{
			Key: key,
		})
	},
}

// New returns a new algorithm for ECDH-1PU key agreement using Concat KDF,
// with the CEK carried directly.
func New() keymanage.Algorithm {
	return alg
}

var a128kw = &Algorithm{
	algID: jwa.ECDH_1PU_A128KW,
	size:  16,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New128().NewKeyWrapper(&akw.Options{
			Key: key,
		})
	},
}

// NewA128KW returns a new algorithm ECDH-1PU using Concat KDF and CEK wrapped with "A128KW".
func NewA128KW() keymanage.Algorithm {
	return a128kw
}

var a192kw = &Algorithm{
	algID: jwa.ECDH_1PU_A192KW,
	size:  24,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New192().NewKeyWrapper(&akw.Options{
			Key: key,
		})
	},
}

// NewA192KW returns a new algorithm ECDH-1PU using Concat KDF and CEK wrapped with "A192KW".
func NewA192KW() keymanage.Algorithm {
	return a192kw
}

var a256kw = &Algorithm{
	algID: jwa.ECDH_1PU_A256KW,
	size:  32,
	f: func(key []byte) keymanage.KeyWrapper {
		return akw.New256().NewKeyWrapper(&akw.Options{
			Key: key,
		})
	},
}

// NewA256KW returns a new algorithm ECDH-1PU using Concat KDF and CEK wrapped with "A256KW".
func NewA256KW() keymanage.Algorithm {
	return a256kw
}

func init() {
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_1PU, New)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_1PU_A128KW, NewA128KW)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_1PU_A192KW, NewA192KW)
	jwa.RegisterKeyManagementAlgorithm(jwa.ECDH_1PU_A256KW, NewA256KW)
}

var _ keymanage.Algorithm = (*Algorithm)(nil)

// Algorithm is ECDH-1PU, optionally followed by AES Key Wrap of the CEK.
// size is zero for plain "ECDH-1PU", in which case the CEK is derived
// directly and f is unused.
type Algorithm struct {
	algID jwa.KeyManagementAlgorithm
	size  int
	f     func([]byte) keymanage.KeyWrapper
}

// Key extends [github.com/shogo82148/jose-go/keymanage.Key] with the other
// party's static public key required by ECDH-1PU's One-Pass Unified Model.
// When wrapping (sender side), PublicKey already identifies the recipient,
// so OtherPartyStaticKey is not consulted. When unwrapping (recipient
// side), OtherPartyStaticKey must return the sender's static public key,
// since that key cannot be recovered from the "epk" header parameter alone.
type Key interface {
	keymanage.Key
	OtherPartyStaticKey() crypto.PublicKey
}

// Options is a ready-made [Key] implementation.
type Options struct {
	Priv        crypto.PrivateKey
	Pub         crypto.PublicKey
	OtherStatic crypto.PublicKey
}

func (o *Options) PrivateKey() crypto.PrivateKey          { return o.Priv }
func (o *Options) PublicKey() crypto.PublicKey             { return o.Pub }
func (o *Options) OtherPartyStaticKey() crypto.PublicKey { return o.OtherStatic }

// NewKeyWrapper implements [github.com/shogo82148/jose-go/keymanage.Algorithm].
// rawKey must additionally implement [Key].
func (alg *Algorithm) NewKeyWrapper(rawKey keymanage.Key) keymanage.KeyWrapper {
	key, ok := rawKey.(Key)
	if !ok {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("ecdh1pu: key must implement ecdh1pu.Key: %T", rawKey))
	}
	privateKey := key.PrivateKey()
	publicKey := key.PublicKey()
	otherStatic := key.OtherPartyStaticKey()

	if privateKey != nil && !isAgreementKey(privateKey) {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("ecdh1pu: invalid private key type: %T", privateKey))
	}
	if publicKey != nil && !isAgreementKey(publicKey) {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("ecdh1pu: invalid public key type: %T", publicKey))
	}
	if otherStatic != nil && !isAgreementKey(otherStatic) {
		return keymanage.NewInvalidKeyWrapper(fmt.Errorf("ecdh1pu: invalid other party static key type: %T", otherStatic))
	}
	if publicKey == nil && privateKey != nil {
		publicKey = publicFromPrivate(privateKey)
	}
	return &KeyWrapper{
		alg:         alg,
		priv:        privateKey,
		pub:         publicKey,
		otherStatic: otherStatic,
	}
}

var _ keymanage.KeyWrapper = (*KeyWrapper)(nil)
var _ keymanage.KeyDeriver = (*KeyWrapper)(nil)

type KeyWrapper struct {
	alg         *Algorithm
	priv        any
	pub         any
	otherStatic any

	// z is the agreed Z = Ze || Zs cached by PrepareHeader, for the
	// "+AxxxKW" family only. WrapKey needs the content's authentication
	// tag, which does not exist until after the content is encrypted, so
	// ephemeral key generation (PrepareHeader) and key wrapping (WrapKey)
	// happen in two separate calls for this algorithm family.
	z []byte
}

// agreementHeader is the subset of header accessors this package needs to
// read "epk", "apu", "apv" and "enc". Both [*jwe.Header] and the unexported
// merged header type used while decrypting satisfy it structurally, so this
// package never imports jwe.
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

// contentTagHeader exposes the authentication tag produced by encrypting
// the content, once it exists. The "+AxxxKW" family folds it into the
// ConcatKDF AlgorithmID so the static-static agreement also authenticates
// the ciphertext that was actually sealed, per draft-madden-jose-ecdh-1pu
// section 3.2.
type contentTagHeader interface {
	ContentAuthenticationTag() []byte
}

// DerivesDirectly reports whether this instance derives the CEK directly
// (plain "ECDH-1PU") instead of wrapping an independently generated one
// (the "+AxxxKW" family). Both variants share the *KeyWrapper type and so
// both satisfy keymanage.KeyDeriver's method set regardless of which one a
// given instance is; callers that need to dispatch on the distinction, such
// as jwe, must check this instead of relying on the type assertion alone.
func (w *KeyWrapper) DerivesDirectly() bool {
	return w.alg.size == 0
}

// isCBCHMAC reports whether enc is one of the AES-CBC+HMAC algorithms.
// ECDH-1PU's "+AxxxKW" family binds its key wrap to the content's
// authentication tag, which only this family produces as a detached value;
// AEAD algorithms like AxxxGCM and XC20P are rejected.
func isCBCHMAC(enc jwa.EncryptionAlgorithm) bool {
	switch enc {
	case jwa.A128CBC_HS256, jwa.A192CBC_HS384, jwa.A256CBC_HS512:
		return true
	default:
		return false
	}
}

// DeriveKey implements [github.com/shogo82148/jose-go/keymanage.KeyDeriver].
// It is only valid for plain "ECDH-1PU": the CEK is derived directly, and
// no encrypted key is produced. It is called on the sender's (encrypt) side.
func (w *KeyWrapper) DeriveKey(rawHeader any) (cek, encryptedCEK []byte, err error) {
	if w.alg.size != 0 {
		return nil, nil, errors.New("ecdh1pu: DeriveKey is only valid for direct ECDH-1PU")
	}
	header, ok := rawHeader.(writableAgreementHeader)
	if !ok {
		return nil, nil, fmt.Errorf("ecdh1pu: unsupported header type: %T", rawHeader)
	}
	if w.pub == nil {
		return nil, nil, errors.New("ecdh1pu: recipient public key is required")
	}
	if w.priv == nil {
		return nil, nil, errors.New("ecdh1pu: sender static private key is required")
	}
	ephPriv, epk, err := generateEphemeral(w.pub)
	if err != nil {
		return nil, nil, err
	}
	header.SetEphemeralPublicKey(epk)

	z, err := agreedZ(ephPriv, w.priv, w.pub)
	if err != nil {
		return nil, nil, err
	}

	keySize := header.EncryptionAlgorithm().New().CEKSize()
	cek, err = concatKDF(
		[]byte(header.EncryptionAlgorithm().String()),
		header.AgreementPartyUInfo(),
		header.AgreementPartyVInfo(),
		z,
		keySize,
	)
	if err != nil {
		return nil, nil, err
	}
	return cek, []byte{}, nil
}

// PrepareHeader generates the ephemeral key pair and computes Z for the
// "ECDH-1PU+AxxxKW" family, recording "epk" on the header. It must be
// called, and the header must be marshaled into the AAD, before the
// content is encrypted; WrapKey itself runs afterwards, once the content's
// authentication tag is available. jwe calls this through the optional
// headerPreparer interface.
func (w *KeyWrapper) PrepareHeader(rawHeader any) error {
	if w.alg.size == 0 {
		return errors.New("ecdh1pu: direct ECDH-1PU does not wrap a key; use DeriveKey")
	}
	header, ok := rawHeader.(writableAgreementHeader)
	if !ok {
		return fmt.Errorf("ecdh1pu: unsupported header type: %T", rawHeader)
	}
	if !isCBCHMAC(header.EncryptionAlgorithm()) {
		return fmt.Errorf("ecdh1pu: %s requires an AES-CBC+HMAC enc algorithm, got %q", w.alg.algID, header.EncryptionAlgorithm())
	}
	if w.pub == nil {
		return errors.New("ecdh1pu: recipient public key is required")
	}
	if w.priv == nil {
		return errors.New("ecdh1pu: sender static private key is required")
	}
	ephPriv, epk, err := generateEphemeral(w.pub)
	if err != nil {
		return err
	}
	header.SetEphemeralPublicKey(epk)

	z, err := agreedZ(ephPriv, w.priv, w.pub)
	if err != nil {
		return err
	}
	w.z = z
	return nil
}

// WrapKey implements [github.com/shogo82148/jose-go/keymanage.KeyWrapper].
// It is only valid for the "ECDH-1PU+AxxxKW" family and is called on the
// sender's (encrypt) side, after PrepareHeader and after the content has
// been encrypted: the resulting authentication tag is folded into the
// ConcatKDF AlgorithmID so the key wrap authenticates the sealed content.
func (w *KeyWrapper) WrapKey(cek []byte, opts any) ([]byte, error) {
	if w.alg.size == 0 {
		return nil, errors.New("ecdh1pu: direct ECDH-1PU does not wrap a key; use DeriveKey")
	}
	if w.z == nil {
		return nil, errors.New("ecdh1pu: PrepareHeader must be called before WrapKey")
	}
	header, ok := opts.(agreementHeader)
	if !ok {
		return nil, fmt.Errorf("ecdh1pu: unsupported header type: %T", opts)
	}
	if !isCBCHMAC(header.EncryptionAlgorithm()) {
		return nil, fmt.Errorf("ecdh1pu: %s requires an AES-CBC+HMAC enc algorithm, got %q", w.alg.algID, header.EncryptionAlgorithm())
	}
	tagHeader, ok := opts.(contentTagHeader)
	if !ok || len(tagHeader.ContentAuthenticationTag()) == 0 {
		return nil, errors.New("ecdh1pu: content must be encrypted before the key is wrapped")
	}

	algID := append(append([]byte{}, w.alg.algID.String()...), tagHeader.ContentAuthenticationTag()...)
	kek, err := concatKDF(
		algID,
		header.AgreementPartyUInfo(),
		header.AgreementPartyVInfo(),
		w.z,
		w.alg.size,
	)
	if err != nil {
		return nil, err
	}
	return w.alg.f(kek).WrapKey(cek, opts)
}

// UnwrapKey is called on the recipient's (decrypt) side, for both direct
// "ECDH-1PU" and the "ECDH-1PU+AxxxKW" family.
func (w *KeyWrapper) UnwrapKey(data []byte, opts any) ([]byte, error) {
	header, ok := opts.(agreementHeader)
	if !ok {
		return nil, fmt.Errorf("ecdh1pu: unsupported header type: %T", opts)
	}
	if w.priv == nil {
		return nil, errors.New("ecdh1pu: recipient private key is required")
	}
	if w.otherStatic == nil {
		return nil, errors.New("ecdh1pu: sender static public key is required")
	}
	epk := header.EphemeralPublicKey()
	if epk == nil {
		return nil, errors.New("ecdh1pu: epk header parameter is missing")
	}
	ephPub := epk.PublicKey()
	if ephPub == nil || !isAgreementKey(ephPub) {
		return nil, fmt.Errorf("ecdh1pu: epk is not a supported agreement key: %T", ephPub)
	}

	ze, err := deriveZ(w.priv, ephPub)
	if err != nil {
		return nil, err
	}
	zs, err := deriveZ(w.priv, w.otherStatic)
	if err != nil {
		return nil, err
	}
	z := append(append([]byte{}, ze...), zs...)

	if w.alg.size == 0 {
		keySize := header.EncryptionAlgorithm().New().CEKSize()
		return concatKDF(
			[]byte(header.EncryptionAlgorithm().String()),
			header.AgreementPartyUInfo(),
			header.AgreementPartyVInfo(),
			z,
			keySize,
		)
	}

	if !isCBCHMAC(header.EncryptionAlgorithm()) {
		return nil, fmt.Errorf("ecdh1pu: %s requires an AES-CBC+HMAC enc algorithm, got %q", w.alg.algID, header.EncryptionAlgorithm())
	}
	tagHeader, ok := opts.(contentTagHeader)
	if !ok || len(tagHeader.ContentAuthenticationTag()) == 0 {
		return nil, errors.New("ecdh1pu: ContentAuthenticationTag not found")
	}

	algID := append(append([]byte{}, w.alg.algID.String()...), tagHeader.ContentAuthenticationTag()...)
	kek, err := concatKDF(
		algID,
		header.AgreementPartyUInfo(),
		header.AgreementPartyVInfo(),
		z,
		w.alg.size,
	)
	if err != nil {
		return nil, err
	}
	return w.alg.f(kek).UnwrapKey(data, opts)
}

// agreedZ computes Z = Ze || Zs for the sender side, where Ze comes from the
// freshly generated ephemeral key and Zs from the sender's static key, both
// agreed against the recipient's public key pub.
func agreedZ(ephPriv, staticPriv, pub any) ([]byte, error) {
	ze, err := deriveZ(ephPriv, pub)
	if err != nil {
		return nil, err
	}
	zs, err := deriveZ(staticPriv, pub)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, ze...), zs...), nil
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
		return nil, nil, fmt.Errorf("ecdh1pu: unsupported public key type: %T", pub)
	}
}

// deriveZ computes a raw ECDH agreement between priv and pub.
func deriveZ(priv, pub any) ([]byte, error) {
	switch priv := priv.(type) {
	case *ecdsa.PrivateKey:
		pubkey, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("ecdh1pu: want *ecdsa.PublicKey but got %T", pub)
		}
		crv := priv.Curve
		if pubkey.Curve != crv || !crv.IsOnCurve(pubkey.X, pubkey.Y) {
			return nil, errors.New("ecdh1pu: public key must be on the same curve as private key")
		}
		z, _ := crv.ScalarMult(pubkey.X, pubkey.Y, priv.D.Bytes())
		size := (crv.Params().BitSize + 7) / 8
		buf := make([]byte, size)
		return z.FillBytes(buf), nil
	case x25519.PrivateKey:
		pubkey, ok := pub.(x25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("ecdh1pu: want x25519.PublicKey but got %T", pub)
		}
		return x25519.X25519(priv.Seed(), pubkey)
	case x448.PrivateKey:
		pubkey, ok := pub.(x448.PublicKey)
		if !ok {
			return nil, fmt.Errorf("ecdh1pu: want x448.PublicKey but got %T", pub)
		}
		return x448.X448(priv.Seed(), pubkey)
	default:
		return nil, fmt.Errorf("ecdh1pu: unknown private key type: %T", priv)
	}
}

// concatKDF implements the Concat KDF defined in NIST SP 800-56A Section
// 5.8.1, as used by RFC 7518 Section 4.6 and draft-madden-jose-ecdh-1pu.
func concatKDF(algID, apu, apv, z []byte, keySize int) ([]byte, error) {
	var pubinfo [4]byte
	bits := keySize * 8
	pubinfo[0] = byte(bits >> 24)
	pubinfo[1] = byte(bits >> 16)
	pubinfo[2] = byte(bits >> 8)
	pubinfo[3] = byte(bits)

	r := newKDF(crypto.SHA256, z, algID, apu, apv, pubinfo[:], []byte{})
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

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
