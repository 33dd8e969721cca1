package jwk

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"

	"github.com/shogo82148/jose-go/internal/jsonutils"
	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/secp256k1"
)

// RFC7518 6.2.2. Parameters for Elliptic Curve Private Keys
func parseEcdsaKey(d *jsonutils.Decoder, key *Key) {
	var privateKey ecdsa.PrivateKey
	crv := jwa.EllipticCurve(d.MustString("crv"))
	switch crv {
	case jwa.P256:
		privateKey.Curve = elliptic.P256()
	case jwa.P384:
		privateKey.Curve = elliptic.P384()
	case jwa.P521:
		privateKey.Curve = elliptic.P521()
	case jwa.Secp256k1:
		privateKey.Curve = secp256k1.Curve()
	default:
		d.SaveError(fmt.Errorf("jwk: unknown crv: %q", crv))
		return
	}

	// parameters for public key
	privateKey.X = d.MustBigInt("x")
	privateKey.Y = d.MustBigInt("y")
	if err := d.Err(); err != nil {
		return
	}
	if !privateKey.Curve.IsOnCurve(privateKey.X, privateKey.Y) {
		d.SaveError(errors.New("jwk: the point (x, y) is not on the curve"))
		return
	}
	pub := privateKey.PublicKey
	key.pub = &pub

	// parameters for private key
	if d.Has("d") {
		privateKey.D = d.MustBigInt("d")
		if err := d.Err(); err != nil {
			return
		}
		key.priv = &privateKey
	}

	// sanity check of the certificate
	if certs := key.X509CertificateChain(); len(certs) > 0 {
		cert := certs[0]
		publicKey, ok := cert.PublicKey.(*ecdsa.PublicKey)
		if !ok {
			d.SaveError(errors.New("jwk: public key types are mismatch"))
			return
		}
		if !pub.Equal(publicKey) {
			d.SaveError(errors.New("jwk: public keys are mismatch"))
		}
	}
}

func encodeEcdsaKey(e *jsonutils.Encoder, priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) {
	e.Set("kty", jwa.EC.String())

	var crv jwa.EllipticCurve
	switch pub.Curve {
	case elliptic.P256():
		crv = jwa.P256
	case elliptic.P384():
		crv = jwa.P384
	case elliptic.P521():
		crv = jwa.P521
	case secp256k1.Curve():
		crv = jwa.Secp256k1
	default:
		e.SaveError(fmt.Errorf("jwk: unknown curve: %v", pub.Curve))
		return
	}
	e.Set("crv", crv.String())

	size := (pub.Curve.Params().BitSize + 7) / 8
	x := make([]byte, size)
	pub.X.FillBytes(x)
	e.SetBytes("x", x)
	y := make([]byte, size)
	pub.Y.FillBytes(y)
	e.SetBytes("y", y)

	if priv != nil {
		d := make([]byte, size)
		priv.D.FillBytes(d)
		e.SetBytes("d", d)
	}
}
