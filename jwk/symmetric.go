package jwk

import (
	"github.com/shogo82148/jose-go/internal/jsonutils"
	"github.com/shogo82148/jose-go/jwa"
)

// RFC7518 6.4. Parameters for Symmetric Keys
func parseSymmetricKey(d *jsonutils.Decoder, key *Key) {
	key.priv = d.MustBytes("k")
}

func encodeSymmetricKey(e *jsonutils.Encoder, priv []byte) {
	e.Set("kty", jwa.Oct.String())
	e.SetBytes("k", priv)
}
