package procselect

import (
	"context"
	"testing"

	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/jwe"
	"github.com/shogo82148/jose-go/jwk"
	"github.com/shogo82148/jose-go/jws"
)

func testKeySet(t *testing.T) *jwk.Set {
	t.Helper()
	data := []byte(`{"keys":[
		{"kty":"RSA","use":"sig","kid":"sig-1","alg":"RS256",
		 "n":"0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw",
		 "e":"AQAB"},
		{"kty":"oct","use":"enc","kid":"enc-1","k":"AyM1SysPpbyDfgZld3umj1qzKObwVMkoqQ-EstJQLr_T-1qS0gZH75aKtMN3Yj0iPS4hcgUuTwjAzZr1Z9CAow"}
	]}`)
	set, err := jwk.ParseSet(data)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

type staticSource struct {
	set *jwk.Set
}

func (s *staticSource) Get(ctx context.Context, m *jwk.Matcher) ([]*jwk.Key, error) {
	return m.Select(s.set), nil
}

func TestJWSVerificationKeySelector_SelectsByKeyID(t *testing.T) {
	src := &staticSource{set: testKeySet(t)}
	s := NewJWSVerificationKeySelector(src, jwa.RS256)

	h := jws.NewHeader()
	h.SetAlgorithm(jwa.RS256)
	h.SetKeyID("sig-1")

	keys, err := s.SelectKeys(context.Background(), h)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0].KeyID() != "sig-1" {
		t.Errorf("unexpected keys: %+v", keys)
	}
}

func TestJWSVerificationKeySelector_RejectsUnacceptedAlg(t *testing.T) {
	src := &staticSource{set: testKeySet(t)}
	s := NewJWSVerificationKeySelector(src, jwa.RS256)

	h := jws.NewHeader()
	h.SetAlgorithm(jwa.HS256)

	if _, err := s.SelectKeys(context.Background(), h); err == nil {
		t.Fatal("want error for unaccepted alg")
	}
}

func TestJWEDecryptionKeySelector_SelectsByAlgAndEnc(t *testing.T) {
	src := &staticSource{set: testKeySet(t)}
	s := NewJWEDecryptionKeySelector(src, jwa.A128KW, jwa.A128GCM)

	h := &jwe.Header{}
	h.SetAlgorithm(jwa.A128KW)
	h.SetEncryptionAlgorithm(jwa.A128GCM)
	h.SetKeyID("enc-1")

	keys, err := s.SelectKeys(context.Background(), h)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0].KeyID() != "enc-1" {
		t.Errorf("unexpected keys: %+v", keys)
	}
}

func TestJWEDecryptionKeySelector_RejectsMismatchedAlg(t *testing.T) {
	src := &staticSource{set: testKeySet(t)}
	s := NewJWEDecryptionKeySelector(src, jwa.A128KW, jwa.A128GCM)

	h := &jwe.Header{}
	h.SetAlgorithm(jwa.A256KW)
	h.SetEncryptionAlgorithm(jwa.A128GCM)

	if _, err := s.SelectKeys(context.Background(), h); err == nil {
		t.Fatal("want error for mismatched alg")
	}
}
