package jwt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shogo82148/jose-go/internal/jsonutils"
	"github.com/shogo82148/jose-go/jwa"
	"github.com/shogo82148/jose-go/jws"
	"github.com/shogo82148/jose-go/sig"
)

// KeyFinder finds the key used for signing.
// e.g, you can return a key corresponding to the KID.
type KeyFinder interface {
	FindKey(ctx context.Context, header *jws.Header) (key sig.SigningKey, err error)
}

// FindKeyFunc is an adapter to allow the use of ordinary functions as KeyFinder interfaces.
// If f is a function with the appropriate signature, FindKeyFunc(f) is a KeyFinder that calls f.
type FindKeyFunc func(ctx context.Context, header *jws.Header) (key sig.SigningKey, err error)

// FindKey calls f(header).
func (f FindKeyFunc) FindKey(ctx context.Context, header *jws.Header) (sig.SigningKey, error) {
	return f(ctx, header)
}

// AlgorithmVerfier verifies the algorithm used for signing.
type AlgorithmVerfier interface {
	VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error
}

// UnsecureAnyAlgorithm is an AlgorithmVerfier that accepts any algorithm.
var UnsecureAnyAlgorithm = unsecureAnyAlgorithmVerifier{}

type unsecureAnyAlgorithmVerifier struct{}

func (unsecureAnyAlgorithmVerifier) VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error {
	return nil
}

// AllowedAlgorithms is an AlgorithmVerfier that accepts only the specified algorithms.
type AllowedAlgorithms []jwa.SignatureAlgorithm

func (a AllowedAlgorithms) VerifyAlgorithm(ctx context.Context, alg jwa.SignatureAlgorithm) error {
	for _, allowed := range a {
		if alg == allowed {
			return nil
		}
	}
	return errors.New("jwt: signing algorithm is not allowed")
}

// IssuerSubjectVerifier verifies the issuer and the subject.
type IssuerSubjectVerifier interface {
	VerifyIssuer(ctx context.Context, iss, sub string) error
}

// Issuer is a verifier that accepts only the specified issuer.
type Issuer string

func (i Issuer) VerifyIssuer(ctx context.Context, iss, sub string) error {
	if iss != string(i) {
		return fmt.Errorf("jwt: invalid issuer: %s", iss)
	}
	return nil
}

// UnsecureAnyIssuerSubject is an IssuerSubjectVerifier that accepts any issuer and subject.
// This is not recommended.
var UnsecureAnyIssuerSubject = unsecureAnyIssuerSubjectVerifier{}

type unsecureAnyIssuerSubjectVerifier struct{}

func (unsecureAnyIssuerSubjectVerifier) VerifyIssuer(ctx context.Context, iss, sub string) error {
	return nil
}

// AudienceVerifier verifies the audience.
type AudienceVerifier interface {
	VerifyAudience(ctx context.Context, aud []string) error
}

var UnsecureAnyAudience = unsecureAnyAudienceVerifier{}

type unsecureAnyAudienceVerifier struct{}

func (unsecureAnyAudienceVerifier) VerifyAudience(ctx context.Context, aud []string) error {
	return nil
}

// Audience is an AudienceVerifier that accepts only auds containing the
// specified audience.
type Audience string

func (a Audience) VerifyAudience(ctx context.Context, aud []string) error {
	for _, v := range aud {
		if v == string(a) {
			return nil
		}
	}
	return fmt.Errorf("jwt: invalid audience: %v", aud)
}

// DateTimeVerifier verifies the "exp" and "nbf" claims against the
// current time. hasExp/hasNbf report whether the respective claim was
// present in the token; when absent, exp/nbf are the zero time.
type DateTimeVerifier interface {
	VerifyDateTime(ctx context.Context, now, exp, nbf time.Time, hasExp, hasNbf bool) error
}

// UnsecureAnyDateTime is a DateTimeVerifier that performs no time-window
// checks at all. Not recommended.
var UnsecureAnyDateTime = unsecureAnyDateTimeVerifier{}

type unsecureAnyDateTimeVerifier struct{}

func (unsecureAnyDateTimeVerifier) VerifyDateTime(ctx context.Context, now, exp, nbf time.Time, hasExp, hasNbf bool) error {
	return nil
}

// DefaultDateTimeVerifier is a DateTimeVerifier that rejects expired and
// not-yet-valid tokens, allowing ClockSkew of slack in both directions.
// If RequireExpirationTime is set, tokens without an "exp" claim are
// rejected.
type DefaultDateTimeVerifier struct {
	ClockSkew             time.Duration
	RequireExpirationTime bool
}

func (v DefaultDateTimeVerifier) VerifyDateTime(ctx context.Context, now, exp, nbf time.Time, hasExp, hasNbf bool) error {
	if !hasExp {
		if v.RequireExpirationTime {
			return errors.New("jwt: missing exp claim")
		}
	} else if !now.Before(exp.Add(v.ClockSkew)) {
		return errors.New("jwt: token is expired")
	}

	if hasNbf && now.Before(nbf.Add(-v.ClockSkew)) {
		return errors.New("jwt: token is not valid yet")
	}

	return nil
}

// Parser is a JWT parser.
type Parser struct {
	_NamedFieldsRequired struct{}

	KeyFinder             KeyFinder
	AlgorithmVerfier      AlgorithmVerfier
	IssuerSubjectVerifier IssuerSubjectVerifier
	AudienceVerifier      AudienceVerifier

	// DateTimeVerifier verifies the "exp" and "nbf" claims. It is
	// optional; if nil, no time-window check is performed, and the
	// caller is expected to check Token.Claims.ExpirationTime and
	// Token.Claims.NotBefore itself, or compose one in with a JWKSource.
	DateTimeVerifier DateTimeVerifier
}

func (p *Parser) Parse(ctx context.Context, data []byte) (*Token, error) {
	// verify the parser options
	_ = p._NamedFieldsRequired
	if p.KeyFinder == nil || p.AlgorithmVerfier == nil || p.IssuerSubjectVerifier == nil || p.AudienceVerifier == nil {
		return nil, errors.New("jwt: parser is not configured")
	}

	// split to segments
	idx1 := bytes.IndexByte(data, '.')
	if idx1 < 0 {
		return nil, errors.New("jwt: failed to parse: invalid format")
	}
	idx2 := bytes.IndexByte(data[idx1+1:], '.')
	if idx2 < 0 {
		return nil, errors.New("jwt: failed to parse: invalid format")
	}
	idx2 += idx1 + 1
	b64header := data[:idx1]
	b64payload := data[idx1+1 : idx2]
	b64signature := data[idx2+1:]

	// pre-allocate buffer
	size := len(b64header)
	if len(b64payload) > size {
		size = len(b64payload)
	}
	if len(b64signature) > size {
		size = len(b64signature)
	}
	buf := make([]byte, b64.DecodedLen(size))

	// parse header
	n, err := b64.Decode(buf[:cap(buf)], b64header)
	if err != nil {
		return nil, fmt.Errorf("jwt: failed to parse header: %w", err)
	}
	buf = buf[:n]
	var header jws.Header
	if err := header.UnmarshalJSON(buf[:n]); err != nil {
		return nil, fmt.Errorf("jwt: failed to parse header: %w", err)
	}
	if err := p.AlgorithmVerfier.VerifyAlgorithm(ctx, header.Algorithm()); err != nil {
		return nil, fmt.Errorf("jwt: failed to verify algorithm: %w", err)
	}

	// verify signature
	key, err := p.KeyFinder.FindKey(ctx, &header)
	if err != nil {
		return nil, fmt.Errorf("jwt: failed to find key: %w", err)
	}
	n, err = b64.Decode(buf[:cap(buf)], b64signature)
	if err != nil {
		return nil, fmt.Errorf("jwt: failed to parse signature: %w", err)
	}
	buf = buf[:n]
	if err := key.Verify(data[:idx2], buf[:n]); err != nil {
		return nil, fmt.Errorf("jwt: failed to verify signature: %w", err)
	}

	// parse payload
	n, err = b64.Decode(buf[:cap(buf)], b64payload)
	if err != nil {
		return nil, fmt.Errorf("jwt: failed to parse payload: %w", err)
	}
	buf = buf[:n]

	// parse claims
	c, err := p.parseClaims(ctx, buf)
	if err != nil {
		return nil, err
	}
	token := &Token{
		Header: &header,
		Claims: c,
	}
	return token, nil
}

func (p *Parser) parseClaims(ctx context.Context, data []byte) (*Claims, error) {
	now := nowFunc()

	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("jwt: failed to parse claims: %w", err)
	}
	c := &Claims{
		Raw: raw,
	}
	d := jsonutils.NewDecoder("jwt", raw)

	c.Issuer, _ = d.GetString("iss")
	c.Subject, _ = d.GetString("sub")
	if err := p.IssuerSubjectVerifier.VerifyIssuer(ctx, c.Issuer, c.Subject); err != nil {
		return nil, fmt.Errorf("jwt: failed to verify issuer and subject: %w", err)
	}

	// In RFC 7519, the "aud" claim is defined as a string or an array of strings.
	if aud, ok := raw["aud"]; ok {
		switch aud := aud.(type) {
		case []any:
			for _, v := range aud {
				s, ok := v.(string)
				if !ok {
					d.SaveError(fmt.Errorf("jwt: invalid type of aud claim: %T", v))
				}
				c.Audience = append(c.Audience, s)
			}
		case string:
			c.Audience = []string{aud}
		}
	}
	if err := p.AudienceVerifier.VerifyAudience(ctx, c.Audience); err != nil {
		return nil, fmt.Errorf("jwt: failed to verify audience: %w", err)
	}

	exp, hasExp := d.GetTime("exp")
	if hasExp {
		c.ExpirationTime = exp
	}
	nbf, hasNbf := d.GetTime("nbf")
	if hasNbf {
		c.NotBefore = nbf
	}

	c.IssuedAt, _ = d.GetTime("iat")
	c.JWTID, _ = d.GetString("jti")

	if err := d.Err(); err != nil {
		return nil, err
	}

	dtVerifier := p.DateTimeVerifier
	if dtVerifier == nil {
		dtVerifier = UnsecureAnyDateTime
	}
	if err := dtVerifier.VerifyDateTime(ctx, now, exp, nbf, hasExp, hasNbf); err != nil {
		return nil, fmt.Errorf("jwt: failed to verify date and time: %w", err)
	}

	return c, nil
}
