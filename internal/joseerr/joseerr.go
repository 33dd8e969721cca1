// Package joseerr defines the error taxonomy shared by every subsystem of
// the JOSE core. It mirrors the way [github.com/shogo82148/jose-go/internal/jsonutils]
// centralizes its own error shapes: each kind is a small concrete type so
// callers can use [errors.As] instead of matching on message text.
package joseerr

import "fmt"

// ParseError is malformed input: bad Base64URL, bad JSON, a missing
// required member, or an oversized header.
type ParseError struct {
	Pkg string
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Pkg, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Pkg, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AlgorithmUnsupportedError is an identifier not in the registry, or not
// supported by the chosen provider for the given key.
type AlgorithmUnsupportedError struct {
	Pkg string
	Alg string
	Msg string
}

func (e *AlgorithmUnsupportedError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Pkg, e.Msg)
	}
	return fmt.Sprintf("%s: algorithm %q is not supported", e.Pkg, e.Alg)
}

// KeyLengthError is a CEK or key whose size is inconsistent with its alg/enc.
type KeyLengthError struct {
	Pkg string
	Msg string
}

func (e *KeyLengthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pkg, e.Msg)
}

// InvalidKeyError is a curve point off-curve, RSA CRT parameters that don't
// match (n,d), or a symmetric key of the wrong size.
type InvalidKeyError struct {
	Pkg string
	Msg string
	Err error
}

func (e *InvalidKeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Pkg, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Pkg, e.Msg)
}

func (e *InvalidKeyError) Unwrap() error { return e.Err }

// DecryptionError is reported generically (tag mismatch or unwrap failure)
// to avoid turning a padding/MAC oracle into a distinguishable error.
type DecryptionError struct {
	Pkg string
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("%s: decryption failed", e.Pkg)
}

// SignatureInvalidError is returned when a verifier call returns false.
type SignatureInvalidError struct {
	Pkg string
}

func (e *SignatureInvalidError) Error() string {
	return fmt.Sprintf("%s: signature is invalid", e.Pkg)
}

// RemoteKeySourceError wraps a transient transport failure from a JWK source.
type RemoteKeySourceError struct {
	Msg string
	Err error
}

func (e *RemoteKeySourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jwkset: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("jwkset: %s", e.Msg)
}

func (e *RemoteKeySourceError) Unwrap() error { return e.Err }

// RateLimitReachedError is returned when a forced refresh is denied by the
// rate-limiting bucket.
type RateLimitReachedError struct {
	Msg string
}

func (e *RateLimitReachedError) Error() string {
	return fmt.Sprintf("jwkset: rate limit reached: %s", e.Msg)
}

// JWKSetUnavailableError is a transient source failure, recoverable by the
// outage-tolerant decorator.
type JWKSetUnavailableError struct {
	Msg string
	Err error
}

func (e *JWKSetUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jwkset: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("jwkset: %s", e.Msg)
}

func (e *JWKSetUnavailableError) Unwrap() error { return e.Err }

// JWKSetParseError is a fatal (non-retryable) failure to parse a fetched JWK set.
type JWKSetParseError struct {
	Msg string
	Err error
}

func (e *JWKSetParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jwkset: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("jwkset: %s", e.Msg)
}

func (e *JWKSetParseError) Unwrap() error { return e.Err }

// IllegalStateError is an operation called while the JOSE object is in the
// wrong state, such as serializing a JWS before it has been signed.
type IllegalStateError struct {
	Pkg   string
	State string
	Op    string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("%s: cannot %s in state %s", e.Pkg, e.Op, e.State)
}
