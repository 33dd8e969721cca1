package jwkset

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/shogo82148/jose-go/jwk"
)

const defaultUserAgent = "https://github.com/shogo82148/jose-go"

// maxBodySize caps how much of the response body URL will read, so a
// misbehaving or malicious server cannot exhaust memory.
const maxBodySize = 10 << 20 // 10MiB

// Doer is an interface for doing an http request, such as [*http.Client].
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// URLConfig configures a URL source.
type URLConfig struct {
	// Doer is used for the HTTP request. If nil, http.DefaultClient is used.
	Doer Doer

	// UserAgent is the value of the User-Agent header.
	// If empty, a default value is used.
	UserAgent string
}

// URL fetches a JWK Set over HTTP GET. It never caches: every call to
// JWKSet performs a request.
type URL struct {
	url       string
	doer      Doer
	userAgent string
}

var _ Source = (*URL)(nil)

// NewURL returns a new URL source that fetches url.
func NewURL(url string, config *URLConfig) *URL {
	if config == nil {
		config = &URLConfig{}
	}
	doer := config.Doer
	if doer == nil {
		doer = http.DefaultClient
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &URL{
		url:       url,
		doer:      doer,
		userAgent: userAgent,
	}
}

// JWKSet implements Source.
func (s *URL) JWKSet(ctx context.Context, force bool) (*jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/jwk-set+json")

	resp, err := s.doer.Do(req)
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{
			Err: fmt.Errorf("unexpected response code: %d", resp.StatusCode),
		}
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, err := parseMediaType(ct)
		if err == nil && !isJSONMediaType(mt) {
			return nil, &ParseError{Err: fmt.Errorf("unexpected content type: %s", ct)}
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &UnavailableError{Err: err}
	}
	if len(data) > maxBodySize {
		return nil, &ParseError{Err: fmt.Errorf("response body exceeds %d bytes", maxBodySize)}
	}

	set, err := jwk.ParseSet(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return set, nil
}
