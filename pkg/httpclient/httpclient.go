// Package httpclient builds the pooled HTTP client shared by every scan
// task. Redirects are never followed: a redirect is itself a finding and
// drives directory recursion.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/waftester/dirhunter/pkg/duration"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: duration.HTTPProbing)
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification
	InsecureSkipVerify bool

	// Proxy is an http(s):// or socks5(h):// proxy URL (optional)
	Proxy string

	// UserAgent is set on every request when non-empty
	UserAgent string

	// Headers are added to every request
	Headers http.Header

	// MaxConnsPerHost bounds connections per host (default: 100)
	MaxConnsPerHost int
}

// New creates an HTTP client from cfg. It fails only when the proxy URL
// cannot be used.
func New(cfg Config) (*http.Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = duration.HTTPProbing
	}
	if cfg.MaxConnsPerHost == 0 {
		cfg.MaxConnsPerHost = 100
	}

	dialer := &net.Dialer{
		Timeout:   duration.DialTimeout,
		KeepAlive: duration.KeepAlive,
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxConnsPerHost * 2,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     duration.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: duration.TLSHandshake,
		DialContext:         dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in via -k
		},
	}

	proxyCfg, err := ParseProxyURL(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	if proxyCfg != nil {
		if proxyCfg.IsSOCKS {
			socks, err := CreateSOCKSDialer(proxyCfg, duration.DialTimeout)
			if err != nil {
				return nil, err
			}
			transport.DialContext = socks.DialContext
		} else {
			transport.Proxy = http.ProxyURL(proxyCfg.URL)
		}
	}

	var rt http.RoundTripper = transport
	if cfg.UserAgent != "" || len(cfg.Headers) > 0 {
		rt = &headerTransport{
			base:      transport,
			userAgent: cfg.UserAgent,
			headers:   cfg.Headers.Clone(),
		}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// HeadersFromMap converts "Name: value" pairs from configuration into an
// http.Header with canonical keys.
func HeadersFromMap(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

// headerTransport sets the User-Agent and custom headers on each request.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   http.Header
}

// RoundTrip implements http.RoundTripper.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for key, vals := range t.headers {
		r.Header.Del(key)
		for _, v := range vals {
			r.Header.Add(key, v)
		}
	}
	if t.userAgent != "" && t.headers.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.userAgent)
	}
	if host := t.headers.Get("Host"); host != "" {
		r.Host = host
	}
	return t.base.RoundTrip(r)
}
