package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Supported proxy schemes:
//   - http://, https:// - CONNECT proxy
//   - socks5://         - SOCKS5 proxy (local DNS resolution)
//   - socks5h://        - SOCKS5 proxy with remote DNS resolution
var supportedProxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true,
}

// ProxyConfig holds parsed proxy configuration
type ProxyConfig struct {
	URL         *url.URL
	Scheme      string
	Host        string
	Port        string
	Username    string
	Password    string
	IsSOCKS     bool
	IsDNSRemote bool // socks5h: resolve DNS on the proxy side
}

// ParseProxyURL validates and parses a proxy URL string.
// Returns nil, nil if proxyURL is empty (no proxy configured).
// A missing scheme defaults to http://.
func ParseProxyURL(proxyURL string) (*ProxyConfig, error) {
	if proxyURL == "" {
		return nil, nil
	}
	if !strings.Contains(proxyURL, "://") {
		proxyURL = "http://" + proxyURL
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !supportedProxySchemes[scheme] {
		return nil, fmt.Errorf("%w: unsupported scheme %q, supported: http, https, socks5, socks5h", ErrInvalidProxy, scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidProxy)
	}
	port := parsed.Port()
	if port == "" {
		switch scheme {
		case "http":
			port = "8080"
		case "https":
			port = "8443"
		default:
			port = "1080"
		}
	}

	cfg := &ProxyConfig{
		URL:         parsed,
		Scheme:      scheme,
		Host:        host,
		Port:        port,
		IsSOCKS:     strings.HasPrefix(scheme, "socks"),
		IsDNSRemote: scheme == "socks5h",
	}
	if parsed.User != nil {
		cfg.Username = parsed.User.Username()
		cfg.Password, _ = parsed.User.Password()
	}
	return cfg, nil
}

// Address returns the proxy address in host:port format
func (p *ProxyConfig) Address() string {
	if p == nil {
		return ""
	}
	return net.JoinHostPort(p.Host, p.Port)
}

// ContextDialer is an interface for dialers that support context
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// timeoutDialer bounds each SOCKS dial with a timeout.
type timeoutDialer struct {
	dialer  proxy.ContextDialer
	timeout time.Duration
}

func (t *timeoutDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	conn, err := t.dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyConnect, err)
	}
	return conn, nil
}

// CreateSOCKSDialer creates a SOCKS5 dialer from cfg for use as
// http.Transport.DialContext.
func CreateSOCKSDialer(cfg *ProxyConfig, timeout time.Duration) (ContextDialer, error) {
	if cfg == nil || !cfg.IsSOCKS {
		return nil, fmt.Errorf("%w: not a SOCKS proxy", ErrInvalidProxy)
	}

	// socks5h behaves as socks5 here: hostnames are passed through to the
	// proxy unresolved.
	proxyURL := &url.URL{Scheme: "socks5", Host: cfg.Address()}
	if cfg.Username != "" {
		proxyURL.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	d, err := proxy.FromURL(proxyURL, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}
	ctxDialer, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("%w: SOCKS dialer does not support contexts", ErrInvalidProxy)
	}
	return &timeoutDialer{dialer: ctxDialer, timeout: timeout}, nil
}
