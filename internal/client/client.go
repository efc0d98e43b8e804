// Package client holds the HTTP plumbing shared by the provider clients:
// transport construction, response decompression and a bounded retry loop.
package client

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/subseek/subseek/internal/config"
)

// TransportOptions configures NewHTTPClient.
type TransportOptions struct {
	Timeout   time.Duration
	ProxyURL  string
	UserAgent string
	// InsecureTLS disables certificate verification. Off unless a provider is explicitly configured for it.
	InsecureTLS bool
}

// TransportOptionsFromConfig builds transport options from the host configuration.
func TransportOptionsFromConfig(cfg *config.Config, insecureTLS bool) TransportOptions {
	return TransportOptions{
		Timeout:     cfg.Timeout(),
		ProxyURL:    cfg.ProxyConnectionString,
		UserAgent:   cfg.UserAgent,
		InsecureTLS: insecureTLS,
	}
}

// NewHTTPClient creates an HTTP client with optional proxy, transparent
// gzip/brotli/zstd decompression and a per-call timeout.
func NewHTTPClient(opts TransportOptions) *http.Client {
	logger := config.GetLogger()

	// Clone DefaultTransport to preserve its pooling, HTTP/2 and dial timeouts
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", opts.ProxyURL).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	if opts.InsecureTLS {
		logger.Warn().Msg("TLS certificate verification disabled for provider client")
		baseTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = (&config.Config{}).Timeout()
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: newCompressionTransport(baseTransport, opts.UserAgent),
	}
}
