package utils

import (
	"crypto/tls"
	"math/rand/v2"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// defaultUserAgents is a list of common browser User-Agent strings.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// GetRandomUserAgent selects a User-Agent string randomly from the predefined list.
func GetRandomUserAgent() string {
	return defaultUserAgents[rand.IntN(len(defaultUserAgents))]
}

// ClientOptions tunes the clients built by NewHTTPClient.
type ClientOptions struct {
	// Timeout bounds the whole exchange including reading the body. Zero means none.
	Timeout time.Duration
	// HeaderTimeout bounds the wait for response headers. Zero means none.
	HeaderTimeout time.Duration
	// Passthrough disables transparent gzip so bodies and Content-Length arrive untouched.
	Passthrough bool
}

// NewTransport creates a transport with browser-like connection settings.
func NewTransport(opts ClientOptions) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: opts.HeaderTimeout,
		DisableCompression:    opts.Passthrough,
		ForceAttemptHTTP2:     true,
	}
}

// NewHTTPClient creates a client without a cookie jar. Clients built here are
// shared between requests, so they must not carry per-request state.
func NewHTTPClient(opts ClientOptions) *http.Client {
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: NewTransport(opts),
	}
}

// NewRedirectFollower derives a single-use client from base. It shares base's
// transport and timeout, keeps cookies only for the lifetime of the returned
// client, and never sends a Referer header on any hop.
func NewRedirectFollower(base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}

	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}) // error is always nil

	return &http.Client{
		Timeout:       base.Timeout,
		Transport:     base.Transport,
		Jar:           jar,
		CheckRedirect: stripReferer,
	}
}

// stripReferer mirrors the default policy of at most 10 redirects and removes
// the Referer that net/http adds to each redirected request.
func stripReferer(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errTooManyRedirects
	}
	req.Header.Del("Referer")
	return nil
}
