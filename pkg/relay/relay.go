// Package relay re-serves third-party media through this origin. Outbound
// requests carry the platform's own Referer so referrer-based hot-link
// protection lets them through.
package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/vit0-9/dylink_api/pkg/utils"
)

// Permissive CORS values added to every relayed response.
const (
	AllowOrigin  = "*"
	AllowMethods = "GET, HEAD, OPTIONS"
	AllowHeaders = "Range"
)

// hopByHopHeaders apply to a single connection and are never mirrored.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// forwardedRequestHeaders are copied from the caller so players can seek.
var forwardedRequestHeaders = []string{"Range", "If-Range"}

// Relay is stateless apart from its configuration and safe for concurrent use.
type Relay struct {
	client    *http.Client
	referer   string
	userAgent string
}

// New creates a Relay. referer is sent on every outbound request; userAgent
// is used when the caller did not send one.
func New(client *http.Client, referer, userAgent string) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	return &Relay{client: client, referer: referer, userAgent: userAgent}
}

// Open fetches target on behalf of a caller whose request headers are
// inbound. Only HEAD is kept as is, every other method becomes GET.
//
// A non-2xx upstream response is returned as *utils.HTTPStatusError with its
// body already closed. On success the caller owns resp.Body.
func (r *Relay) Open(ctx context.Context, method, target string, inbound http.Header) (*http.Response, error) {
	if method != http.MethodHead {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", target, err)
	}

	req.Header.Set("Referer", r.referer)
	req.Header.Set("User-Agent", lo.CoalesceOrEmpty(inbound.Get("User-Agent"), r.userAgent))
	for _, name := range forwardedRequestHeaders {
		if v := inbound.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if !utils.IsSuccess(resp.StatusCode) {
		resp.Body.Close()
		return nil, &utils.HTTPStatusError{URL: target, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// Forward writes resp's status and headers to w, adds the CORS headers and,
// when withBody is set, streams the body without buffering it.
func Forward(w http.ResponseWriter, resp *http.Response, withBody bool) (int64, error) {
	CopyResponseHeaders(w.Header(), resp.Header)
	SetCORSHeaders(w.Header())
	w.WriteHeader(resp.StatusCode)

	if !withBody {
		return 0, nil
	}
	return io.Copy(w, resp.Body)
}

// CopyResponseHeaders mirrors src into dst, leaving out hop-by-hop headers
// and any header listed in src's Connection header.
func CopyResponseHeaders(dst, src http.Header) {
	skip := hopByHopHeaders
	for _, name := range strings.Split(src.Get("Connection"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			skip = append(skip[:len(skip):len(skip)], http.CanonicalHeaderKey(name))
		}
	}

	for name, values := range lo.OmitByKeys(src, skip) {
		dst[name] = append([]string(nil), values...)
	}
}

// SetCORSHeaders allows any origin to GET the relay and to send Range.
func SetCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
}
