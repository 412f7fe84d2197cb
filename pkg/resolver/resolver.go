// Package resolver turns share links into media URLs and metadata by asking
// the upstream metadata service.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/vit0-9/dylink_api/models"
	"github.com/vit0-9/dylink_api/pkg/utils"
)

const (
	maxLinkBytes     = 16 << 10
	maxMetadataBytes = 8 << 20
)

var (
	errMalformedLink    = errors.New("upstream returned something that is not an absolute http(s) URL")
	errInvalidMetadata  = errors.New("metadata is not valid JSON")
	errResponseTooLarge = errors.New("response too large")
)

// Resolver holds only read-only configuration and is safe for concurrent use.
type Resolver struct {
	base         *url.URL
	client       *http.Client
	sharePattern *regexp.Regexp
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithSharePattern replaces the pattern used to pick a share link out of
// user text. A nil pattern forwards the input unchanged.
func WithSharePattern(p *regexp.Regexp) Option {
	return func(r *Resolver) { r.sharePattern = p }
}

// New creates a Resolver for the metadata service rooted at base.
func New(base *url.URL, client *http.Client, opts ...Option) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	r := &Resolver{
		base:         base,
		client:       client,
		sharePattern: utils.ShareLinkPattern,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MetadataURL builds the data-mode request URL: <base>?data&url=<link>.
func (r *Resolver) MetadataURL(shareURL string) string {
	return r.upstreamURL("data&url=" + url.QueryEscape(shareURL))
}

// LinkURL builds the link-mode request URL: <base>?url=<link>.
func (r *Resolver) LinkURL(shareURL string) string {
	return r.upstreamURL("url=" + url.QueryEscape(shareURL))
}

func (r *Resolver) upstreamURL(rawQuery string) string {
	u := *r.base
	u.RawQuery = rawQuery
	return u.String()
}

// FetchMetadata asks the metadata service for the video's metadata. The
// object is returned as the service sent it.
func (r *Resolver) FetchMetadata(ctx context.Context, shareRef string) (models.VideoMetadata, error) {
	target := r.MetadataURL(utils.ExtractShareURL(r.sharePattern, shareRef))

	body, err := r.get(ctx, StageMetadata, target, maxMetadataBytes)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, &UpstreamError{Stage: StageMetadata, URL: target, Err: errInvalidMetadata}
	}
	return models.VideoMetadata(body), nil
}

// ResolveURL asks the metadata service for the playable link, then follows
// that link's redirects without a Referer to find where the media lives.
// The two fetches run in sequence.
func (r *Resolver) ResolveURL(ctx context.Context, shareRef string) (*models.Resolution, error) {
	target := r.LinkURL(utils.ExtractShareURL(r.sharePattern, shareRef))

	body, err := r.get(ctx, StageLink, target, maxLinkBytes)
	if err != nil {
		return nil, err
	}

	originalURL := strings.TrimSpace(string(body))
	if !isAbsoluteHTTP(originalURL) {
		return nil, &UpstreamError{Stage: StageLink, URL: target, Err: errMalformedLink}
	}

	finalURL, err := utils.ResolveRedirect(ctx, r.client, originalURL)
	if err != nil {
		upErr := &UpstreamError{Stage: StageFollow, URL: originalURL, Err: err}
		var statusErr *utils.HTTPStatusError
		if errors.As(err, &statusErr) {
			upErr.StatusCode = statusErr.StatusCode
		}
		return nil, upErr
	}

	return &models.Resolution{OriginalURL: originalURL, FinalURL: finalURL}, nil
}

// Resolve runs FetchMetadata and ResolveURL concurrently for the same input.
// If either fails, the errors of both sides are joined.
func (r *Resolver) Resolve(ctx context.Context, shareRef string) (*models.Resolution, models.VideoMetadata, error) {
	var (
		wg      sync.WaitGroup
		res     *models.Resolution
		meta    models.VideoMetadata
		metaErr error
		resErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		meta, metaErr = r.FetchMetadata(ctx, shareRef)
	}()
	go func() {
		defer wg.Done()
		res, resErr = r.ResolveURL(ctx, shareRef)
	}()
	wg.Wait()

	if err := errors.Join(metaErr, resErr); err != nil {
		return nil, nil, err
	}
	return res, meta, nil
}

// get performs a single GET against the metadata service and returns a
// successful body of at most limit bytes. Longer bodies are an error.
func (r *Resolver) get(ctx context.Context, stage Stage, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &UpstreamError{Stage: stage, URL: target, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Stage: stage, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if !utils.IsSuccess(resp.StatusCode) {
		return nil, &UpstreamError{Stage: stage, URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &UpstreamError{Stage: stage, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > limit {
		return nil, &UpstreamError{Stage: stage, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: over %d bytes", errResponseTooLarge, limit)}
	}
	return body, nil
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
