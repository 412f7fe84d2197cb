package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var errTooManyRedirects = errors.New("stopped after 10 redirects")

// HTTPStatusError reports an upstream response with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.URL, e.StatusCode)
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// ResolveRedirect follows HTTP redirects for a given URL and returns the final
// destination URL. No Referer is sent on the first request or on any hop.
// The body of the final response is discarded unread.
func ResolveRedirect(ctx context.Context, client *http.Client, initialURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, initialURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", initialURL, err)
	}
	req.Header.Set("User-Agent", GetRandomUserAgent())

	resp, err := NewRedirectFollower(client).Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed for %s: %w", initialURL, err)
	}
	// Closing without draining drops the connection, which is what we want
	// when the destination is a large media file.
	defer resp.Body.Close()

	// The final URL after all redirects will be in resp.Request.URL
	finalURL := resp.Request.URL.String()

	if !IsSuccess(resp.StatusCode) {
		return finalURL, &HTTPStatusError{URL: finalURL, StatusCode: resp.StatusCode}
	}
	return finalURL, nil
}
