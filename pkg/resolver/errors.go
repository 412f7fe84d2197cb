package resolver

import (
	"fmt"
	"strings"
)

// Stage names the upstream hop a resolution failed at.
type Stage string

const (
	// StageMetadata is the metadata service call in data mode.
	StageMetadata Stage = "metadata"
	// StageLink is the metadata service call that returns the playable link.
	StageLink Stage = "link"
	// StageFollow is the redirect-following fetch of the playable link.
	StageFollow Stage = "follow"
)

// UpstreamError describes a failed upstream hop. StatusCode is zero when the
// hop failed before a response was received.
type UpstreamError struct {
	Stage      Stage
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Stage, e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
