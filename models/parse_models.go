package models

import "encoding/json"

// VideoMetadata is the upstream metadata document (desc, nickname,
// digg_count, ...), passed through byte for byte after a validity check.
// Key order and number precision are therefore whatever the upstream sent.
type VideoMetadata = json.RawMessage

// Resolution is the result of following a share link to its media file.
type Resolution struct {
	// OriginalURL is the link returned by the metadata service. It usually
	// redirects and is subject to hot-link protection.
	OriginalURL string `json:"originalUrl"`
	// FinalURL is where OriginalURL lands after every redirect.
	FinalURL string `json:"finalUrl"`
}

// ResolveResponse combines both resolution modes in one payload.
type ResolveResponse struct {
	Resolution
	// ProxyURL is a same-origin relay path for OriginalURL, playable in a browser.
	ProxyURL string        `json:"proxyUrl"`
	Metadata VideoMetadata `json:"metadata"`
}
