package metadata

import (
	"context"
	"errors"
)

// LinkMetadata contains the preview fields fetched for a URL.
type LinkMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
}

// Source identifies which provider produced a successful result.
type Source string

const (
	SourceYouTube   Source = "youtube"
	SourceMicrolink Source = "microlink"
	SourceOpenGraph Source = "opengraph"
	SourceFeed      Source = "feed"
)

// ErrQuotaExceeded is the sentinel a provider returns when the external
// service reports its call budget is exhausted. It is the only error that
// changes control flow for URLs other than the one that raised it.
var ErrQuotaExceeded = errors.New("link preview quota exceeded")

// Provider fetches preview metadata for a single URL.
type Provider interface {
	Fetch(ctx context.Context, rawURL string) (*LinkMetadata, Source, error)
}

// Result is the outcome of enriching one URL. Exactly one of Metadata and
// Err is set; use the Success and Failure constructors to keep the two
// cases mutually exclusive.
type Result struct {
	URL      string        `json:"url"`
	Source   Source        `json:"source,omitempty"`
	Metadata *LinkMetadata `json:"metadata,omitempty"`
	Err      string        `json:"error,omitempty"`
}

// Success builds a result carrying fetched metadata.
func Success(url string, source Source, md *LinkMetadata) Result {
	return Result{URL: url, Source: source, Metadata: md}
}

// Failure builds a result carrying only an error message.
func Failure(url, reason string) Result {
	return Result{URL: url, Err: reason}
}

// OK reports whether the result carries metadata.
func (r Result) OK() bool {
	return r.Metadata != nil
}
