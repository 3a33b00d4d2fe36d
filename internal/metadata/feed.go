package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedAwareProvider routes feed-shaped URLs (podcast RSS, Atom) through a
// feed parser and everything else through the wrapped provider.
type FeedAwareProvider struct {
	inner  Provider
	parser *gofeed.Parser
}

// NewFeedAwareProvider wraps inner with RSS/Atom handling.
func NewFeedAwareProvider(inner Provider) *FeedAwareProvider {
	parser := gofeed.NewParser()
	parser.UserAgent = opengraphUserAgent
	return &FeedAwareProvider{inner: inner, parser: parser}
}

// IsFeedURL is a path heuristic for RSS/Atom/podcast feed URLs.
func IsFeedURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	switch {
	case strings.HasSuffix(path, ".rss"), strings.HasSuffix(path, ".atom"), strings.HasSuffix(path, ".xml"):
		return true
	case strings.HasSuffix(path, "/feed"), strings.HasSuffix(path, "/feed/"), strings.HasSuffix(path, "/rss"):
		return true
	}
	return false
}

// Fetch parses feed URLs with gofeed and delegates the rest. A feed that
// fails to parse falls back to the wrapped provider rather than erroring.
func (p *FeedAwareProvider) Fetch(ctx context.Context, rawURL string) (*LinkMetadata, Source, error) {
	if !IsFeedURL(rawURL) {
		return p.inner.Fetch(ctx, rawURL)
	}

	feed, err := p.parser.ParseURLWithContext(rawURL, ctx)
	if err != nil || feed == nil {
		return p.inner.Fetch(ctx, rawURL)
	}

	md := &LinkMetadata{
		Title:       feed.Title,
		Description: feed.Description,
		URL:         rawURL,
	}
	if feed.Image != nil {
		md.Image = feed.Image.URL
	}
	if len(feed.Authors) > 0 && feed.Authors[0] != nil {
		md.Publisher = feed.Authors[0].Name
	}
	if md.Title == "" {
		return nil, SourceFeed, fmt.Errorf("feed has no title: %s", rawURL)
	}

	return md, SourceFeed, nil
}
