package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// OpenGraphClient scrapes OpenGraph meta tags directly from the target
// page. It serves as the link-preview provider when no external preview
// API is configured.
type OpenGraphClient struct {
	httpClient *http.Client
	maxBody    int64
}

const opengraphUserAgent = "Bookshelf/1.0 (+https://github.com/shelfspace/bookshelf)"

// NewOpenGraphClient creates an OpenGraph scraping client.
func NewOpenGraphClient(timeout time.Duration) *OpenGraphClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenGraphClient{
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    512 * 1024, // meta tags live in <head>; no need to read more
	}
}

// Fetch downloads the page and extracts og: meta tags, with <title> and
// meta description as fallbacks.
func (c *OpenGraphClient) Fetch(ctx context.Context, rawURL string) (*LinkMetadata, Source, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, SourceOpenGraph, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", opengraphUserAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, SourceOpenGraph, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, SourceOpenGraph, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, SourceOpenGraph, fmt.Errorf("parse html: %w", err)
	}

	md := &LinkMetadata{
		Title:       metaProperty(doc, "og:title"),
		Description: metaProperty(doc, "og:description"),
		Image:       metaProperty(doc, "og:image"),
		Publisher:   metaProperty(doc, "og:site_name"),
		URL:         rawURL,
	}

	if md.Title == "" {
		md.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if md.Description == "" {
		md.Description = metaName(doc, "description")
	}
	if md.Publisher == "" {
		if u, err := url.Parse(rawURL); err == nil {
			md.Publisher = u.Hostname()
		}
	}

	if md.Title == "" && md.Description == "" {
		return nil, SourceOpenGraph, fmt.Errorf("no usable metadata at %s", rawURL)
	}

	return md, SourceOpenGraph, nil
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaName(doc *goquery.Document, name string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First().Attr("content")
	return strings.TrimSpace(content)
}
