package textimport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Hostnames of known link shorteners. A URL is only resolved over the
// network when its host matches one of these exactly or as a subdomain.
var shortenerDomains = []string{
	"lnkd.in",
	"bit.ly",
	"t.co",
	"tinyurl.com",
	"goo.gl",
	"ow.ly",
	"is.gd",
	"buff.ly",
	"j.mp",
	"rb.gy",
	"short.link",
}

const resolverUserAgent = "Bookshelf/1.0 (+https://github.com/shelfspace/bookshelf)"

// ResolveResult maps each input URL to its final destination, plus the
// short URLs that resolution could not improve on.
type ResolveResult struct {
	Resolved map[string]string `json:"resolved"`
	Failed   []string          `json:"failed"`
}

// Resolver expands shortened URLs by following redirects. Resolution is
// strictly best-effort: a URL that cannot be resolved within the timeout
// is returned unchanged, never as an error.
type Resolver struct {
	client      *http.Client
	domains     []string
	timeout     time.Duration
	concurrency int
}

// NewResolver creates a Resolver with the default shortener list, a 5
// second per-request timeout and a chunk size of 5 concurrent requests.
func NewResolver() *Resolver {
	return &Resolver{
		client:      &http.Client{},
		domains:     shortenerDomains,
		timeout:     5 * time.Second,
		concurrency: 5,
	}
}

// SetTimeout overrides the per-request resolution timeout.
func (r *Resolver) SetTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// SetConcurrency overrides how many URLs are resolved in parallel per chunk.
func (r *Resolver) SetConcurrency(n int) {
	if n > 0 {
		r.concurrency = n
	}
}

// SetClient overrides the HTTP client (used by tests).
func (r *Resolver) SetClient(c *http.Client) {
	if c != nil {
		r.client = c
	}
}

// SetDomains overrides the shortener allow-list (used by tests).
func (r *Resolver) SetDomains(domains []string) {
	r.domains = domains
}

// IsShortURL reports whether raw's hostname matches a known shortener
// domain, either exactly or as a subdomain. A shortener domain appearing
// only in the path or query does not count.
func (r *Resolver) IsShortURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range r.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Resolve follows redirects for a shortened URL and returns the final
// destination. Non-shortened URLs are returned unchanged with zero network
// calls. A HEAD request is tried first to avoid downloading bodies; on a
// non-timeout failure a single GET retry is made with a fresh timeout.
func (r *Resolver) Resolve(ctx context.Context, raw string) string {
	if !r.IsShortURL(raw) {
		return raw
	}

	final, err := r.follow(ctx, http.MethodHead, raw)
	if err == nil {
		return final
	}

	// Timed-out requests are not retried; the destination is unreachable.
	if !errors.Is(err, context.DeadlineExceeded) {
		if final, err = r.follow(ctx, http.MethodGet, raw); err == nil {
			return final
		}
	}

	log.Printf("WARNING: could not resolve short URL %s: %v", raw, err)
	return raw
}

// ResolveAll resolves urls in sequential chunks of the configured
// concurrency. Within a chunk all requests run in parallel; chunk i+1 does
// not start before chunk i has fully settled. A URL is reported as failed
// when it was classified as shortened but resolution made no progress.
func (r *Resolver) ResolveAll(ctx context.Context, urls []string) ResolveResult {
	result := ResolveResult{Resolved: make(map[string]string, len(urls))}

	for start := 0; start < len(urls); start += r.concurrency {
		end := start + r.concurrency
		if end > len(urls) {
			end = len(urls)
		}
		chunk := urls[start:end]

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, u := range chunk {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				resolved := r.Resolve(ctx, u)
				mu.Lock()
				result.Resolved[u] = resolved
				mu.Unlock()
			}(u)
		}
		wg.Wait()
	}

	for _, u := range urls {
		if r.IsShortURL(u) && result.Resolved[u] == u {
			result.Failed = append(result.Failed, u)
		}
	}

	return result
}

func (r *Resolver) follow(ctx context.Context, method, raw string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, raw, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", resolverUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return resp.Request.URL.String(), nil
}
