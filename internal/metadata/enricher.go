package metadata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// quotaErrMessage marks URLs that were never attempted because the
// provider's quota ran out earlier in the run.
const quotaErrMessage = "not processed: link preview quota exhausted"

// BatchSummary describes the outcome of an enrichment run.
type BatchSummary struct {
	Total         int  `json:"total"`
	Succeeded     int  `json:"succeeded"`
	Failed        int  `json:"failed"`
	QuotaExceeded bool `json:"quota_exceeded"`
}

// Enricher produces one Result per URL, routing recognized YouTube URLs
// through the video-details API and everything else through the generic
// link-preview provider. Failures degrade per URL; only quota exhaustion
// halts the whole run.
type Enricher struct {
	preview   Provider
	youtube   *YouTubeClient
	batchSize int
}

// NewEnricher creates an Enricher over the given link-preview provider.
func NewEnricher(preview Provider, batchSize int) *Enricher {
	if batchSize <= 0 {
		batchSize = 3
	}
	return &Enricher{
		preview:   preview,
		batchSize: batchSize,
	}
}

// SetYouTubeClient enables the dedicated video-details path (optional).
func (e *Enricher) SetYouTubeClient(client *YouTubeClient) {
	e.youtube = client
}

// SetBatchSize overrides how many URLs are fetched concurrently per batch.
func (e *Enricher) SetBatchSize(n int) {
	if n > 0 {
		e.batchSize = n
	}
}

// Enrich fetches metadata for a single URL.
func (e *Enricher) Enrich(ctx context.Context, url string) Result {
	var quota atomic.Bool
	return e.enrichOne(ctx, url, &quota)
}

// EnrichAll processes urls in fixed-size concurrent batches. One URL's
// failure never aborts its batch. Once any provider call reports quota
// exhaustion no further preview calls are issued and every URL not yet
// processed ends with a terminal "not processed" error.
func (e *Enricher) EnrichAll(ctx context.Context, urls []string) ([]Result, BatchSummary) {
	results := make([]Result, len(urls))
	var quota atomic.Bool

	for start := 0; start < len(urls); start += e.batchSize {
		if quota.Load() {
			break
		}
		end := start + e.batchSize
		if end > len(urls) {
			end = len(urls)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = e.enrichOne(ctx, urls[i], &quota)
			}(i)
		}
		wg.Wait()
	}

	summary := BatchSummary{Total: len(urls), QuotaExceeded: quota.Load()}
	for i := range results {
		if results[i].URL == "" {
			// Batch loop stopped before reaching this URL.
			results[i] = Failure(urls[i], quotaErrMessage)
		}
		if results[i].OK() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	return results, summary
}

func (e *Enricher) enrichOne(ctx context.Context, url string, quota *atomic.Bool) Result {
	if e.youtube != nil {
		if videoID, ok := ExtractVideoID(url); ok {
			if md, err := e.youtube.VideoDetails(ctx, videoID); err == nil {
				if md.URL == "" {
					md.URL = url
				}
				return Success(url, SourceYouTube, md)
			}
			// A failed video lookup falls through to the generic provider.
			// YouTube failures never flip the run-wide quota flag; only the
			// preview provider's quota sentinel does.
		}
	}

	if quota.Load() {
		return Failure(url, quotaErrMessage)
	}

	md, source, err := e.preview.Fetch(ctx, url)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			quota.Store(true)
			return Failure(url, quotaErrMessage)
		}
		return Failure(url, err.Error())
	}

	return Success(url, source, md)
}
