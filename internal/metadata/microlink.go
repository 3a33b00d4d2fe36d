package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// MicrolinkClient fetches link previews from a microlink-style API.
type MicrolinkClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewMicrolinkClient creates a link-preview client. apiKey may be empty
// for the free tier.
func NewMicrolinkClient(baseURL, apiKey string, timeout time.Duration) *MicrolinkClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MicrolinkClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type microlinkResponse struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Data   struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Publisher   string `json:"publisher"`
		Image       struct {
			URL string `json:"url"`
		} `json:"image"`
		Logo struct {
			URL string `json:"url"`
		} `json:"logo"`
	} `json:"data"`
}

// Fetch requests preview metadata for rawURL. Quota exhaustion is reported
// as ErrQuotaExceeded so callers can stop the whole run.
func (c *MicrolinkClient) Fetch(ctx context.Context, rawURL string) (*LinkMetadata, Source, error) {
	endpoint := fmt.Sprintf("%s/?url=%s", c.baseURL, url.QueryEscape(rawURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, SourceMicrolink, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, SourceMicrolink, fmt.Errorf("fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, SourceMicrolink, fmt.Errorf("microlink: %w", ErrQuotaExceeded)
	}

	var body microlinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, SourceMicrolink, fmt.Errorf("decode response: %w", err)
	}

	// The API also signals rate limiting in the body with a 200-family code.
	if body.Code == "TOO_MANY_REQUESTS" || body.Code == "ERATE" {
		return nil, SourceMicrolink, fmt.Errorf("microlink: %w", ErrQuotaExceeded)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "success" {
		return nil, SourceMicrolink, fmt.Errorf("unexpected status: %d (%s)", resp.StatusCode, body.Code)
	}

	md := &LinkMetadata{
		Title:       body.Data.Title,
		Description: body.Data.Description,
		Image:       body.Data.Image.URL,
		URL:         body.Data.URL,
		Publisher:   body.Data.Publisher,
	}
	if md.Image == "" {
		md.Image = body.Data.Logo.URL
	}
	if md.URL == "" {
		md.URL = rawURL
	}

	return md, SourceMicrolink, nil
}
