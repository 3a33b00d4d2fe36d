package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// YouTubeClient fetches video details from the YouTube Data API using a
// server-held API key.
type YouTubeClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewYouTubeClient creates a YouTube Data API client.
func NewYouTubeClient(apiKey string, timeout time.Duration) *YouTubeClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YouTubeClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://www.googleapis.com/youtube/v3",
		apiKey:     apiKey,
	}
}

// SetBaseURL overrides the API endpoint (used by tests).
func (c *YouTubeClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// ExtractVideoID pulls the video ID out of recognized YouTube URL shapes:
// watch, youtu.be, shorts and embed links.
func ExtractVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		return id, id != ""
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com":
	default:
		return "", false
	}

	if u.Path == "/watch" {
		id := u.Query().Get("v")
		return id, id != ""
	}
	for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
		if strings.HasPrefix(u.Path, prefix) {
			id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
			return id, id != ""
		}
	}

	return "", false
}

type youtubeVideoList struct {
	Items []struct {
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// VideoDetails looks up a video's snippet and maps it to LinkMetadata,
// with the channel name as publisher.
func (c *YouTubeClient) VideoDetails(ctx context.Context, videoID string) (*LinkMetadata, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("youtube api key not configured")
	}
	if videoID == "" {
		return nil, fmt.Errorf("empty video id")
	}

	endpoint := fmt.Sprintf("%s/videos?part=snippet&id=%s&key=%s",
		c.baseURL, url.QueryEscape(videoID), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch video details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var list youtubeVideoList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("video not found: %s", videoID)
	}

	snippet := list.Items[0].Snippet
	md := &LinkMetadata{
		Title:       snippet.Title,
		Description: snippet.Description,
		Publisher:   snippet.ChannelTitle,
	}

	// Prefer the largest thumbnail available.
	for _, size := range []string{"maxres", "high", "medium", "default"} {
		if thumb, ok := snippet.Thumbnails[size]; ok && thumb.URL != "" {
			md.Image = thumb.URL
			break
		}
	}

	return md, nil
}
