package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/abc12345", "abc12345", true},
		{"https://www.youtube.com/embed/abc12345", "abc12345", true},
		{"https://www.youtube.com/live/abc12345", "abc12345", true},
		{"https://www.youtube.com/watch", "", false},
		{"https://vimeo.com/12345", "", false},
		{"https://example.com/watch?v=abc", "", false},
		{"not a url", "", false},
	}

	for _, tt := range tests {
		id, ok := ExtractVideoID(tt.url)
		assert.Equal(t, tt.wantOK, ok, "url: %q", tt.url)
		assert.Equal(t, tt.wantID, id, "url: %q", tt.url)
	}
}

func TestYouTubeClient_VideoDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "snippet", req.URL.Query().Get("part"))
		assert.Equal(t, "vid42", req.URL.Query().Get("id"))
		assert.Equal(t, "test-key", req.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[{"snippet":{
			"title":"Go Concurrency Patterns",
			"channelTitle":"Google Developers",
			"description":"talk recording",
			"thumbnails":{
				"default":{"url":"https://img.example/default.jpg"},
				"maxres":{"url":"https://img.example/maxres.jpg"}
			}}}]}`)
	}))
	defer server.Close()

	client := NewYouTubeClient("test-key", time.Second)
	client.SetBaseURL(server.URL)

	md, err := client.VideoDetails(context.Background(), "vid42")

	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency Patterns", md.Title)
	assert.Equal(t, "Google Developers", md.Publisher)
	// The largest available thumbnail wins.
	assert.Equal(t, "https://img.example/maxres.jpg", md.Image)
}

func TestYouTubeClient_VideoDetails_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	client := NewYouTubeClient("test-key", time.Second)
	client.SetBaseURL(server.URL)

	_, err := client.VideoDetails(context.Background(), "missing")

	assert.Error(t, err)
}

func TestYouTubeClient_VideoDetails_NoKey(t *testing.T) {
	client := NewYouTubeClient("", time.Second)

	_, err := client.VideoDetails(context.Background(), "vid42")

	assert.Error(t, err)
}
