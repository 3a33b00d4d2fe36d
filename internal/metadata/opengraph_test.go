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

func TestOpenGraphClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head>
			<meta property="og:title" content="OG Title">
			<meta property="og:description" content="OG description">
			<meta property="og:image" content="https://example.com/img.png">
			<meta property="og:site_name" content="Example Site">
			<title>Fallback Title</title>
		</head><body></body></html>`)
	}))
	defer server.Close()

	client := NewOpenGraphClient(time.Second)

	md, source, err := client.Fetch(context.Background(), server.URL+"/page")

	require.NoError(t, err)
	assert.Equal(t, SourceOpenGraph, source)
	assert.Equal(t, "OG Title", md.Title)
	assert.Equal(t, "OG description", md.Description)
	assert.Equal(t, "https://example.com/img.png", md.Image)
	assert.Equal(t, "Example Site", md.Publisher)
}

func TestOpenGraphClient_Fetch_Fallbacks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head>
			<title>Plain Title</title>
			<meta name="description" content="plain description">
		</head><body></body></html>`)
	}))
	defer server.Close()

	client := NewOpenGraphClient(time.Second)

	md, _, err := client.Fetch(context.Background(), server.URL+"/page")

	require.NoError(t, err)
	assert.Equal(t, "Plain Title", md.Title)
	assert.Equal(t, "plain description", md.Description)
	// Hostname stands in for a missing site name.
	assert.Equal(t, "127.0.0.1", md.Publisher)
}

func TestOpenGraphClient_Fetch_NoMetadataIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head></head><body>nothing here</body></html>`)
	}))
	defer server.Close()

	client := NewOpenGraphClient(time.Second)

	_, _, err := client.Fetch(context.Background(), server.URL+"/empty")

	assert.Error(t, err)
}

func TestIsFeedURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/podcast.rss", true},
		{"https://example.com/feed.xml", true},
		{"https://example.com/blog/feed", true},
		{"https://example.com/rss", true},
		{"https://example.com/article", false},
		{"https://example.com/", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFeedURL(tt.url), "url: %q", tt.url)
	}
}
