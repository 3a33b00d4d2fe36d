package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicrolinkClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "https://example.com/article", req.URL.Query().Get("url"))
		assert.Equal(t, "secret", req.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"success","data":{
			"title":"An Article","description":"About things",
			"url":"https://example.com/article","publisher":"Example",
			"image":{"url":"https://example.com/og.png"}}}`)
	}))
	defer server.Close()

	client := NewMicrolinkClient(server.URL, "secret", time.Second)

	md, source, err := client.Fetch(context.Background(), "https://example.com/article")

	require.NoError(t, err)
	assert.Equal(t, SourceMicrolink, source)
	assert.Equal(t, "An Article", md.Title)
	assert.Equal(t, "About things", md.Description)
	assert.Equal(t, "https://example.com/og.png", md.Image)
	assert.Equal(t, "Example", md.Publisher)
}

func TestMicrolinkClient_Fetch_QuotaFromStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewMicrolinkClient(server.URL, "", time.Second)

	_, _, err := client.Fetch(context.Background(), "https://example.com/a")

	assert.True(t, errors.Is(err, ErrQuotaExceeded))
}

func TestMicrolinkClient_Fetch_QuotaFromBodyCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"fail","code":"TOO_MANY_REQUESTS"}`)
	}))
	defer server.Close()

	client := NewMicrolinkClient(server.URL, "", time.Second)

	_, _, err := client.Fetch(context.Background(), "https://example.com/a")

	assert.True(t, errors.Is(err, ErrQuotaExceeded))
}

func TestMicrolinkClient_Fetch_GenericFailureIsNotQuota(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"status":"fail","code":"EINVALURL"}`)
	}))
	defer server.Close()

	client := NewMicrolinkClient(server.URL, "", time.Second)

	_, _, err := client.Fetch(context.Background(), "https://example.com/a")

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrQuotaExceeded))
}

func TestMicrolinkClient_Fetch_FallsBackToLogoImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"success","data":{
			"title":"No OG Image","logo":{"url":"https://example.com/logo.png"}}}`)
	}))
	defer server.Close()

	client := NewMicrolinkClient(server.URL, "", time.Second)

	md, _, err := client.Fetch(context.Background(), "https://example.com/a")

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/logo.png", md.Image)
	// The original URL stands in when the API returns none.
	assert.Equal(t, "https://example.com/a", md.URL)
}
