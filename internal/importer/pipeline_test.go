package importer

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfspace/bookshelf/internal/metadata"
	"github.com/shelfspace/bookshelf/internal/textimport"
)

type stubProvider struct {
	mu   sync.Mutex
	seen []string
	errs map[string]error
}

func (p *stubProvider) Fetch(_ context.Context, rawURL string) (*metadata.LinkMetadata, metadata.Source, error) {
	p.mu.Lock()
	p.seen = append(p.seen, rawURL)
	p.mu.Unlock()

	if err := p.errs[rawURL]; err != nil {
		return nil, "", err
	}
	return &metadata.LinkMetadata{Title: "title for " + rawURL, URL: rawURL}, metadata.SourceMicrolink, nil
}

type memorySnapshots struct {
	mu    sync.Mutex
	snaps map[string]*Snapshot
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{snaps: make(map[string]*Snapshot)}
}

func (s *memorySnapshots) Save(userKey string, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[userKey] = snap
	return nil
}

func (s *memorySnapshots) Load(userKey string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps[userKey], nil
}

func (s *memorySnapshots) Delete(userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, userKey)
	return nil
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestPipeline(provider metadata.Provider) *Pipeline {
	resolver := textimport.NewResolver()
	// No shortener domains: resolution is a pure pass-through, zero network.
	resolver.SetDomains(nil)
	enricher := metadata.NewEnricher(provider, 3)
	return NewPipeline(resolver, enricher, newMemorySnapshots(), 50)
}

func TestPipeline_Run(t *testing.T) {
	provider := &stubProvider{}
	p := newTestPipeline(provider)

	text := "1 → First article\nSome context line.\nhttps://example.com/a\n\n" +
		"2 → Second article\nhttps://example.com/b"

	result, err := p.Run(context.Background(), text)

	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	assert.Equal(t, "https://example.com/a", first.URL)
	assert.Equal(t, "https://example.com/a", first.ResolvedURL)
	assert.Equal(t, "First article", first.Title)
	assert.Equal(t, "Some context line.", first.Description)
	assert.True(t, first.Selected)
	require.NotNil(t, first.Metadata)
	assert.Equal(t, "title for https://example.com/a", first.Metadata.Title)

	assert.Equal(t, "Second article", result.Items[1].Title)
	assert.Equal(t, 2, result.Summary.Succeeded)
	assert.Empty(t, result.Warning)
}

func TestPipeline_Run_NoURLs(t *testing.T) {
	p := newTestPipeline(&stubProvider{})

	_, err := p.Run(context.Background(), "just some prose with no links in it")

	assert.ErrorIs(t, err, ErrNoURLs)
}

func TestPipeline_Run_ResolvesShortURLsBeforeEnrichment(t *testing.T) {
	provider := &stubProvider{}
	resolver := textimport.NewResolver()
	resolver.SetClient(&http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		// The resolver lands on the expanded URL after redirects.
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Body:       http.NoBody,
			Request:    req.Clone(req.Context()),
		}
		resp.Request.URL.Host = "example.com"
		resp.Request.URL.Path = "/expanded"
		return resp, nil
	})})
	enricher := metadata.NewEnricher(provider, 3)
	p := NewPipeline(resolver, enricher, newMemorySnapshots(), 50)

	result, err := p.Run(context.Background(), "https://lnkd.in/abc123")

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "https://lnkd.in/abc123", result.Items[0].URL)
	assert.Equal(t, "https://example.com/expanded", result.Items[0].ResolvedURL)
	// Enrichment sees the expanded URL, not the short one.
	assert.Equal(t, []string{"https://example.com/expanded"}, provider.seen)
}

func TestPipeline_Run_PerItemFailureKeepsTheRest(t *testing.T) {
	provider := &stubProvider{errs: map[string]error{
		"https://example.com/broken": assert.AnError,
	}}
	p := newTestPipeline(provider)

	result, err := p.Run(context.Background(), "https://example.com/ok\nhttps://example.com/broken")

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.True(t, result.Items[0].Selected)
	assert.NotNil(t, result.Items[0].Metadata)
	assert.Nil(t, result.Items[1].Metadata)
	assert.NotEmpty(t, result.Items[1].Error)
	assert.Equal(t, 1, result.Summary.Failed)
}

func TestPipeline_Run_TruncatesWithWarning(t *testing.T) {
	provider := &stubProvider{}
	resolver := textimport.NewResolver()
	resolver.SetDomains(nil)
	enricher := metadata.NewEnricher(provider, 3)
	p := NewPipeline(resolver, enricher, newMemorySnapshots(), 2)

	text := "https://example.com/1\nhttps://example.com/2\nhttps://example.com/3"
	result, err := p.Run(context.Background(), text)

	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.NotEmpty(t, result.Warning)
}

func TestPipeline_SnapshotRoundTrip(t *testing.T) {
	p := newTestPipeline(&stubProvider{})

	items := []PreviewItem{{
		ParsedItem:  textimport.ParsedItem{URL: "https://example.com/a", Title: "A"},
		ResolvedURL: "https://example.com/a",
		Selected:    true,
	}}
	require.NoError(t, p.SaveSnapshot("user-1", "Reading list", items))

	snap, err := p.LoadSnapshot("user-1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.Equal(t, "Reading list", snap.ShelfTitle)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "A", snap.Items[0].Title)

	require.NoError(t, p.DiscardSnapshot("user-1"))
	snap, err = p.LoadSnapshot("user-1")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestPipeline_LoadSnapshot_DiscardsOldVersions(t *testing.T) {
	store := newMemorySnapshots()
	resolver := textimport.NewResolver()
	resolver.SetDomains(nil)
	p := NewPipeline(resolver, metadata.NewEnricher(&stubProvider{}, 3), store, 50)

	store.Save("user-1", &Snapshot{Version: SnapshotVersion - 1, ShelfTitle: "stale"})

	snap, err := p.LoadSnapshot("user-1")
	require.NoError(t, err)
	assert.Nil(t, snap)

	// The stale snapshot is gone for good.
	raw, _ := store.Load("user-1")
	assert.Nil(t, raw)
}

func TestPreviewItem_DisplayTitle(t *testing.T) {
	withMeta := PreviewItem{
		ParsedItem:  textimport.ParsedItem{Title: "parsed"},
		ResolvedURL: "https://example.com/x",
		Metadata:    &metadata.LinkMetadata{Title: "fetched"},
	}
	assert.Equal(t, "fetched", withMeta.DisplayTitle())

	parsedOnly := PreviewItem{
		ParsedItem:  textimport.ParsedItem{Title: "parsed"},
		ResolvedURL: "https://example.com/x",
	}
	assert.Equal(t, "parsed", parsedOnly.DisplayTitle())

	bare := PreviewItem{ResolvedURL: "https://example.com/x"}
	assert.Equal(t, "https://example.com/x", bare.DisplayTitle())
}
