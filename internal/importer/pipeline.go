package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/shelfspace/bookshelf/internal/metadata"
	"github.com/shelfspace/bookshelf/internal/textimport"
)

// ErrNoURLs is returned when the pasted text contains nothing importable.
var ErrNoURLs = errors.New("no URLs found in text")

// PreviewItem is one row of the import preview: the parsed context merged
// with the resolved URL and whatever metadata enrichment produced.
type PreviewItem struct {
	textimport.ParsedItem
	ResolvedURL string                 `json:"resolved_url"`
	Source      metadata.Source        `json:"source,omitempty"`
	Metadata    *metadata.LinkMetadata `json:"metadata,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Selected    bool                   `json:"selected"`
}

// DisplayTitle picks the best available title for an item: fetched
// metadata first, then the parsed context, then the URL itself.
func (p PreviewItem) DisplayTitle() string {
	if p.Metadata != nil && p.Metadata.Title != "" {
		return p.Metadata.Title
	}
	if p.Title != "" {
		return p.Title
	}
	return p.ResolvedURL
}

// RunResult is the preview produced by one full pipeline run.
type RunResult struct {
	Items          []PreviewItem         `json:"items"`
	Warning        string                `json:"warning,omitempty"`
	FailedResolves []string              `json:"failed_resolves,omitempty"`
	Summary        metadata.BatchSummary `json:"summary"`
}

// Pipeline runs pasted text through extraction, short-URL resolution and
// metadata enrichment, and persists preview snapshots so an interrupted
// import can be resumed.
type Pipeline struct {
	resolver  *textimport.Resolver
	enricher  *metadata.Enricher
	snapshots SnapshotStore
	maxItems  int
}

// NewPipeline wires a Pipeline. The snapshot store is required; pass the
// database-backed store in production and a fake in tests.
func NewPipeline(resolver *textimport.Resolver, enricher *metadata.Enricher, snapshots SnapshotStore, maxItems int) *Pipeline {
	if maxItems <= 0 {
		maxItems = 50
	}
	return &Pipeline{
		resolver:  resolver,
		enricher:  enricher,
		snapshots: snapshots,
		maxItems:  maxItems,
	}
}

// Run executes the full import flow over text and returns the preview.
// Empty input (no URLs) moves the machine back to input and returns
// ErrNoURLs; every other per-URL failure is carried inside the result.
func (p *Pipeline) Run(ctx context.Context, text string) (*RunResult, error) {
	m := NewMachine()
	if err := m.Transition(StateParsing); err != nil {
		return nil, err
	}

	parsed := textimport.ParseTextWithContext(text)
	if len(parsed) == 0 {
		m.Transition(StateInput)
		return nil, ErrNoURLs
	}
	parsed, warning := textimport.ValidateParseResults(parsed, p.maxItems)

	if err := m.Transition(StateResolving); err != nil {
		return nil, err
	}
	urls := make([]string, len(parsed))
	for i, item := range parsed {
		urls[i] = item.URL
	}
	resolved := p.resolver.ResolveAll(ctx, urls)

	if err := m.Transition(StateMetadata); err != nil {
		return nil, err
	}
	targets := make([]string, len(parsed))
	for i, item := range parsed {
		targets[i] = resolved.Resolved[item.URL]
		if targets[i] == "" {
			targets[i] = item.URL
		}
	}
	results, summary := p.enricher.EnrichAll(ctx, targets)

	if err := m.Transition(StatePreview); err != nil {
		return nil, err
	}
	items := make([]PreviewItem, len(parsed))
	for i, item := range parsed {
		items[i] = PreviewItem{
			ParsedItem:  item,
			ResolvedURL: targets[i],
			Source:      results[i].Source,
			Metadata:    results[i].Metadata,
			Error:       results[i].Err,
			Selected:    true,
		}
	}

	return &RunResult{
		Items:          items,
		Warning:        warning,
		FailedResolves: resolved.Failed,
		Summary:        summary,
	}, nil
}

// SaveSnapshot persists the preview for later resumption, stamping the
// current payload version.
func (p *Pipeline) SaveSnapshot(userKey, shelfTitle string, items []PreviewItem) error {
	snap := &Snapshot{
		Version:    SnapshotVersion,
		ShelfTitle: shelfTitle,
		Items:      items,
	}
	if err := p.snapshots.Save(userKey, snap); err != nil {
		return fmt.Errorf("saving import snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the pending snapshot for userKey, or nil when none
// exists. Snapshots written by an older payload version are deleted and
// treated as absent.
func (p *Pipeline) LoadSnapshot(userKey string) (*Snapshot, error) {
	snap, err := p.snapshots.Load(userKey)
	if err != nil {
		return nil, fmt.Errorf("loading import snapshot: %w", err)
	}
	if snap == nil {
		return nil, nil
	}
	if snap.Version != SnapshotVersion {
		_ = p.snapshots.Delete(userKey)
		return nil, nil
	}
	return snap, nil
}

// DiscardSnapshot removes the pending snapshot for userKey, if any.
func (p *Pipeline) DiscardSnapshot(userKey string) error {
	return p.snapshots.Delete(userKey)
}
