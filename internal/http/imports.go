package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfspace/bookshelf/internal/auth"
	"github.com/shelfspace/bookshelf/internal/config"
	"github.com/shelfspace/bookshelf/internal/entities"
	"github.com/shelfspace/bookshelf/internal/importer"
	"github.com/shelfspace/bookshelf/internal/metadata"
	"github.com/shelfspace/bookshelf/internal/tasks"
	"github.com/shelfspace/bookshelf/internal/textimport"
)

// ImportController drives the paste-text-to-shelf flow. The staged
// endpoints (parse, resolve, metadata) expose the pipeline one step at a
// time for interactive clients; run executes all of it in one call.
type ImportController struct {
	resolver   *textimport.Resolver
	enricher   *metadata.Enricher
	pipeline   *importer.Pipeline
	shelves    ShelfStore
	sessions   *auth.SessionManager
	taskClient *tasks.Client
	cfg        config.Import
}

func NewImportController(resolver *textimport.Resolver, enricher *metadata.Enricher, pipeline *importer.Pipeline, shelves ShelfStore, cfg config.Import) *ImportController {
	return &ImportController{
		resolver: resolver,
		enricher: enricher,
		pipeline: pipeline,
		shelves:  shelves,
		cfg:      cfg,
	}
}

// SetSessionManager enables per-visitor snapshot keys (optional).
func (ic *ImportController) SetSessionManager(sm *auth.SessionManager) {
	ic.sessions = sm
}

// SetTaskClient enables background re-enrichment of created items (optional).
func (ic *ImportController) SetTaskClient(client *tasks.Client) {
	ic.taskClient = client
}

type parseRequest struct {
	Text string `json:"text" binding:"required"`
}

type resolveRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

type metadataRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

type runRequest struct {
	Text       string `json:"text" binding:"required"`
	ShelfTitle string `json:"shelf_title"`
}

type createRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description string                 `json:"description"`
	Items       []importer.PreviewItem `json:"items" binding:"required"`
}

// Parse extracts URLs and their surrounding context from pasted text.
func (ic *ImportController) Parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	items := textimport.ParseTextWithContext(req.Text)
	if len(items) == 0 {
		respondBadRequest(c, "no URLs found in text")
		return
	}
	items, warning := textimport.ValidateParseResults(items, ic.cfg.MaxItems)

	c.JSON(http.StatusOK, gin.H{
		"items":   items,
		"count":   len(items),
		"warning": warning,
	})
}

// Resolve expands shortened URLs. Unrecognized URLs pass through
// unchanged; resolution failures land in the failed list, never errors.
func (ic *ImportController) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "urls is required")
		return
	}
	if len(req.URLs) == 0 {
		respondBadRequest(c, "urls cannot be empty")
		return
	}
	if len(req.URLs) > ic.cfg.MaxItems {
		respondBadRequest(c, "too many urls")
		return
	}

	result := ic.resolver.ResolveAll(c.Request.Context(), req.URLs)
	c.JSON(http.StatusOK, result)
}

// Metadata fetches link previews for a capped batch of URLs.
func (ic *ImportController) Metadata(c *gin.Context) {
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "urls is required")
		return
	}
	if len(req.URLs) == 0 {
		respondBadRequest(c, "urls cannot be empty")
		return
	}
	if len(req.URLs) > ic.cfg.MetadataMaxURLs {
		respondBadRequest(c, "too many urls")
		return
	}

	results, summary := ic.enricher.EnrichAll(c.Request.Context(), req.URLs)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"summary": summary,
	})
}

// Run executes the full pipeline over pasted text and stashes the preview
// as a snapshot so it survives a signup redirect.
func (ic *ImportController) Run(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}

	result, err := ic.pipeline.Run(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, importer.ErrNoURLs) {
			respondBadRequest(c, "no URLs found in text")
			return
		}
		respondInternalError(c, err, "import run")
		return
	}

	if err := ic.pipeline.SaveSnapshot(ic.snapshotKey(c), req.ShelfTitle, result.Items); err != nil {
		// Preview still works without the snapshot; losing it only costs
		// the resume-after-signup path.
		respondInternalError(c, err, "save snapshot")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":  importer.StatePreview,
		"result": result,
	})
}

// GetSnapshot returns the visitor's pending import, if any.
func (ic *ImportController) GetSnapshot(c *gin.Context) {
	snap, err := ic.pipeline.LoadSnapshot(ic.snapshotKey(c))
	if err != nil {
		respondInternalError(c, err, "load snapshot")
		return
	}
	if snap == nil {
		respondNotFound(c, "snapshot")
		return
	}
	c.JSON(http.StatusOK, snap)
}

type snapshotUpdateRequest struct {
	ShelfTitle string                 `json:"shelf_title"`
	Items      []importer.PreviewItem `json:"items" binding:"required"`
}

// UpdateSnapshot replaces the visitor's pending import so preview edits
// (deselections, title changes) survive a page load.
func (ic *ImportController) UpdateSnapshot(c *gin.Context) {
	var req snapshotUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "items is required")
		return
	}

	if err := ic.pipeline.SaveSnapshot(ic.snapshotKey(c), req.ShelfTitle, req.Items); err != nil {
		respondInternalError(c, err, "update snapshot")
		return
	}
	respondSuccess(c, "snapshot saved")
}

// DiscardSnapshot drops the visitor's pending import.
func (ic *ImportController) DiscardSnapshot(c *gin.Context) {
	if err := ic.pipeline.DiscardSnapshot(ic.snapshotKey(c)); err != nil {
		respondInternalError(c, err, "discard snapshot")
		return
	}
	respondSuccess(c, "snapshot discarded")
}

// Create materializes the selected preview items into a new shelf.
func (ic *ImportController) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and items are required")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondBadRequest(c, "title is required")
		return
	}

	var items []entities.Item
	for _, preview := range req.Items {
		if !preview.Selected {
			continue
		}
		items = append(items, previewToItem(preview))
	}
	if len(items) == 0 {
		respondBadRequest(c, "no items selected")
		return
	}

	userID := GetUserID(c)
	shelf, err := ic.shelves.CreateShelfWithItems(userID, title, strings.TrimSpace(req.Description), items)
	if err != nil {
		respondInternalError(c, err, "create shelf from import")
		return
	}

	// The pending import is committed; its snapshot has served its purpose.
	_ = ic.pipeline.DiscardSnapshot(ic.snapshotKey(c))
	_ = ic.pipeline.DiscardSnapshot(auth.UserSnapshotKey(userID))

	if ic.taskClient != nil {
		for _, item := range shelf.Items {
			if item.ImageURL == "" && item.URL != "" {
				_ = ic.taskClient.EnqueueEnrichItem(c.Request.Context(), item.ID)
			}
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"state": importer.StateSuccess,
		"shelf": shelf,
	})
}

func (ic *ImportController) snapshotKey(c *gin.Context) string {
	if ic.sessions != nil {
		return ic.sessions.SessionKey(c.Request)
	}
	return auth.UserSnapshotKey(GetUserID(c))
}

// previewToItem converts a preview row into a shelf item, preferring
// fetched metadata over parsed context.
func previewToItem(preview importer.PreviewItem) entities.Item {
	item := entities.Item{
		Type:  inferItemType(preview.Source, preview.ResolvedURL),
		Title: preview.DisplayTitle(),
		URL:   preview.ResolvedURL,
		Notes: preview.Description,
	}
	if item.URL == "" {
		item.URL = preview.URL
	}
	if preview.Metadata != nil {
		item.Creator = preview.Metadata.Publisher
		item.ImageURL = preview.Metadata.Image
		if item.Notes == "" {
			item.Notes = preview.Metadata.Description
		}
	}
	return item
}

// inferItemType guesses an item type from the metadata source and the
// destination host. Everything unrecognized is a plain link.
func inferItemType(source metadata.Source, rawURL string) entities.ItemType {
	switch source {
	case metadata.SourceYouTube:
		return entities.ItemTypeVideo
	case metadata.SourceFeed:
		return entities.ItemTypePodcast
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return entities.ItemTypeLink
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "goodreads.com", "books.google.com":
		return entities.ItemTypeBook
	case "open.spotify.com", "music.apple.com", "bandcamp.com", "soundcloud.com":
		return entities.ItemTypeMusic
	case "podcasts.apple.com", "pocketcasts.com":
		return entities.ItemTypePodcast
	case "youtube.com", "youtu.be", "vimeo.com":
		return entities.ItemTypeVideo
	}
	return entities.ItemTypeLink
}
