package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/shelfspace/bookshelf/internal/database"
	"github.com/shelfspace/bookshelf/internal/metadata"
)

// EnrichItemTask re-fetches preview metadata for one shelf item. Items
// created from an import with quota-starved or failed previews get their
// metadata filled in here, off the request path.
type EnrichItemTask struct {
	ItemID uint `json:"item_id"`
}

// Config returns the queue configuration for item enrichment tasks.
func (t EnrichItemTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_item",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichItemProcessor creates the processor for EnrichItemTask.
func EnrichItemProcessor(db *database.Database, enricher *metadata.Enricher) backlite.QueueProcessor[EnrichItemTask] {
	return func(ctx context.Context, task EnrichItemTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		item, err := db.GetItemByIDAnyUser(task.ItemID)
		if err != nil {
			return fmt.Errorf("load item %d: %w", task.ItemID, err)
		}
		if item.URL == "" {
			log.Printf("[TASK] Item %d has no URL, nothing to enrich", task.ItemID)
			return nil
		}

		result := enricher.Enrich(ctx, item.URL)
		if !result.OK() {
			return fmt.Errorf("enrich item %d (%s): %s", task.ItemID, item.URL, result.Err)
		}

		updated := false
		md := result.Metadata
		if item.ImageURL == "" && md.Image != "" {
			item.ImageURL = md.Image
			updated = true
		}
		if item.Creator == "" && md.Publisher != "" {
			item.Creator = md.Publisher
			updated = true
		}
		if item.Notes == "" && md.Description != "" {
			item.Notes = md.Description
			updated = true
		}

		if !updated {
			log.Printf("[TASK] Item %d (%s): no metadata updates needed", task.ItemID, item.Title)
			return nil
		}

		if err := db.UpdateItem(item); err != nil {
			return fmt.Errorf("save item %d: %w", task.ItemID, err)
		}
		log.Printf("[TASK] Enriched item %d (%s) via %s", task.ItemID, item.Title, result.Source)
		return nil
	}
}

// NewEnrichItemQueue creates a backlite queue for item enrichment tasks.
func NewEnrichItemQueue(db *database.Database, enricher *metadata.Enricher) backlite.Queue {
	return backlite.NewQueue(EnrichItemProcessor(db, enricher))
}
