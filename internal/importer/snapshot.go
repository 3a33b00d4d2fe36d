package importer

import "time"

// SnapshotVersion is bumped whenever the snapshot payload shape changes;
// older snapshots are silently discarded on load.
const SnapshotVersion = 1

// Snapshot is the persisted resume point for an import interrupted at the
// preview stage (typically by a redirect to signup).
type Snapshot struct {
	Version    int           `json:"version"`
	ShelfTitle string        `json:"shelf_title"`
	Items      []PreviewItem `json:"items"`
	SavedAt    time.Time     `json:"saved_at"`
}

// SnapshotStore persists pending-import snapshots keyed by user. Load
// returns (nil, nil) when no live snapshot exists; expiry is the store's
// responsibility.
type SnapshotStore interface {
	Save(userKey string, snap *Snapshot) error
	Load(userKey string) (*Snapshot, error)
	Delete(userKey string) error
}
