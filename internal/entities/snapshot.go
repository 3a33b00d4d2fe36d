package entities

import "time"

// ImportSnapshot is the persisted resume point for an import that was
// interrupted before the user committed the preview (e.g. redirect to
// signup). One snapshot per user; stale snapshots are purged by a
// background task.
type ImportSnapshot struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserKey   string    `gorm:"uniqueIndex;size:128" json:"user_key"`
	Version   int       `json:"version"`
	Payload   string    `gorm:"type:text" json:"payload"` // JSON-encoded preview state
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ImportSnapshot) TableName() string {
	return "import_snapshots"
}
