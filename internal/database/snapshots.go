package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelfspace/bookshelf/internal/entities"
	"github.com/shelfspace/bookshelf/internal/importer"
)

// SnapshotStore is the database-backed implementation of
// importer.SnapshotStore. Each user holds at most one snapshot; saving
// again overwrites it and restarts the expiry clock.
type SnapshotStore struct {
	db  *Database
	ttl time.Duration
}

func NewSnapshotStore(db *Database, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SnapshotStore{db: db, ttl: ttl}
}

func (s *SnapshotStore) Save(userKey string, snap *importer.Snapshot) error {
	snap.SavedAt = time.Now().UTC()
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	record := entities.ImportSnapshot{
		UserKey:   userKey,
		Version:   snap.Version,
		Payload:   string(payload),
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}

	return s.db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "payload", "expires_at", "updated_at"}),
	}).Create(&record).Error
}

// Load returns the user's snapshot, or (nil, nil) when there is none. An
// expired snapshot is deleted on sight and treated as absent.
func (s *SnapshotStore) Load(userKey string) (*importer.Snapshot, error) {
	var record entities.ImportSnapshot
	err := s.db.DB.Where("user_key = ?", userKey).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if time.Now().UTC().After(record.ExpiresAt) {
		_ = s.Delete(userKey)
		return nil, nil
	}

	var snap importer.Snapshot
	if err := json.Unmarshal([]byte(record.Payload), &snap); err != nil {
		// An undecodable snapshot is useless; drop it rather than wedge
		// the import flow.
		_ = s.Delete(userKey)
		return nil, nil
	}

	return &snap, nil
}

func (s *SnapshotStore) Delete(userKey string) error {
	return s.db.DB.Where("user_key = ?", userKey).Delete(&entities.ImportSnapshot{}).Error
}

// DeleteExpired purges every snapshot past its expiry and reports how many
// were removed. Run periodically by the cleanup task.
func (s *SnapshotStore) DeleteExpired() (int64, error) {
	result := s.db.DB.Where("expires_at < ?", time.Now().UTC()).Delete(&entities.ImportSnapshot{})
	return result.RowsAffected, result.Error
}
