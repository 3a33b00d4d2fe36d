package entities

import (
	"time"

	"gorm.io/gorm"
)

type ItemType string

const (
	ItemTypeBook    ItemType = "book"
	ItemTypePodcast ItemType = "podcast"
	ItemTypeMusic   ItemType = "music"
	ItemTypeVideo   ItemType = "video"
	ItemTypeLink    ItemType = "link"
)

// ValidItemType reports whether t is one of the supported item types.
func ValidItemType(t ItemType) bool {
	switch t {
	case ItemTypeBook, ItemTypePodcast, ItemTypeMusic, ItemTypeVideo, ItemTypeLink:
		return true
	}
	return false
}

type Shelf struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	Title       string         `gorm:"size:256" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	ShareToken  string         `gorm:"index;size:64" json:"share_token,omitempty"` // empty while the shelf is private
	Public      bool           `gorm:"default:false" json:"public"`
	Items       []Item         `gorm:"foreignKey:ShelfID" json:"items,omitempty"`
	User        User           `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Item struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	ShelfID  uint     `gorm:"index" json:"shelf_id"`
	UserID   uint     `gorm:"index" json:"user_id"`
	Type     ItemType `gorm:"size:20;default:'link'" json:"type"`
	Title    string   `gorm:"size:512" json:"title"`
	Creator  string   `gorm:"size:256" json:"creator,omitempty"` // author, channel, artist or publisher
	URL      string   `gorm:"size:2048" json:"url,omitempty"`
	ImageURL string   `gorm:"size:2048" json:"image_url,omitempty"`
	Notes    string   `gorm:"type:text" json:"notes,omitempty"`

	// Position is the dense 0-based ordering of the item within its shelf.
	Position int `gorm:"index" json:"position"`

	Shelf Shelf `gorm:"foreignKey:ShelfID" json:"-"`
	User  User  `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Shelf) TableName() string {
	return "shelves"
}

func (Item) TableName() string {
	return "items"
}
