package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/shelfspace/bookshelf/internal/entities"
)

func (d *Database) CreateShelf(shelf *entities.Shelf) error {
	return d.DB.Create(shelf).Error
}

// CreateShelfWithItems creates a shelf and its items in one transaction,
// assigning dense positions in slice order. Used by the import flow so a
// half-created shelf never survives a failure.
func (d *Database) CreateShelfWithItems(userID uint, title, description string, items []entities.Item) (*entities.Shelf, error) {
	shelf := &entities.Shelf{
		UserID:      userID,
		Title:       title,
		Description: description,
	}

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shelf).Error; err != nil {
			return fmt.Errorf("failed to create shelf: %w", err)
		}
		for i := range items {
			items[i].ID = 0
			items[i].ShelfID = shelf.ID
			items[i].UserID = userID
			items[i].Position = i
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to create items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	shelf.Items = items
	return shelf, nil
}

func (d *Database) GetShelfByID(id, userID uint) (*entities.Shelf, error) {
	var shelf entities.Shelf
	err := d.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ? AND user_id = ?", id, userID).First(&shelf).Error
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}

// GetShelfByShareToken looks a shelf up by its share token regardless of
// owner. Only shelves with a token minted are reachable this way.
func (d *Database) GetShelfByShareToken(token string) (*entities.Shelf, error) {
	if token == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var shelf entities.Shelf
	err := d.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("share_token = ?", token).First(&shelf).Error
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}

func (d *Database) GetShelvesForUser(userID uint) ([]entities.Shelf, error) {
	var shelves []entities.Shelf
	err := d.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("user_id = ?", userID).Order("created_at ASC").Find(&shelves).Error
	return shelves, err
}

func (d *Database) UpdateShelf(shelf *entities.Shelf) error {
	return d.DB.Save(shelf).Error
}

func (d *Database) DeleteShelf(id, userID uint) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Shelf{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("shelf_id = ?", id).Delete(&entities.Item{}).Error
	})
}

// MintShareToken enables public sharing for a shelf, generating a token if
// none exists yet. Minting twice returns the same token.
func (d *Database) MintShareToken(id, userID uint) (string, error) {
	shelf, err := d.GetShelfByID(id, userID)
	if err != nil {
		return "", err
	}
	if shelf.ShareToken == "" {
		token, err := generateToken()
		if err != nil {
			return "", fmt.Errorf("failed to generate share token: %w", err)
		}
		shelf.ShareToken = token
	}
	err = d.DB.Model(&entities.Shelf{}).Where("id = ?", shelf.ID).Updates(map[string]any{
		"share_token": shelf.ShareToken,
		"public":      true,
	}).Error
	if err != nil {
		return "", err
	}
	return shelf.ShareToken, nil
}

// RevokeShareToken disables sharing and discards the token, so old links
// stop working even if sharing is re-enabled later.
func (d *Database) RevokeShareToken(id, userID uint) error {
	shelf, err := d.GetShelfByID(id, userID)
	if err != nil {
		return err
	}
	return d.DB.Model(shelf).Updates(map[string]any{
		"share_token": "",
		"public":      false,
	}).Error
}
