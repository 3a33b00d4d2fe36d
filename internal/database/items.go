package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/shelfspace/bookshelf/internal/entities"
)

// AddItem appends an item to the end of its shelf. The shelf must belong
// to the item's user.
func (d *Database) AddItem(item *entities.Item) error {
	if _, err := d.GetShelfByID(item.ShelfID, item.UserID); err != nil {
		return err
	}

	return d.DB.Transaction(func(tx *gorm.DB) error {
		var maxPos *int
		err := tx.Model(&entities.Item{}).Where("shelf_id = ?", item.ShelfID).
			Select("MAX(position)").Scan(&maxPos).Error
		if err != nil {
			return err
		}
		item.Position = 0
		if maxPos != nil {
			item.Position = *maxPos + 1
		}
		return tx.Create(item).Error
	})
}

func (d *Database) GetItemByID(id, userID uint) (*entities.Item, error) {
	var item entities.Item
	err := d.DB.Where("id = ? AND user_id = ?", id, userID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemByIDAnyUser looks an item up without ownership scoping. Only for
// background tasks; request handlers go through GetItemByID.
func (d *Database) GetItemByIDAnyUser(id uint) (*entities.Item, error) {
	var item entities.Item
	err := d.DB.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *Database) GetItemsForShelf(shelfID, userID uint) ([]entities.Item, error) {
	if _, err := d.GetShelfByID(shelfID, userID); err != nil {
		return nil, err
	}
	var items []entities.Item
	err := d.DB.Where("shelf_id = ?", shelfID).Order("position ASC").Find(&items).Error
	return items, err
}

func (d *Database) UpdateItem(item *entities.Item) error {
	return d.DB.Save(item).Error
}

// DeleteItem removes an item and compacts the remaining positions on its
// shelf so they stay dense.
func (d *Database) DeleteItem(id, userID uint) error {
	item, err := d.GetItemByID(id, userID)
	if err != nil {
		return err
	}

	return d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entities.Item{}, item.ID).Error; err != nil {
			return err
		}
		return tx.Model(&entities.Item{}).
			Where("shelf_id = ? AND position > ?", item.ShelfID, item.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
}

// ReorderItems rewrites the positions of a shelf's items to match the
// given ID order. The list must contain exactly the shelf's items, each
// once; anything else leaves the shelf untouched.
func (d *Database) ReorderItems(shelfID, userID uint, itemIDs []uint) error {
	items, err := d.GetItemsForShelf(shelfID, userID)
	if err != nil {
		return err
	}

	if len(itemIDs) != len(items) {
		return fmt.Errorf("expected %d item ids, got %d", len(items), len(itemIDs))
	}
	onShelf := make(map[uint]bool, len(items))
	for _, item := range items {
		onShelf[item.ID] = true
	}
	seen := make(map[uint]bool, len(itemIDs))
	for _, id := range itemIDs {
		if !onShelf[id] {
			return fmt.Errorf("item %d does not belong to shelf %d", id, shelfID)
		}
		if seen[id] {
			return fmt.Errorf("item %d listed twice", id)
		}
		seen[id] = true
	}

	return d.DB.Transaction(func(tx *gorm.DB) error {
		for pos, id := range itemIDs {
			err := tx.Model(&entities.Item{}).Where("id = ?", id).
				UpdateColumn("position", pos).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
