package http

import "github.com/shelfspace/bookshelf/internal/entities"

// Store interfaces used by the HTTP controllers. Each controller depends
// only on the methods it actually calls; *database.Database satisfies all
// of them.

// ShelfStore covers shelf CRUD and share-token management.
type ShelfStore interface {
	CreateShelf(shelf *entities.Shelf) error
	CreateShelfWithItems(userID uint, title, description string, items []entities.Item) (*entities.Shelf, error)
	GetShelfByID(id, userID uint) (*entities.Shelf, error)
	GetShelvesForUser(userID uint) ([]entities.Shelf, error)
	UpdateShelf(shelf *entities.Shelf) error
	DeleteShelf(id, userID uint) error
	MintShareToken(id, userID uint) (string, error)
	RevokeShareToken(id, userID uint) error
}

// ItemStore covers item CRUD and ordering within a shelf.
type ItemStore interface {
	AddItem(item *entities.Item) error
	GetItemByID(id, userID uint) (*entities.Item, error)
	GetItemsForShelf(shelfID, userID uint) ([]entities.Item, error)
	UpdateItem(item *entities.Item) error
	DeleteItem(id, userID uint) error
	ReorderItems(shelfID, userID uint, itemIDs []uint) error
}

// ShareStore resolves public share tokens to shelves.
type ShareStore interface {
	GetShelfByShareToken(token string) (*entities.Shelf, error)
}
