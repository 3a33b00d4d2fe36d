package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shelfspace/bookshelf/internal/entities"
)

// ItemsController handles items within shelves, including reordering.
type ItemsController struct {
	store ItemStore
}

func NewItemsController(store ItemStore) *ItemsController {
	return &ItemsController{store: store}
}

type createItemRequest struct {
	Type     entities.ItemType `json:"type"`
	Title    string            `json:"title" binding:"required"`
	Creator  string            `json:"creator"`
	URL      string            `json:"url"`
	ImageURL string            `json:"image_url"`
	Notes    string            `json:"notes"`
}

type updateItemRequest struct {
	Type     *entities.ItemType `json:"type"`
	Title    *string            `json:"title"`
	Creator  *string            `json:"creator"`
	URL      *string            `json:"url"`
	ImageURL *string            `json:"image_url"`
	Notes    *string            `json:"notes"`
}

type reorderRequest struct {
	ItemIDs []uint `json:"item_ids" binding:"required"`
}

func (ic *ItemsController) ListItems(c *gin.Context) {
	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	items, err := ic.store.GetItemsForShelf(shelfID, GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "list items")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (ic *ItemsController) CreateItem(c *gin.Context) {
	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	itemType := req.Type
	if itemType == "" {
		itemType = entities.ItemTypeLink
	}
	if !entities.ValidItemType(itemType) {
		respondBadRequest(c, "invalid item type")
		return
	}

	item := &entities.Item{
		ShelfID:  shelfID,
		UserID:   GetUserID(c),
		Type:     itemType,
		Title:    strings.TrimSpace(req.Title),
		Creator:  strings.TrimSpace(req.Creator),
		URL:      strings.TrimSpace(req.URL),
		ImageURL: strings.TrimSpace(req.ImageURL),
		Notes:    req.Notes,
	}
	if item.Title == "" {
		respondBadRequest(c, "title is required")
		return
	}

	if err := ic.store.AddItem(item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "create item")
		return
	}

	respondCreated(c, item)
}

func (ic *ItemsController) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	item, err := ic.store.GetItemByID(id, GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "item")
			return
		}
		respondInternalError(c, err, "update item")
		return
	}

	if req.Type != nil {
		if !entities.ValidItemType(*req.Type) {
			respondBadRequest(c, "invalid item type")
			return
		}
		item.Type = *req.Type
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondBadRequest(c, "title cannot be empty")
			return
		}
		item.Title = title
	}
	if req.Creator != nil {
		item.Creator = strings.TrimSpace(*req.Creator)
	}
	if req.URL != nil {
		item.URL = strings.TrimSpace(*req.URL)
	}
	if req.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	if err := ic.store.UpdateItem(item); err != nil {
		respondInternalError(c, err, "update item")
		return
	}

	c.JSON(http.StatusOK, item)
}

func (ic *ItemsController) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ic.store.DeleteItem(id, GetUserID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "item")
			return
		}
		respondInternalError(c, err, "delete item")
		return
	}

	respondSuccess(c, "item deleted")
}

// ReorderItems rewrites a shelf's item order to match the submitted ID
// list. The list must name every item on the shelf exactly once.
func (ic *ItemsController) ReorderItems(c *gin.Context) {
	shelfID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "item_ids is required")
		return
	}

	err := ic.store.ReorderItems(shelfID, GetUserID(c), req.ItemIDs)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	items, err := ic.store.GetItemsForShelf(shelfID, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "reorder items")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
