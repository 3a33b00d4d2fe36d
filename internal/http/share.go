package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shelfspace/bookshelf/internal/entities"
)

// ShareController serves publicly shared shelves. No authentication: the
// share token is the capability.
type ShareController struct {
	store ShareStore
}

func NewShareController(store ShareStore) *ShareController {
	return &ShareController{store: store}
}

// sharedItem is the public projection of an item; notes stay private.
type sharedItem struct {
	Type     entities.ItemType `json:"type"`
	Title    string            `json:"title"`
	Creator  string            `json:"creator,omitempty"`
	URL      string            `json:"url,omitempty"`
	ImageURL string            `json:"image_url,omitempty"`
	Position int               `json:"position"`
}

type sharedShelfResponse struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Items       []sharedItem `json:"items"`
}

// GetSharedShelf looks up a shelf by its share token. A revoked or
// unknown token is indistinguishable from a missing shelf.
func (sc *ShareController) GetSharedShelf(c *gin.Context) {
	token := c.Param("token")

	shelf, err := sc.store.GetShelfByShareToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "shared shelf")
		return
	}
	if !shelf.Public {
		respondNotFound(c, "shelf")
		return
	}

	items := make([]sharedItem, len(shelf.Items))
	for i, item := range shelf.Items {
		items[i] = sharedItem{
			Type:     item.Type,
			Title:    item.Title,
			Creator:  item.Creator,
			URL:      item.URL,
			ImageURL: item.ImageURL,
			Position: item.Position,
		}
	}

	c.JSON(http.StatusOK, sharedShelfResponse{
		Title:       shelf.Title,
		Description: shelf.Description,
		Items:       items,
	})
}
