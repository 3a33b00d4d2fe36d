package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shelfspace/bookshelf/internal/entities"
)

// ShelvesController handles shelf CRUD and sharing.
type ShelvesController struct {
	store ShelfStore
}

func NewShelvesController(store ShelfStore) *ShelvesController {
	return &ShelvesController{store: store}
}

type createShelfRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateShelfRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (sc *ShelvesController) ListShelves(c *gin.Context) {
	shelves, err := sc.store.GetShelvesForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list shelves")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shelves": shelves,
		"count":   len(shelves),
	})
}

func (sc *ShelvesController) GetShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shelf, err := sc.store.GetShelfByID(id, GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "get shelf")
		return
	}

	c.JSON(http.StatusOK, shelf)
}

func (sc *ShelvesController) CreateShelf(c *gin.Context) {
	var req createShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondBadRequest(c, "title is required")
		return
	}

	shelf := &entities.Shelf{
		UserID:      GetUserID(c),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
	}
	if err := sc.store.CreateShelf(shelf); err != nil {
		respondInternalError(c, err, "create shelf")
		return
	}

	respondCreated(c, shelf)
}

func (sc *ShelvesController) UpdateShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateShelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	shelf, err := sc.store.GetShelfByID(id, GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "update shelf")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondBadRequest(c, "title cannot be empty")
			return
		}
		shelf.Title = title
	}
	if req.Description != nil {
		shelf.Description = strings.TrimSpace(*req.Description)
	}

	if err := sc.store.UpdateShelf(shelf); err != nil {
		respondInternalError(c, err, "update shelf")
		return
	}

	c.JSON(http.StatusOK, shelf)
}

func (sc *ShelvesController) DeleteShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := sc.store.DeleteShelf(id, GetUserID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "delete shelf")
		return
	}

	respondSuccess(c, "shelf deleted")
}

// ShareShelf enables public sharing and returns the share URL path.
func (sc *ShelvesController) ShareShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	token, err := sc.store.MintShareToken(id, GetUserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "share shelf")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"share_token": token,
		"share_url":   "/s/" + token,
	})
}

// UnshareShelf disables sharing; previously issued links stop working.
func (sc *ShelvesController) UnshareShelf(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := sc.store.RevokeShareToken(id, GetUserID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "shelf")
			return
		}
		respondInternalError(c, err, "unshare shelf")
		return
	}

	respondSuccess(c, "sharing disabled")
}
