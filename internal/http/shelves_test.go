package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfspace/bookshelf/internal/database"
	"github.com/shelfspace/bookshelf/internal/entities"
)

func setupControllerTestDB(t *testing.T) *database.Database {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func newShelvesRouter(db *database.Database) *gin.Engine {
	controller := NewShelvesController(db)
	share := NewShareController(db)

	router := gin.New()
	router.GET("/api/shelves", controller.ListShelves)
	router.POST("/api/shelves", controller.CreateShelf)
	router.GET("/api/shelves/:id", controller.GetShelf)
	router.PATCH("/api/shelves/:id", controller.UpdateShelf)
	router.DELETE("/api/shelves/:id", controller.DeleteShelf)
	router.POST("/api/shelves/:id/share", controller.ShareShelf)
	router.DELETE("/api/shelves/:id/share", controller.UnshareShelf)
	router.GET("/s/:token", share.GetSharedShelf)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestShelvesController_Create(t *testing.T) {
	t.Run("creates a shelf", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		w := doJSON(t, router, "POST", "/api/shelves", `{"title": "  Summer Reading  ", "description": "beach books"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var shelf entities.Shelf
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shelf))
		assert.Equal(t, "Summer Reading", shelf.Title)
		assert.Equal(t, "beach books", shelf.Description)
		assert.NotZero(t, shelf.ID)
	})

	t.Run("rejects missing title", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		w := doJSON(t, router, "POST", "/api/shelves", `{"description": "no title"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title is required")
	})

	t.Run("rejects whitespace-only title", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		w := doJSON(t, router, "POST", "/api/shelves", `{"title": "   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestShelvesController_ListAndGet(t *testing.T) {
	t.Run("lists shelves with count", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		require.NoError(t, db.CreateShelf(&entities.Shelf{Title: "First"}))
		require.NoError(t, db.CreateShelf(&entities.Shelf{Title: "Second"}))

		w := doJSON(t, router, "GET", "/api/shelves", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(2), response["count"])
	})

	t.Run("returns 404 for unknown shelf", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		w := doJSON(t, router, "GET", "/api/shelves/9999", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "shelf not found")
	})

	t.Run("returns 400 for garbage id", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		w := doJSON(t, router, "GET", "/api/shelves/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("hides other users' shelves", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		foreign := &entities.Shelf{UserID: 42, Title: "Not Yours"}
		require.NoError(t, db.CreateShelf(foreign))

		w := doJSON(t, router, "GET", "/api/shelves/"+itoa(foreign.ID), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestShelvesController_Update(t *testing.T) {
	t.Run("patches only provided fields", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		shelf := &entities.Shelf{Title: "Old Title", Description: "keep me"}
		require.NoError(t, db.CreateShelf(shelf))

		w := doJSON(t, router, "PATCH", "/api/shelves/"+itoa(shelf.ID), `{"title": "New Title"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		var updated entities.Shelf
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "New Title", updated.Title)
		assert.Equal(t, "keep me", updated.Description)
	})

	t.Run("rejects emptying the title", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		shelf := &entities.Shelf{Title: "Stays"}
		require.NoError(t, db.CreateShelf(shelf))

		w := doJSON(t, router, "PATCH", "/api/shelves/"+itoa(shelf.ID), `{"title": ""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestShelvesController_Delete(t *testing.T) {
	db := setupControllerTestDB(t)
	router := newShelvesRouter(db)

	shelf := &entities.Shelf{Title: "Doomed"}
	require.NoError(t, db.CreateShelf(shelf))

	w := doJSON(t, router, "DELETE", "/api/shelves/"+itoa(shelf.ID), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/shelves/"+itoa(shelf.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSharing(t *testing.T) {
	t.Run("share then fetch publicly", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		shelf, err := db.CreateShelfWithItems(0, "Mixtape", "", []entities.Item{
			{Type: entities.ItemTypeMusic, Title: "Track One", Notes: "private note"},
			{Type: entities.ItemTypeMusic, Title: "Track Two"},
		})
		require.NoError(t, err)

		w := doJSON(t, router, "POST", "/api/shelves/"+itoa(shelf.ID)+"/share", "")
		require.Equal(t, http.StatusOK, w.Code)

		var shareResp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shareResp))
		token := shareResp["share_token"]
		require.NotEmpty(t, token)
		assert.Equal(t, "/s/"+token, shareResp["share_url"])

		w = doJSON(t, router, "GET", "/s/"+token, "")
		require.Equal(t, http.StatusOK, w.Code)

		var shared map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shared))
		assert.Equal(t, "Mixtape", shared["title"])
		items := shared["items"].([]interface{})
		require.Len(t, items, 2)

		// Notes never leave the owner's view
		assert.NotContains(t, w.Body.String(), "private note")
	})

	t.Run("revoked token stops working", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		shelf := &entities.Shelf{Title: "Briefly Public"}
		require.NoError(t, db.CreateShelf(shelf))

		token, err := db.MintShareToken(shelf.ID, 0)
		require.NoError(t, err)

		w := doJSON(t, router, "DELETE", "/api/shelves/"+itoa(shelf.ID)+"/share", "")
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/s/"+token, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown token is a 404", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		w := doJSON(t, router, "GET", "/s/deadbeef", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("sharing unknown shelf is a 404", func(t *testing.T) {
		db := setupControllerTestDB(t)
		router := newShelvesRouter(db)

		w := doJSON(t, router, "POST", "/api/shelves/777/share", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
