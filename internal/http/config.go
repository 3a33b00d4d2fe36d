package http

import (
	"github.com/shelfspace/bookshelf/internal/auth"
	"github.com/shelfspace/bookshelf/internal/config"
	"github.com/shelfspace/bookshelf/internal/database"
	"github.com/shelfspace/bookshelf/internal/importer"
	"github.com/shelfspace/bookshelf/internal/metadata"
	"github.com/shelfspace/bookshelf/internal/tasks"
	"github.com/shelfspace/bookshelf/internal/textimport"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router. This replaces a long parameter list in
// NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Stores backing the controllers; in production all three are the
	// Database, tests substitute fakes.
	ShelfStore ShelfStore
	ItemStore  ItemStore
	ShareStore ShareStore

	// Import pipeline
	Pipeline     *importer.Pipeline
	Resolver     *textimport.Resolver
	Enricher     *metadata.Enricher
	ImportConfig config.Import

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
