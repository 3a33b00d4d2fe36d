package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfspace/bookshelf/internal/auth"
	"github.com/shelfspace/bookshelf/internal/config"
	"github.com/shelfspace/bookshelf/internal/database"
	http_controllers "github.com/shelfspace/bookshelf/internal/http"
	"github.com/shelfspace/bookshelf/internal/importer"
	"github.com/shelfspace/bookshelf/internal/metadata"
	"github.com/shelfspace/bookshelf/internal/scheduler"
	"github.com/shelfspace/bookshelf/internal/tasks"
	"github.com/shelfspace/bookshelf/internal/textimport"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener drains
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// BuildEnricher assembles the metadata provider chain from config: the
// microlink API when configured, OpenGraph scraping otherwise, with feed
// URLs peeled off first and YouTube handled by its own client when a key
// is present.
func BuildEnricher(cfg *config.Config, batchSize int) *metadata.Enricher {
	var preview metadata.Provider
	if cfg.Metadata.MicrolinkURL != "" {
		preview = metadata.NewMicrolinkClient(cfg.Metadata.MicrolinkURL, cfg.Metadata.MicrolinkKey, cfg.Metadata.FetchTimeout)
	} else {
		preview = metadata.NewOpenGraphClient(cfg.Metadata.FetchTimeout)
	}
	preview = metadata.NewFeedAwareProvider(preview)

	enricher := metadata.NewEnricher(preview, batchSize)
	if cfg.Metadata.YouTubeAPIKey != "" {
		enricher.SetYouTubeClient(metadata.NewYouTubeClient(cfg.Metadata.YouTubeAPIKey, cfg.Metadata.FetchTimeout))
	}
	return enricher
}

// BuildResolver creates the short-URL resolver from config.
func BuildResolver(cfg *config.Config) *textimport.Resolver {
	resolver := textimport.NewResolver()
	resolver.SetTimeout(cfg.Import.ResolveTimeout)
	resolver.SetConcurrency(cfg.Import.ResolveConcurrency)
	return resolver
}

// Run wires the whole application and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	snapshotStore := database.NewSnapshotStore(db, cfg.Snapshots.TTL)
	resolver := BuildResolver(cfg)

	// Two enrichers with different batch sizes: the pipeline processes a
	// whole preview at once, the standalone metadata route stays small.
	pipelineEnricher := BuildEnricher(cfg, cfg.Import.MetadataBatchSize)
	routeEnricher := BuildEnricher(cfg, cfg.Import.MetadataRouteBatch)

	pipeline := importer.NewPipeline(resolver, pipelineEnricher, snapshotStore, cfg.Import.MaxItems)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichItemQueue(db, routeEnricher),
			tasks.NewCleanupSnapshotsQueue(snapshotStore),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Schedule periodic snapshot cleanup
	cleanupScheduler := scheduler.NewSnapshotCleanupScheduler(snapshotStore, cfg.Snapshots.CleanupSchedule)
	if taskClient != nil {
		cleanupScheduler.SetTaskClient(taskClient)
	}
	if err := cleanupScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: snapshot cleanup scheduler disabled: %v", err)
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth)

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. POST /api/auth/signup to create the first account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		ShelfStore:     db,
		ItemStore:      db,
		ShareStore:     db,
		Pipeline:       pipeline,
		Resolver:       resolver,
		Enricher:       routeEnricher,
		ImportConfig:   cfg.Import,
		TaskClient:     taskClient,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		AuthConfig:     cfg.Auth,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
