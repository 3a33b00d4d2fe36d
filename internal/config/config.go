package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Tasks
		Import
		Metadata
		Snapshots
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	// Import configures the text-import pipeline.
	Import struct {
		MaxItems            int           // Cap on parsed items per run (default: 50)
		ResolveConcurrency  int           // Parallel requests per resolver chunk (default: 5)
		ResolveTimeout      time.Duration // Per-request resolution timeout (default: 5s)
		MetadataBatchSize   int           // Batch size for the full pipeline pass (default: 10)
		MetadataRouteBatch  int           // Batch size for the standalone metadata route (default: 3)
		MetadataMaxURLs     int           // Cap on URLs per metadata request (default: 20)
	}

	// Metadata configures the external enrichment providers.
	Metadata struct {
		MicrolinkURL  string // Link-preview API base URL; empty disables the provider
		MicrolinkKey  string // Optional API key sent as x-api-key
		YouTubeAPIKey string // Server-held YouTube Data API key; empty disables the video path
		FetchTimeout  time.Duration
	}

	Snapshots struct {
		TTL             time.Duration // How long pending-import snapshots live (default: 24h)
		CleanupSchedule string        // Cron format: "0 * * * *" = hourly
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Import pipeline defaults
	v.SetDefault("import_max_items", DefaultMaxParsedItems)
	v.SetDefault("import_resolve_concurrency", 5)
	v.SetDefault("import_resolve_timeout", "5s")
	v.SetDefault("import_metadata_batch_size", 10)
	v.SetDefault("import_metadata_route_batch", 3)
	v.SetDefault("import_metadata_max_urls", 20)

	// Metadata provider defaults
	v.SetDefault("microlink_url", "https://api.microlink.io")
	v.SetDefault("microlink_key", "")
	v.SetDefault("youtube_api_key", "")
	v.SetDefault("metadata_fetch_timeout", "10s")

	// Snapshot defaults
	v.SetDefault("snapshot_ttl", "24h")
	v.SetDefault("snapshot_cleanup_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Import: Import{
			MaxItems:           v.GetInt("IMPORT_MAX_ITEMS"),
			ResolveConcurrency: v.GetInt("IMPORT_RESOLVE_CONCURRENCY"),
			ResolveTimeout:     v.GetDuration("IMPORT_RESOLVE_TIMEOUT"),
			MetadataBatchSize:  v.GetInt("IMPORT_METADATA_BATCH_SIZE"),
			MetadataRouteBatch: v.GetInt("IMPORT_METADATA_ROUTE_BATCH"),
			MetadataMaxURLs:    v.GetInt("IMPORT_METADATA_MAX_URLS"),
		},
		Metadata: Metadata{
			MicrolinkURL:  v.GetString("MICROLINK_URL"),
			MicrolinkKey:  v.GetString("MICROLINK_KEY"),
			YouTubeAPIKey: v.GetString("YOUTUBE_API_KEY"),
			FetchTimeout:  v.GetDuration("METADATA_FETCH_TIMEOUT"),
		},
		Snapshots: Snapshots{
			TTL:             v.GetDuration("SNAPSHOT_TTL"),
			CleanupSchedule: v.GetString("SNAPSHOT_CLEANUP_SCHEDULE"),
		},
	}
}
