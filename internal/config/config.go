package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Storage
		Sources
		CategorySync
		Audit
		Global
		Database
		Tasks
		Metrics
	}

	HTTP struct {
		Port     int32
		Host     string
		ReadOnly bool // Reject write requests under /api
	}
	Storage struct {
		BooksDir       string // App-private copies of imported e-books
		MaxUploadBytes int64
	}
	Sources struct {
		Dir              string // *.yaml source definitions registered at startup
		TemplatesFile    string // Optional mapping template overrides
		RequestTimeout   time.Duration
		MaxRetries       int
		CaptureResponses bool // Save raw envelopes through the auditor
	}
	CategorySync struct {
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	Audit struct {
		Dir           string
		RetentionDays int // Days to keep audit events (default: 30)
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Tasks struct {
		Enabled           bool
		DatabasePath      string
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Metrics struct {
		Enabled bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("read_only", false)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("books_dir", DefaultBooksDir)
	v.SetDefault("max_upload_bytes", 64<<20)
	v.SetDefault("sources_dir", "./sources")
	v.SetDefault("mapping_templates_file", "")
	v.SetDefault("source_request_timeout", "15s")
	v.SetDefault("source_max_retries", 3)
	v.SetDefault("source_capture_responses", false)
	v.SetDefault("category_sync_enabled", false)
	v.SetDefault("category_sync_schedule", "0 */6 * * *") // Every 6 hours
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("metrics_enabled", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", DefaultTasksDatabasePath)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port:     v.GetInt32("PORT"),
			Host:     v.GetString("HOST"),
			ReadOnly: v.GetBool("READ_ONLY"),
		},
		Storage: Storage{
			BooksDir:       v.GetString("BOOKS_DIR"),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		},
		Sources: Sources{
			Dir:              v.GetString("SOURCES_DIR"),
			TemplatesFile:    v.GetString("MAPPING_TEMPLATES_FILE"),
			RequestTimeout:   v.GetDuration("SOURCE_REQUEST_TIMEOUT"),
			MaxRetries:       v.GetInt("SOURCE_MAX_RETRIES"),
			CaptureResponses: v.GetBool("SOURCE_CAPTURE_RESPONSES"),
		},
		CategorySync: CategorySync{
			Enabled:  v.GetBool("CATEGORY_SYNC_ENABLED"),
			Schedule: v.GetString("CATEGORY_SYNC_SCHEDULE"),
		},
		Audit: Audit{
			Dir:           v.GetString("AUDIT_DIR"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DatabasePath:      v.GetString("TASKS_DATABASE_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
