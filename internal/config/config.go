package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Media
		Scratch
		Scheduler
		Import
		Tasks
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
	Media struct {
		BaseDir string // Root directory for stored attachment files
		BaseURL string // Public URL prefix attachment URLs are built from
	}
	Scratch struct {
		Dir           string
		MaxAge        time.Duration // Orphaned scratch dirs older than this are swept
		SweepSchedule string        // Cron format: "0 * * * *" = hourly
	}
	Scheduler struct {
		Serialized bool // Serialize slot picking so concurrent imports never share a day
	}
	Import struct {
		MaxUploadSize int64         // Per-archive upload limit in bytes
		LogRetention  time.Duration // How long import logs are kept
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8196)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("media_base_dir", DefaultMediaDir)
	v.SetDefault("media_base_url", "/media")
	v.SetDefault("scratch_dir", DefaultScratchDir)
	v.SetDefault("scratch_max_age", "6h")
	v.SetDefault("scratch_sweep_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("scheduler_serialized", false)
	v.SetDefault("import_max_upload_size", int64(100*1024*1024))
	v.SetDefault("import_log_retention", "720h") // 30 days

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

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
		Media: Media{
			BaseDir: v.GetString("MEDIA_BASE_DIR"),
			BaseURL: v.GetString("MEDIA_BASE_URL"),
		},
		Scratch: Scratch{
			Dir:           v.GetString("SCRATCH_DIR"),
			MaxAge:        v.GetDuration("SCRATCH_MAX_AGE"),
			SweepSchedule: v.GetString("SCRATCH_SWEEP_SCHEDULE"),
		},
		Scheduler: Scheduler{
			Serialized: v.GetBool("SCHEDULER_SERIALIZED"),
		},
		Import: Import{
			MaxUploadSize: v.GetInt64("IMPORT_MAX_UPLOAD_SIZE"),
			LogRetention:  v.GetDuration("IMPORT_LOG_RETENTION"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
