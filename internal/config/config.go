package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Google
		Dictionary
		Tasks
		Enrichment
		Report
		Audit
		Logging
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   DatabaseDriver
		Path     string // SQLite file
		DSN      string // Postgres connection string
		LogLevel string // gorm logger: silent, error, warn, info
	}
	Auth struct {
		SessionCookieName string
		SessionLifetime   time.Duration
		SessionSecret     string // CSRF key; auto-generated if empty
		SecureCookies     bool   // Set to false for local dev without HTTPS
		BcryptCost        int
		CSRFEnabled       bool

		MaxLoginAttempts int           // Failed attempts allowed per window
		RateLimitWindow  time.Duration // Window over which attempts refill
	}
	Google struct {
		ClientID     string // Enables sign-in; access tokens must be issued to this client
		UserInfoURL  string
		TokenInfoURL string
	}
	Dictionary struct {
		BaseURL    string
		SourceLang string
		TargetLang string
		RateLimit  time.Duration // Minimum spacing between upstream calls
		Timeout    time.Duration
	}
	// Tasks configures the backlite worker pool. Retry, timeout and
	// retention policy is set per queue by each task's Config.
	Tasks struct {
		Enabled         bool
		Workers         int           // Concurrent task workers
		ReleaseAfter    time.Duration // Stuck tasks return to the queue after this
		CleanupInterval time.Duration // How often finished tasks are purged
	}
	Enrichment struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
		OnAdd    bool   // Enqueue a lookup when a new catalog word is created
	}
	Report struct {
		MaxMonths int
	}
	Audit struct {
		RetentionDays   int    // 0 keeps events forever
		CleanupSchedule string // Cron format
	}
	Logging struct {
		Level  string
		Format string // json or console
	}
)

func NewConfig() *Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8888)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_log_level", "warn")

	// Auth defaults
	v.SetDefault("auth_session_cookie_name", DefaultSessionCookieName)
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_session_secret", "")
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_csrf_enabled", false)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")

	v.SetDefault("google_client_id", "")
	v.SetDefault("google_userinfo_url", DefaultGoogleUserInfoURL)
	v.SetDefault("google_tokeninfo_url", DefaultGoogleTokenInfoURL)

	v.SetDefault("dictionary_base_url", DefaultDictionaryBaseURL)
	v.SetDefault("dictionary_source_lang", "en")
	v.SetDefault("dictionary_target_lang", "en")
	v.SetDefault("dictionary_rate_limit", "500ms")
	v.SetDefault("dictionary_timeout", "10s")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("enrich_enabled", true)
	v.SetDefault("enrich_schedule", "0 * * * *")
	v.SetDefault("enrich_on_add", true)

	v.SetDefault("report_max_months", 120)

	v.SetDefault("audit_retention_days", 90)
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Auth: Auth{
			SessionCookieName: v.GetString("AUTH_SESSION_COOKIE_NAME"),
			SessionLifetime:   v.GetDuration("AUTH_SESSION_LIFETIME"),
			SessionSecret:     v.GetString("AUTH_SESSION_SECRET"),
			SecureCookies:     v.GetBool("AUTH_SECURE_COOKIES"),
			BcryptCost:        v.GetInt("AUTH_BCRYPT_COST"),
			CSRFEnabled:       v.GetBool("AUTH_CSRF_ENABLED"),
			MaxLoginAttempts:  v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:   v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
		},
		Google: Google{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			UserInfoURL:  v.GetString("GOOGLE_USERINFO_URL"),
			TokenInfoURL: v.GetString("GOOGLE_TOKENINFO_URL"),
		},
		Dictionary: Dictionary{
			BaseURL:    v.GetString("DICTIONARY_BASE_URL"),
			SourceLang: v.GetString("DICTIONARY_SOURCE_LANG"),
			TargetLang: v.GetString("DICTIONARY_TARGET_LANG"),
			RateLimit:  v.GetDuration("DICTIONARY_RATE_LIMIT"),
			Timeout:    v.GetDuration("DICTIONARY_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Enrichment: Enrichment{
			Enabled:  v.GetBool("ENRICH_ENABLED"),
			Schedule: v.GetString("ENRICH_SCHEDULE"),
			OnAdd:    v.GetBool("ENRICH_ON_ADD"),
		},
		Report: Report{
			MaxMonths: v.GetInt("REPORT_MAX_MONTHS"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}
