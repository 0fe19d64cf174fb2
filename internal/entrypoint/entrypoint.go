package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wordtrack/wordtrack/internal/audit"
	"github.com/wordtrack/wordtrack/internal/auth"
	"github.com/wordtrack/wordtrack/internal/config"
	"github.com/wordtrack/wordtrack/internal/database"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	http_controllers "github.com/wordtrack/wordtrack/internal/http"
	"github.com/wordtrack/wordtrack/internal/logging"
	"github.com/wordtrack/wordtrack/internal/scheduler"
	"github.com/wordtrack/wordtrack/internal/tasks"
	"github.com/wordtrack/wordtrack/internal/vocabulary"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// kill (no param) default sends syscall.SIGTERM, kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	// Background work stops after in-flight requests have drained.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("server exiting")
}

// NewDictionaryClient builds the configured dictionary provider.
func NewDictionaryClient(cfg config.Dictionary) *dictionary.FreeDictionaryClient {
	return dictionary.NewFreeDictionaryClient(dictionary.FreeDictionaryOptions{
		BaseURL:  cfg.BaseURL,
		Interval: cfg.RateLimit,
		Timeout:  cfg.Timeout,
	})
}

// NewVocabularyService builds the vocabulary service with the configured
// dictionary and language pair.
func NewVocabularyService(db *database.Database, cfg *config.Config, logger *zap.Logger) *vocabulary.Service {
	pair := dictionary.LanguagePair{Source: cfg.Dictionary.SourceLang, Target: cfg.Dictionary.TargetLang}
	return vocabulary.NewService(db.DB, NewDictionaryClient(cfg.Dictionary), vocabulary.Config{
		LanguagePair:    pair,
		MaxReportMonths: cfg.Report.MaxMonths,
	}, logger)
}

// NewAuthService builds the auth service. Google sign-in is enabled when a
// client ID is configured.
func NewAuthService(db *database.Database, cfg *config.Config) *auth.Service {
	var google auth.GoogleVerifier
	if cfg.Google.ClientID != "" {
		google = auth.NewGoogleUserInfoClient(cfg.Google.UserInfoURL, cfg.Google.TokenInfoURL, cfg.Google.ClientID, nil)
	}
	return auth.NewService(db.DB, cfg.Auth, google)
}

func Run(cfg *config.Config, version string) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Logging.Format != "console" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("starting wordtrack", zap.String("version", version))

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
	}()
	logger.Info("database ready", zap.String("dialect", db.Dialect()))

	vocab := NewVocabularyService(db, cfg, logger)
	auditor := audit.NewService(db.DB, logger)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var enrichScheduler *scheduler.EnrichmentScheduler
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks, logger)
		if err != nil {
			logger.Fatal("failed to initialize task queue", zap.Error(err))
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(
			tasks.NewEnrichWordQueue(vocab, logger),
			tasks.NewEnrichPendingWordsQueue(vocab, logger),
			tasks.NewCleanupAuditEventsQueue(auditor, logger),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Enrichment.OnAdd {
			vocab.SetEnqueuer(taskClient)
		}

		if cfg.Enrichment.Enabled {
			enrichScheduler = scheduler.NewEnrichmentScheduler(taskClient, cfg.Enrichment.Schedule, 0, logger)
			if err := enrichScheduler.Start(taskCtx); err != nil {
				logger.Fatal("failed to start enrichment scheduler", zap.Error(err))
			}
		}

		if cfg.Audit.RetentionDays > 0 {
			cleanupScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays, logger)
			if err := cleanupScheduler.Start(taskCtx); err != nil {
				logger.Fatal("failed to start audit cleanup scheduler", zap.Error(err))
			}
		}
	} else {
		logger.Info("task queue disabled; words are enriched on first definition lookup")
	}

	authService := NewAuthService(db, cfg)
	if !authService.GoogleEnabled() {
		logger.Info("google sign-in disabled; set GOOGLE_CLIENT_ID to enable")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		logger.Fatal("failed to get SQL DB for sessions", zap.Error(err))
	}
	// The sqlite3store session table only exists on SQLite.
	if db.Dialect() != "sqlite" {
		sqlDB = nil
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		logger.Fatal("failed to initialize session manager", zap.Error(err))
	}

	authController := auth.NewAuthController(authService, sessionManager, cfg.Auth, logger)
	defer authController.Stop()
	authController.SetAuditor(auditor)

	var csrfSecret []byte
	if cfg.Auth.CSRFEnabled {
		csrfSecret, err = loadCSRFSecret(cfg.Auth.SessionSecret)
		if err != nil {
			logger.Fatal("failed to prepare CSRF secret", zap.Error(err))
		}
		if cfg.Auth.SessionSecret == "" {
			logger.Warn("generated CSRF secret; set AUTH_SESSION_SECRET to persist it across restarts")
		}
	}

	if count, err := authService.CountUsers(); err == nil && count == 0 {
		logger.Info("no users yet; register via POST /register and promote with 'wordtrack set-role'")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Logger:         logger,
		AuthService:    authService,
		AuthController: authController,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Auditor:        auditor,
		Vocabulary:     vocab,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		if enrichScheduler != nil {
			enrichScheduler.Stop()
		}
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, logger, onShutdown)
}

// loadCSRFSecret decodes a hex secret, falls back to raw bytes, and
// generates one when none is configured.
func loadCSRFSecret(configured string) ([]byte, error) {
	if configured == "" {
		generated, err := auth.GenerateSessionSecret()
		if err != nil {
			return nil, err
		}
		configured = generated
	}
	if secret, err := hex.DecodeString(configured); err == nil && len(secret) == 32 {
		return secret, nil
	}
	if len(configured) < 32 {
		return nil, errors.New("AUTH_SESSION_SECRET must be 32 bytes or 64 hex characters")
	}
	return []byte(configured)[:32], nil
}
