package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wordtrack/wordtrack/internal/auth"
	"github.com/wordtrack/wordtrack/internal/entities"
	"github.com/wordtrack/wordtrack/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(logging.Middleware(logger))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(500, ErrorResponse{Error: "internal server error", Code: codeInternal})
	}))

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
		router.Use(auth.NewMiddleware(cfg.AuthService, cfg.SessionManager, logger).Handler())
	}

	// Health endpoints (no auth required)
	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)
	router.GET("/ping", healthController.Ping)

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	protected := router.Group("/", auth.RequireAuth())

	if cfg.AuthService != nil {
		users := NewUsersController(cfg.AuthService, cfg.Auditor)
		protected.GET("/users/:id", users.GetUser)
		protected.PUT("/users/:id/edit", users.EditUser)
		protected.PUT("/users/:id/status", users.SetStatus)
		protected.GET("/users", auth.RequireRole(entities.UserRoleAdmin), users.ListUsers)
	}

	if cfg.Auditor != nil {
		auditLog := NewAuditController(cfg.Auditor)
		protected.GET("/audit", auth.RequireRole(entities.UserRoleAdmin), auditLog.GetAuditEvents)
	}

	if cfg.Vocabulary != nil {
		words := NewWordsController(cfg.Vocabulary)
		protected.GET("/allwords", words.ListAll)
		protected.GET("/words", words.WordsOfTheDay)
		protected.GET("/words/random", words.Random)
		protected.POST("/new", words.Add)
		protected.PUT("/word/:id/update", words.SetMastered)
		protected.PUT("/word/:id/edit", words.Edit)
		protected.DELETE("/word/:id/delete", words.Delete)

		definitions := NewDefinitionsController(cfg.Vocabulary)
		protected.GET("/:word/definition", definitions.Get)
		protected.PUT("/definition/update", definitions.Update)

		reports := NewProgressController(cfg.Vocabulary)
		protected.GET("/word/data/:selectedMonth", reports.Monthly)
	}

	router.NoRoute(func(c *gin.Context) {
		respondNotFound(c, "route")
	})

	return router
}
