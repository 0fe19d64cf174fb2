package http

import (
	"go.uber.org/zap"

	"github.com/wordtrack/wordtrack/internal/auth"
	"github.com/wordtrack/wordtrack/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Logger   *zap.Logger

	// Authentication
	AuthService    *auth.Service
	AuthController *auth.AuthController
	SessionManager *auth.SessionManager
	// CSRFSecret enables CSRF protection when non-empty.
	CSRFSecret    []byte
	SecureCookies bool

	// Auditor records account changes and enables GET /audit when set.
	Auditor AccountAuditor

	// Vocabulary operations
	Vocabulary VocabularyService

	// Application info
	Version string
}
