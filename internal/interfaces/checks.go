package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/wordtrack/wordtrack/internal/audit"
	"github.com/wordtrack/wordtrack/internal/auth"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	"github.com/wordtrack/wordtrack/internal/http"
	"github.com/wordtrack/wordtrack/internal/scheduler"
	"github.com/wordtrack/wordtrack/internal/tasks"
	"github.com/wordtrack/wordtrack/internal/vocabulary"
)

// =============================================================================
// Services
// =============================================================================

// VocabularyService implementations
var _ http.VocabularyService = (*vocabulary.Service)(nil)

// UserService implementations
var _ http.UserService = (*auth.Service)(nil)

// Audit trail implementations
var _ http.AccountAuditor = (*audit.Service)(nil)
var _ auth.Auditor = (*audit.Service)(nil)

// =============================================================================
// External Services
// =============================================================================

// DictionaryClient implementations
var _ dictionary.Client = (*dictionary.FreeDictionaryClient)(nil)

// GoogleVerifier implementations
var _ auth.GoogleVerifier = (*auth.GoogleUserInfoClient)(nil)

// =============================================================================
// Background Work
// =============================================================================

// WordEnricher implementations
var _ tasks.WordEnricher = (*vocabulary.Service)(nil)

// Enqueuer implementations
var _ vocabulary.Enqueuer = (*tasks.Client)(nil)
var _ scheduler.PendingEnqueuer = (*tasks.Client)(nil)
var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)

// AuditEventCleaner implementations
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
