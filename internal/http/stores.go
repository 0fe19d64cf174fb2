package http

import (
	"context"
	"encoding/json"

	"github.com/wordtrack/wordtrack/internal/audit"
	"github.com/wordtrack/wordtrack/internal/auth"
	"github.com/wordtrack/wordtrack/internal/entities"
	"github.com/wordtrack/wordtrack/internal/progress"
	"github.com/wordtrack/wordtrack/internal/vocabulary"
)

// This file collects the service interfaces the HTTP controllers depend on.

// WordService is the per-user word workflow used by WordsController.
type WordService interface {
	AddWord(ctx context.Context, userID uint, text string) (vocabulary.AddResult, error)
	EditWord(ctx context.Context, userID, wordID uint, newText string) (uint, error)
	SetMastered(ctx context.Context, userID, wordID uint, mastered bool) error
	RemoveWord(ctx context.Context, userID, wordID uint) error
	ListWords(ctx context.Context, userID uint) ([]entities.TrackedWord, error)
	WordsOfTheDay(ctx context.Context, userID uint) ([]entities.TrackedWord, error)
	RandomWords(ctx context.Context, n int) ([]entities.Word, error)
}

// DefinitionService reads and overrides cached dictionary data.
type DefinitionService interface {
	Definition(ctx context.Context, text string) (*vocabulary.DefinitionResult, error)
	UpdateDefinition(ctx context.Context, text, audio string, definition json.RawMessage) error
}

// ReportService builds progress reports.
type ReportService interface {
	MonthlyReport(ctx context.Context, userID uint, monthsBack int) (progress.MonthlyReport, error)
}

// VocabularyService combines everything the vocabulary routes need.
type VocabularyService interface {
	WordService
	DefinitionService
	ReportService
}

// UserService manages accounts for UsersController.
type UserService interface {
	GetUserByID(id uint) (*entities.User, error)
	ListUsers() ([]entities.User, error)
	UpdateProfile(userID uint, update auth.ProfileUpdate) error
	SetActive(userID uint, active bool) error
}

// AccountAuditor records account changes and serves the audit log.
type AccountAuditor interface {
	LogAccount(actorID, targetID uint, action, description string, src audit.Source)
	Events(userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}
