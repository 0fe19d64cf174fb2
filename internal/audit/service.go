// Package audit records sign-in attempts and account changes.
package audit

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditRepo "github.com/wordtrack/wordtrack/internal/database/audit"
	"github.com/wordtrack/wordtrack/internal/entities"
	"github.com/wordtrack/wordtrack/internal/logging"
)

// Source identifies where an audited request came from.
type Source struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// SourceFromGin extracts the request origin from a gin context.
func SourceFromGin(c *gin.Context) Source {
	return Source{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: logging.RequestID(c),
	}
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *auditRepo.Repository
	logger *zap.Logger
}

// NewService creates a new audit service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: auditRepo.NewRepository(db), logger: logger.Named("audit")}
}

// LogAuth records an authentication attempt. userID is 0 when the caller
// could not be identified.
func (s *Service) LogAuth(userID uint, action string, src Source, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.record(event, src)
}

// LogAccount records a change made by actorID to targetID's account.
// actorID is 0 for changes made from the command line.
func (s *Service) LogAccount(actorID, targetID uint, action, description string, src Source) {
	s.record(&entities.AuditEvent{
		UserID:       actorID,
		TargetUserID: &targetID,
		EventType:    entities.AuditEventAccount,
		Action:       action,
		Description:  truncate(description, 500),
		Status:       entities.AuditStatusSuccess,
	}, src)
}

// Events lists events involving userID (0 = all), most recent first.
func (s *Service) Events(userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.List(auditRepo.Filter{
		UserID:    userID,
		EventType: eventType,
		Limit:     limit,
		Offset:    offset,
	})
}

// DeleteOldEvents removes events older than retention.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(time.Now().UTC().Add(-retention))
}

// record never fails the caller; a lost audit row is logged instead.
func (s *Service) record(event *entities.AuditEvent, src Source) {
	event.IPAddress = truncate(src.IPAddress, 45)
	event.UserAgent = truncate(src.UserAgent, 500)
	event.RequestID = src.RequestID

	if err := s.repo.Create(event); err != nil {
		s.logger.Error("failed to record audit event",
			zap.String("action", event.Action),
			zap.Uint("user_id", event.UserID),
			zap.Error(err))
	}
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
