package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/wordtrack/wordtrack/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	UserID    uint // matches actor or target
	EventType entities.AuditEventType
	Limit     int
	Offset    int
}

// Create saves an audit event.
func (r *Repository) Create(event *entities.AuditEvent) error {
	return r.db.Create(event).Error
}

// List returns matching events, most recent first, with the total count.
func (r *Repository) List(f Filter) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	query := r.db.Model(&entities.AuditEvent{})
	if f.UserID > 0 {
		query = query.Where("(user_id = ? OR target_user_id = ?)", f.UserID, f.UserID)
	}
	if f.EventType != "" {
		query = query.Where("event_type = ?", f.EventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&events).Error
	return events, total, err
}

// DeleteOlderThan removes events created before cutoff.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff.UTC()).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
