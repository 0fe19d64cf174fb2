package entities

import "time"

type AuditEventType string

const (
	AuditEventAuth    AuditEventType = "auth"
	AuditEventAccount AuditEventType = "account"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent records a sign-in attempt or a change to an account.
type AuditEvent struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"index" json:"userId"`                 // actor, 0 when unknown
	TargetUserID *uint          `gorm:"index" json:"targetUserId,omitempty"` // account acted on
	EventType    AuditEventType `gorm:"index;size:50" json:"eventType"`
	Action       string         `gorm:"size:100" json:"action"` // e.g. "login", "set_role"
	Description  string         `gorm:"size:500" json:"description,omitempty"`
	IPAddress    string         `gorm:"size:45" json:"ipAddress,omitempty"`
	UserAgent    string         `gorm:"size:500" json:"userAgent,omitempty"`
	RequestID    string         `gorm:"size:64" json:"requestId,omitempty"`
	Status       AuditStatus    `gorm:"size:20" json:"status"`
	CreatedAt    time.Time      `gorm:"index" json:"createdAt"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
