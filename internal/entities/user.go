package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// User is never physically deleted; deactivation clears IsActive.
type User struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Email           string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	DisplayName     string       `gorm:"size:100;not null" json:"displayName"`
	FirstName       string       `gorm:"size:100" json:"firstName"`
	LastName        string       `gorm:"size:100" json:"lastName"`
	PasswordHash    string       `gorm:"size:255" json:"-"`
	Provider        AuthProvider `gorm:"size:20;default:'local'" json:"provider"`
	ProviderSubject string       `gorm:"size:255;index" json:"-"`
	Role            UserRole     `gorm:"size:20;default:'user'" json:"role"`
	IsActive        bool         `gorm:"default:true" json:"isActive"`
	LastLoginAt     *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
