// Package users provides database operations for the credential store.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.FindByEmail("ada@example.com")
package users

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wordtrack/wordtrack/internal/database"
	"github.com/wordtrack/wordtrack/internal/entities"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("email already registered")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user. The unique email index decides races between
// concurrent registrations.
func (r *Repository) Create(user *entities.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by ID.
func (r *Repository) FindByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// FindByEmail retrieves a user by exact email.
func (r *Repository) FindByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// EmailTakenByOther reports whether another user already owns email.
func (r *Repository) EmailTakenByOther(email string, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("email = ? AND id <> ?", email, userID).
		Count(&count).Error
	return count > 0, err
}

// List returns all users ordered by ID.
func (r *Repository) List() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("id ASC").Find(&users).Error
	return users, err
}

// Update writes the given column updates for a user.
func (r *Repository) Update(id uint, updates map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		if database.IsUniqueViolation(result.Error) {
			return ErrUserExists
		}
		return fmt.Errorf("update user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActive flips the soft-deactivation flag.
func (r *Repository) SetActive(id uint, active bool) error {
	// Updates with a map so false is written.
	return r.Update(id, map[string]any{"is_active": active})
}

// SetRole changes a user's role.
func (r *Repository) SetRole(id uint, role entities.UserRole) error {
	return r.Update(id, map[string]any{"role": role})
}

// TouchLogin records a successful login.
func (r *Repository) TouchLogin(id uint, at time.Time) error {
	return r.Update(id, map[string]any{"last_login_at": at})
}

// Count returns the number of users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

func notFound(err error) error {
	if database.IsNotFound(err) {
		return ErrUserNotFound
	}
	return err
}
