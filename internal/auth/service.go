package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/wordtrack/wordtrack/internal/config"
	"github.com/wordtrack/wordtrack/internal/database/users"
	"github.com/wordtrack/wordtrack/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound        = users.ErrUserNotFound
	ErrUserExists          = users.ErrUserExists
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserInactive        = errors.New("account is inactive")
	ErrEmailInvalid        = errors.New("invalid email format")
	ErrDisplayNameRequired = errors.New("display name must be 1-100 characters")
	ErrNameTooLong         = errors.New("first and last name must be at most 100 characters")
	ErrInvalidRole         = errors.New("invalid role")
	ErrGoogleDisabled      = errors.New("google sign-in is not configured")
)

// Service handles authentication and user management.
type Service struct {
	users  *users.Repository
	config config.Auth
	google GoogleVerifier
	now    func() time.Time
}

// NewService creates a new authentication service. google may be nil to
// disable Google sign-in.
func NewService(db *gorm.DB, cfg config.Auth, google GoogleVerifier) *Service {
	return &Service{
		users:  users.NewRepository(db),
		config: cfg,
		google: google,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a local account.
func (s *Service) Register(displayName, email, password string) (*entities.User, error) {
	displayName = strings.TrimSpace(displayName)
	email = strings.TrimSpace(email)

	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		Provider:     entities.AuthProviderLocal,
		Role:         entities.UserRoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates credentials and returns the user. Unknown email,
// wrong password and Google-only accounts are indistinguishable to the
// caller. A correct password on a deactivated account yields
// ErrUserInactive.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	user, err := s.users.FindByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	s.touchLogin(user)
	return user, nil
}

// GoogleLogin signs in with a Google access token, creating the account on
// first use.
func (s *Service) GoogleLogin(ctx context.Context, accessToken string) (*entities.User, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}
	profile, err := s.google.Verify(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(profile.Email)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		user, err = s.createGoogleUser(profile)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.ProviderSubject == "" && profile.Subject != "" {
		if err := s.users.Update(user.ID, map[string]any{"provider_subject": profile.Subject}); err != nil {
			return nil, fmt.Errorf("failed to link google account: %w", err)
		}
		user.ProviderSubject = profile.Subject
	}

	s.touchLogin(user)
	return user, nil
}

func (s *Service) createGoogleUser(profile *GoogleProfile) (*entities.User, error) {
	displayName := strings.TrimSpace(profile.Name)
	if displayName == "" {
		displayName = strings.SplitN(profile.Email, "@", 2)[0]
	}
	user := &entities.User{
		Email:           profile.Email,
		DisplayName:     truncate(displayName, 100),
		FirstName:       truncate(profile.GivenName, 100),
		LastName:        truncate(profile.FamilyName, 100),
		Provider:        entities.AuthProviderGoogle,
		ProviderSubject: profile.Subject,
		Role:            entities.UserRoleUser,
		IsActive:        true,
	}
	err := s.users.Create(user)
	if errors.Is(err, users.ErrUserExists) {
		// Lost a race with a concurrent first login.
		return s.users.FindByEmail(profile.Email)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) touchLogin(user *entities.User) {
	now := s.now()
	if err := s.users.TouchLogin(user.ID, now); err == nil {
		user.LastLoginAt = &now
	}
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	return s.users.FindByID(id)
}

// ListUsers returns every account.
func (s *Service) ListUsers() ([]entities.User, error) {
	return s.users.List()
}

// CountUsers returns the number of registered accounts.
func (s *Service) CountUsers() (int64, error) {
	return s.users.Count()
}

// ProfileUpdate carries the editable profile fields. A nil or empty
// Password leaves the password unchanged.
type ProfileUpdate struct {
	DisplayName string
	FirstName   string
	LastName    string
	Email       string
	Password    *string
}

// UpdateProfile applies a profile edit. A new email owned by another user
// yields ErrUserExists.
func (s *Service) UpdateProfile(userID uint, update ProfileUpdate) error {
	update.DisplayName = strings.TrimSpace(update.DisplayName)
	update.Email = strings.TrimSpace(update.Email)
	update.FirstName = strings.TrimSpace(update.FirstName)
	update.LastName = strings.TrimSpace(update.LastName)

	if err := validateDisplayName(update.DisplayName); err != nil {
		return err
	}
	if err := validateEmail(update.Email); err != nil {
		return err
	}
	if utf8.RuneCountInString(update.FirstName) > 100 || utf8.RuneCountInString(update.LastName) > 100 {
		return ErrNameTooLong
	}

	taken, err := s.users.EmailTakenByOther(update.Email, userID)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return ErrUserExists
	}

	fields := map[string]any{
		"display_name": update.DisplayName,
		"first_name":   update.FirstName,
		"last_name":    update.LastName,
		"email":        update.Email,
	}
	if update.Password != nil && *update.Password != "" {
		hash, err := HashPassword(*update.Password, s.config.BcryptCost)
		if err != nil {
			return err
		}
		fields["password_hash"] = hash
	}
	return s.users.Update(userID, fields)
}

// GetUserByEmail looks up an account by email.
func (s *Service) GetUserByEmail(email string) (*entities.User, error) {
	return s.users.FindByEmail(strings.TrimSpace(email))
}

// SetActive activates or deactivates an account.
func (s *Service) SetActive(userID uint, active bool) error {
	return s.users.SetActive(userID, active)
}

// SetActiveByEmail is SetActive addressed by email.
func (s *Service) SetActiveByEmail(email string, active bool) error {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return err
	}
	return s.users.SetActive(user.ID, active)
}

// SetRole changes the role of the account with the given email.
func (s *Service) SetRole(email string, role entities.UserRole) error {
	switch role {
	case entities.UserRoleUser, entities.UserRoleAdmin:
	default:
		return ErrInvalidRole
	}
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return err
	}
	return s.users.SetRole(user.ID, role)
}

// GoogleEnabled reports whether Google sign-in is available.
func (s *Service) GoogleEnabled() bool {
	return s.google != nil
}

func validateEmail(email string) error {
	// RFC 5321 limit is 254
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

func validateDisplayName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > 100 {
		return ErrDisplayNameRequired
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
