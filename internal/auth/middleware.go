package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wordtrack/wordtrack/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyRole   = "auth_role"
)

// Middleware resolves the caller from the session on every request.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	logger         *zap.Logger
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		logger:         logger.Named("auth"),
	}
}

// Handler loads the session's user into the gin context. Sessions that
// point at a missing or deactivated user are destroyed. It never rejects a
// request; RequireAuth does that.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := m.sessionManager.GetUserID(c.Request)
		if userID == 0 {
			c.Next()
			return
		}

		user, err := m.service.GetUserByID(userID)
		switch {
		case err == nil && user.IsActive:
			setUserContext(c, user)
		case err == nil || errors.Is(err, ErrUserNotFound):
			if destroyErr := m.sessionManager.DestroySession(c.Request); destroyErr != nil {
				m.logger.Warn("failed to destroy stale session", zap.Uint("user_id", userID), zap.Error(destroyErr))
			}
		default:
			m.logger.Error("failed to load session user", zap.Uint("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal server error", "internal"))
			return
		}
		c.Next()
	}
}

func setUserContext(c *gin.Context, user *entities.User) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyRole, user.Role)
}

// RequireAuth rejects requests without an authenticated, active caller.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("authentication required", "unauthorized"))
			return
		}
		c.Next()
	}
}

// RequireRole returns a middleware that requires one of roles.
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	roleSet := make(map[entities.UserRole]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("authentication required", "unauthorized"))
			return
		}
		if !roleSet[GetUserRole(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("insufficient permissions", "forbidden"))
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// IsAdmin reports whether the caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == entities.UserRoleAdmin
}

func errorBody(message, code string) gin.H {
	return gin.H{"error": message, "code": code}
}
