package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wordtrack/wordtrack/internal/audit"
	"github.com/wordtrack/wordtrack/internal/config"
	"github.com/wordtrack/wordtrack/internal/entities"
)

// Auditor records authentication attempts.
type Auditor interface {
	LogAuth(userID uint, action string, src audit.Source, success bool)
}

// AuthController handles registration, login and logout.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	auditor        Auditor
	logger         *zap.Logger
}

// NewAuthController creates a new authentication controller.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, logger *zap.Logger) *AuthController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:    cfg.MaxLoginAttempts,
			WindowDuration: cfg.RateLimitWindow,
		}),
		logger: logger.Named("auth"),
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.POST("/register", ac.Register)
	router.POST("/login", ac.Login)
	router.POST("/auth/google", ac.GoogleLogin)
	router.POST("/logout", RequireAuth(), ac.Logout)
}

// SetAuditor enables the audit trail for sign-in events.
func (ac *AuthController) SetAuditor(a Auditor) {
	ac.auditor = a
}

func (ac *AuthController) audit(c *gin.Context, userID uint, action string, success bool) {
	if ac.auditor == nil {
		return
	}
	ac.auditor.LogAuth(userID, action, audit.SourceFromGin(c), success)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	if ac.rateLimiter != nil {
		ac.rateLimiter.Stop()
	}
}

type registerRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

type loginResponse struct {
	Msg      string `json:"msg"`
	UserName string `json:"userName"`
	UserID   uint   `json:"userId"`
}

// Register creates a local account. It does not log the user in.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("display_name, email and password are required", "bad_request"))
		return
	}

	user, err := ac.service.Register(req.DisplayName, req.Email, req.Password)
	if err != nil {
		ac.respondError(c, err)
		return
	}

	ac.logger.Info("user registered", zap.Uint("user_id", user.ID))
	ac.audit(c, user.ID, "register", true)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login verifies email and password and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("email and password are required", "bad_request"))
		return
	}

	ip := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(ip, req.Email); !allowed {
		abortTooManyAttempts(c, retryAfter)
		return
	}

	user, err := ac.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			ac.rateLimiter.RecordFailure(ip, req.Email)
		}
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUserInactive) {
			ac.audit(c, 0, "login", false)
		}
		ac.respondError(c, err)
		return
	}
	ac.rateLimiter.RecordSuccess(ip, req.Email)

	if ac.startSession(c, user) {
		ac.audit(c, user.ID, "login", true)
	}
}

// GoogleLogin exchanges a Google access token for a session.
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("token is required", "bad_request"))
		return
	}

	user, err := ac.service.GoogleLogin(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, ErrInvalidGoogleToken) || errors.Is(err, ErrUserInactive) {
			ac.audit(c, 0, "google_login", false)
		}
		ac.respondError(c, err)
		return
	}

	if ac.startSession(c, user) {
		ac.audit(c, user.ID, "google_login", true)
	}
}

// startSession reports whether the session was created and the response sent.
func (ac *AuthController) startSession(c *gin.Context, user *entities.User) bool {
	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.logger.Error("failed to create session", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("internal server error", "internal"))
		return false
	}

	c.JSON(http.StatusOK, loginResponse{
		Msg:      "Logged in successfully",
		UserName: user.DisplayName,
		UserID:   user.ID,
	})
	return true
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := GetUserID(c)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		ac.logger.Error("failed to destroy session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("internal server error", "internal"))
		return
	}
	ac.audit(c, userID, "logout", true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// respondError maps service errors to status codes.
func (ac *AuthController) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmailInvalid),
		errors.Is(err, ErrDisplayNameRequired),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, errorBody(err.Error(), "bad_request"))
	case errors.Is(err, ErrUserExists):
		c.JSON(http.StatusConflict, errorBody("email is already registered", "conflict"))
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidGoogleToken):
		c.JSON(http.StatusUnauthorized, errorBody(err.Error(), "unauthorized"))
	case errors.Is(err, ErrUserInactive):
		c.JSON(http.StatusForbidden, errorBody(err.Error(), "forbidden"))
	case errors.Is(err, ErrGoogleDisabled):
		c.JSON(http.StatusNotFound, errorBody(err.Error(), "not_found"))
	case errors.Is(err, ErrGoogleUnavailable):
		ac.logger.Warn("google sign-in failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, errorBody(ErrGoogleUnavailable.Error(), "upstream_error"))
	default:
		ac.logger.Error("auth request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("internal server error", "internal"))
	}
}
