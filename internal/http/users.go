package http

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wordtrack/wordtrack/internal/audit"
	"github.com/wordtrack/wordtrack/internal/auth"
)

// UsersController serves profile and account-status routes.
type UsersController struct {
	users   UserService
	auditor AccountAuditor
}

// NewUsersController creates the controller. auditor may be nil.
func NewUsersController(users UserService, auditor AccountAuditor) *UsersController {
	return &UsersController{users: users, auditor: auditor}
}

func (uc *UsersController) recordChange(c *gin.Context, targetID uint, action, description string) {
	if uc.auditor == nil {
		return
	}
	uc.auditor.LogAccount(GetUserID(c), targetID, action, description, audit.SourceFromGin(c))
}

type userProfile struct {
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	IsActive    bool   `json:"isActive"`
}

type editUserRequest struct {
	DisplayName string  `json:"displayName" binding:"required"`
	Password    *string `json:"password"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email" binding:"required"`
}

type setStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// GetUser returns the caller's own profile.
func (uc *UsersController) GetUser(c *gin.Context) {
	raw, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || raw == 0 {
		// Shares a tree level with /:word/definition, so GET
		// /users/definition lands here rather than on the definitions route.
		respondNotFound(c, "user")
		return
	}
	id := uint(raw)
	if id != GetUserID(c) {
		respondForbidden(c, "you can only view your own profile")
		return
	}

	user, err := uc.users.GetUserByID(id)
	if err != nil {
		respondServiceError(c, err, "get user")
		return
	}

	c.JSON(200, gin.H{"user": userProfile{
		DisplayName: user.DisplayName,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		IsActive:    user.IsActive,
	}})
}

// EditUser updates the caller's own profile.
func (uc *UsersController) EditUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id != GetUserID(c) {
		respondForbidden(c, "you can only edit your own profile")
		return
	}

	var req editUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "displayName and email are required")
		return
	}

	err := uc.users.UpdateProfile(id, auth.ProfileUpdate{
		DisplayName: req.DisplayName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		respondServiceError(c, err, "update user")
		return
	}
	description := "profile updated"
	if req.Password != nil {
		description = "profile and password updated"
	}
	uc.recordChange(c, id, "profile_update", description)
	respondMsg(c, "User updated successfully")
}

// SetStatus activates or deactivates an account. Owners may change their
// own account; admins may change any.
func (uc *UsersController) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id != GetUserID(c) && !auth.IsAdmin(c) {
		respondForbidden(c, "you can only change your own account status")
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "is_active is required")
		return
	}

	if err := uc.users.SetActive(id, *req.IsActive); err != nil {
		respondServiceError(c, err, "set user status")
		return
	}
	uc.recordChange(c, id, "set_active", fmt.Sprintf("is_active=%t", *req.IsActive))
	if *req.IsActive {
		respondMsg(c, "User activated")
		return
	}
	respondMsg(c, "User deactivated")
}

// ListUsers returns every account. Admin only.
func (uc *UsersController) ListUsers(c *gin.Context) {
	users, err := uc.users.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(200, users)
}
