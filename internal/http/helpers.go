package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wordtrack/wordtrack/internal/auth"
	"github.com/wordtrack/wordtrack/internal/database/words"
	"github.com/wordtrack/wordtrack/internal/vocabulary"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"` // machine-readable error code
}

// MessageResponse is the plain acknowledgement most mutations return.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// Error codes
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codeUpstream     = "upstream_error"
	codeInternal     = "internal"
)

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: codeBadRequest})
}

func respondForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Error: message, Code: codeForbidden})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: codeNotFound})
}

// respondInternalError records the error for the request logger and sends a
// 500 without exposing it.
func respondInternalError(c *gin.Context, err error, context string) {
	_ = c.Error(fmt.Errorf("%s: %w", context, err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: codeInternal})
}

// respondServiceError maps domain errors to HTTP responses. Unknown errors
// become 500s.
func respondServiceError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, vocabulary.ErrInvalidWord),
		errors.Is(err, vocabulary.ErrInvalidDefinition),
		errors.Is(err, vocabulary.ErrInvalidMonths),
		errors.Is(err, auth.ErrEmailInvalid),
		errors.Is(err, auth.ErrDisplayNameRequired),
		errors.Is(err, auth.ErrNameTooLong),
		errors.Is(err, auth.ErrPasswordTooShort),
		errors.Is(err, auth.ErrPasswordTooLong):
		respondBadRequest(c, rootMessage(err))
	case errors.Is(err, vocabulary.ErrNotTracked):
		respondNotFound(c, "word")
	case errors.Is(err, vocabulary.ErrWordNotFound):
		respondNotFound(c, "word")
	case errors.Is(err, vocabulary.ErrNoDefinition):
		respondNotFound(c, "definition")
	case errors.Is(err, auth.ErrUserNotFound):
		respondNotFound(c, "user")
	case errors.Is(err, words.ErrWordExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "word already exists", Code: codeConflict})
	case errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "email is already registered", Code: codeConflict})
	case errors.Is(err, vocabulary.ErrUpstream):
		_ = c.Error(fmt.Errorf("%s: %w", context, err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "dictionary lookup failed", Code: codeUpstream})
	default:
		respondInternalError(c, err, context)
	}
}

// rootMessage returns the message of the innermost wrapped error.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// --- Success Response Helpers ---

func respondMsg(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageResponse{Msg: msg})
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
