package auth

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordtrack/wordtrack/internal/audit"
	"github.com/wordtrack/wordtrack/internal/entities"
)

func TestHandlers_RegisterLoginLogout(t *testing.T) {
	srv := setupTestRouter(t)

	w := srv.do(t, http.MethodPost, "/register", map[string]string{
		"display_name": "Ada", "email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = srv.do(t, http.MethodGet, "/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "Ada", login.UserName)
	assert.NotZero(t, login.UserID)
	require.NotEmpty(t, srv.cookies)

	w = srv.do(t, http.MethodGet, "/protected", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlers_RegisterErrors(t *testing.T) {
	srv := setupTestRouter(t)
	body := map[string]string{"display_name": "Ada", "email": "ada@example.com", "password": "password123"}
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/register", body).Code)

	w := srv.do(t, http.MethodPost, "/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"conflict"`)

	w = srv.do(t, http.MethodPost, "/register", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/register", map[string]string{
		"display_name": "Bob", "email": "bob@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_LoginRateLimit(t *testing.T) {
	srv := setupTestRouter(t)
	_, err := srv.service.Register("Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	bad := map[string]string{"email": "ada@example.com", "password": "wrong-password"}
	for i := 0; i < 3; i++ {
		w := srv.do(t, http.MethodPost, "/login", bad)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := srv.do(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestHandlers_InactiveUser(t *testing.T) {
	srv := setupTestRouter(t)
	user, err := srv.service.Register("Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	w := srv.do(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, srv.service.SetActive(user.ID, false))

	w = srv.do(t, http.MethodGet, "/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandlers_GoogleLogin(t *testing.T) {
	srv := setupTestRouter(t)

	w := srv.do(t, http.MethodPost, "/auth/google", map[string]string{"token": "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodPost, "/auth/google", map[string]string{"token": "ada-token"})
	require.Equal(t, http.StatusOK, w.Code)
	var login loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, "Ada Lovelace", login.UserName)

	w = srv.do(t, http.MethodGet, "/protected", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_RequireRole(t *testing.T) {
	srv := setupTestRouter(t)
	_, err := srv.service.Register("Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	w := srv.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "password123",
	}).Code)

	w = srv.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Role changes apply to existing sessions.
	require.NoError(t, srv.service.SetRole("ada@example.com", entities.UserRoleAdmin))
	w = srv.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

type recordedAuth struct {
	userID  uint
	action  string
	success bool
}

type recordingAuditor struct {
	events []recordedAuth
}

func (r *recordingAuditor) LogAuth(userID uint, action string, src audit.Source, success bool) {
	r.events = append(r.events, recordedAuth{userID: userID, action: action, success: success})
}

func TestHandlers_AuditTrail(t *testing.T) {
	srv := setupTestRouter(t)
	auditor := &recordingAuditor{}
	srv.controller.SetAuditor(auditor)

	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/register", map[string]string{
		"display_name": "Ada", "email": "ada@example.com", "password": "password123",
	}).Code)
	require.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	}).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/login", map[string]string{
		"email": "ada@example.com", "password": "password123",
	}).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/logout", nil).Code)

	require.Len(t, auditor.events, 4)
	userID := auditor.events[0].userID
	assert.NotZero(t, userID)
	assert.Equal(t, recordedAuth{userID: userID, action: "register", success: true}, auditor.events[0])
	assert.Equal(t, recordedAuth{userID: 0, action: "login", success: false}, auditor.events[1])
	assert.Equal(t, recordedAuth{userID: userID, action: "login", success: true}, auditor.events[2])
	assert.Equal(t, recordedAuth{userID: userID, action: "logout", success: true}, auditor.events[3])
}
