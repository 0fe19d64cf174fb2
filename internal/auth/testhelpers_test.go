package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wordtrack/wordtrack/internal/config"
	"github.com/wordtrack/wordtrack/internal/database"
)

func testAuthConfig() config.Auth {
	return config.Auth{
		SessionCookieName: "test_session",
		SessionLifetime:   24 * time.Hour,
		BcryptCost:        bcrypt.MinCost,
		SecureCookies:     false,
		MaxLoginAttempts:  3,
		RateLimitWindow:   time.Hour,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Path:     filepath.Join(t.TempDir(), "auth.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

type stubGoogle struct {
	profiles map[string]*GoogleProfile
}

func (s *stubGoogle) Verify(_ context.Context, token string) (*GoogleProfile, error) {
	profile, ok := s.profiles[token]
	if !ok {
		return nil, ErrInvalidGoogleToken
	}
	return profile, nil
}

func setupTestService(t *testing.T) *Service {
	t.Helper()
	google := &stubGoogle{profiles: map[string]*GoogleProfile{
		"ada-token": {Subject: "g-1", Email: "ada@example.com", EmailVerified: true, Name: "Ada Lovelace", GivenName: "Ada", FamilyName: "Lovelace"},
	}}
	return NewService(setupTestDB(t), testAuthConfig(), google)
}

type testServer struct {
	router     *gin.Engine
	service    *Service
	controller *AuthController
	cookies    []*http.Cookie
}

func setupTestRouter(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	cfg := testAuthConfig()
	google := &stubGoogle{profiles: map[string]*GoogleProfile{
		"ada-token": {Subject: "g-1", Email: "ada@example.com", EmailVerified: true, Name: "Ada Lovelace"},
	}}
	svc := NewService(db, cfg, google)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sm, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)

	controller := NewAuthController(svc, sm, cfg, nil)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(NewMiddleware(svc, sm, nil).Handler())
	controller.RegisterRoutes(router)

	router.GET("/protected", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return &testServer{router: router, service: svc, controller: controller}
}

// do sends a JSON request carrying the cookies collected so far.
func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == "test_session" {
			s.cookies = []*http.Cookie{c}
		}
	}
	return w
}
