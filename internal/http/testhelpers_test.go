package http

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
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/wordtrack/wordtrack/internal/audit"
	"github.com/wordtrack/wordtrack/internal/auth"
	"github.com/wordtrack/wordtrack/internal/config"
	"github.com/wordtrack/wordtrack/internal/database"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	"github.com/wordtrack/wordtrack/internal/vocabulary"
)

const testCookieName = "test_session"

type stubDictionary struct {
	entries map[string]*dictionary.LookupResult
}

func (d *stubDictionary) Name() string { return "stub" }

func (d *stubDictionary) Lookup(_ context.Context, word string, _ dictionary.LanguagePair) (*dictionary.LookupResult, error) {
	result, ok := d.entries[word]
	if !ok {
		return nil, dictionary.ErrWordNotFound
	}
	return result, nil
}

type testApp struct {
	router *gin.Engine
	auth   *auth.Service
	db     *database.Database
}

// setupTestApp wires the full router over a temporary SQLite database with
// the clock fixed at 2024-03-20 10:00 UTC.
func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(config.Database{
		Path:     filepath.Join(t.TempDir(), "http.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	authCfg := config.Auth{
		SessionCookieName: testCookieName,
		SessionLifetime:   time.Hour,
		BcryptCost:        bcrypt.MinCost,
		MaxLoginAttempts:  5,
		RateLimitWindow:   time.Minute,
	}
	authService := auth.NewService(db.DB, authCfg, nil)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager(sqlDB, authCfg)
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	authController := auth.NewAuthController(authService, sessions, authCfg, logger)
	t.Cleanup(authController.Stop)
	auditor := audit.NewService(db.DB, logger)
	authController.SetAuditor(auditor)

	dict := &stubDictionary{entries: map[string]*dictionary.LookupResult{
		"hello": {
			Word:        "hello",
			AudioURL:    "https://audio.example/hello.mp3",
			Definitions: []dictionary.Definition{{PartOfSpeech: "exclamation", Definition: "a greeting"}},
		},
	}}
	now := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	vocab := vocabulary.NewService(db.DB, dict, vocabulary.Config{
		Now: func() time.Time { return now },
	}, logger)

	router := NewRouter(RouterConfig{
		Database:       db,
		Logger:         logger,
		AuthService:    authService,
		AuthController: authController,
		SessionManager: sessions,
		Auditor:        auditor,
		Vocabulary:     vocab,
		Version:        "test",
	})

	return &testApp{router: router, auth: authService, db: db}
}

// testClient keeps one caller's session cookie between requests.
type testClient struct {
	app    *testApp
	cookie *http.Cookie
	userID uint
}

func (a *testApp) anonymous() *testClient {
	return &testClient{app: a}
}

// signUp registers an account and logs it in.
func (a *testApp) signUp(t *testing.T, name, email string) *testClient {
	t.Helper()
	client := a.anonymous()

	w := client.do(t, http.MethodPost, "/register", map[string]string{
		"display_name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = client.do(t, http.MethodPost, "/login", map[string]string{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, client.cookie)

	var login struct {
		UserID uint `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	client.userID = login.UserID
	return client
}

func (c *testClient) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	w := httptest.NewRecorder()
	c.app.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookieName {
			c.cookie = cookie
		}
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
