package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wordtrack/wordtrack/internal/auth"
	"github.com/wordtrack/wordtrack/internal/config"
	"github.com/wordtrack/wordtrack/internal/database"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	"github.com/wordtrack/wordtrack/internal/entities"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.Database{Path: filepath.Join(t.TempDir(), "cli.db"), LogLevel: "silent"},
		Auth:     config.Auth{BcryptCost: bcrypt.MinCost},
		Logging:  config.Logging{Level: "error", Format: "json"},
	}
}

// seedUser registers an account and closes the database again.
func seedUser(t *testing.T, cfg *config.Config, email string) {
	t.Helper()
	db, err := database.NewDatabase(cfg.Database)
	require.NoError(t, err)
	defer db.Close()
	_, err = auth.NewService(db.DB, cfg.Auth, nil).Register("Ada", email, "password123")
	require.NoError(t, err)
}

func loadUser(t *testing.T, cfg *config.Config, email string) entities.User {
	t.Helper()
	db, err := database.NewDatabase(cfg.Database)
	require.NoError(t, err)
	defer db.Close()
	var user entities.User
	require.NoError(t, db.DB.Where("email = ?", email).First(&user).Error)
	return user
}

func auditActions(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	db, err := database.NewDatabase(cfg.Database)
	require.NoError(t, err)
	defer db.Close()
	var actions []string
	require.NoError(t, db.DB.Model(&entities.AuditEvent{}).Order("id").Pluck("action", &actions).Error)
	return actions
}

func TestSetRoleCommand(t *testing.T) {
	cfg := testConfig(t)
	seedUser(t, cfg, "ada@example.com")

	cmd := NewSetRoleCommand(cfg)
	require.Error(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.ParseFlags([]string{"-email", "ada@example.com", "-role", "admin"}))
	require.NoError(t, cmd.Run())

	assert.Equal(t, entities.UserRoleAdmin, loadUser(t, cfg, "ada@example.com").Role)
	assert.Equal(t, []string{"set_role"}, auditActions(t, cfg))

	cmd = NewSetRoleCommand(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"-email", "ada@example.com", "-role", "owner"}))
	assert.ErrorIs(t, cmd.Run(), auth.ErrInvalidRole)
}

func TestSetActiveCommand(t *testing.T) {
	cfg := testConfig(t)
	seedUser(t, cfg, "ada@example.com")

	cmd := NewSetActiveCommand(cfg)
	require.Error(t, cmd.ParseFlags([]string{"-email", "ada@example.com", "-active", "maybe"}))

	cmd = NewSetActiveCommand(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"-email", "ada@example.com", "-active", "false"}))
	require.NoError(t, cmd.Run())
	assert.False(t, loadUser(t, cfg, "ada@example.com").IsActive)
	assert.Equal(t, []string{"set_active"}, auditActions(t, cfg))

	cmd = NewSetActiveCommand(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"-email", "ghost@example.com"}))
	assert.ErrorIs(t, cmd.Run(), auth.ErrUserNotFound)
}

type stubDictionary struct{}

func (stubDictionary) Name() string { return "stub" }

func (stubDictionary) Lookup(_ context.Context, word string, _ dictionary.LanguagePair) (*dictionary.LookupResult, error) {
	if word != "hello" {
		return nil, dictionary.ErrWordNotFound
	}
	return &dictionary.LookupResult{
		Word:        "hello",
		Definitions: []dictionary.Definition{{PartOfSpeech: "exclamation", Definition: "a greeting"}},
	}, nil
}

func TestEnrichWordsCommand(t *testing.T) {
	cfg := testConfig(t)

	db, err := database.NewDatabase(cfg.Database)
	require.NoError(t, err)
	for _, text := range []string{"hello", "qwxz"} {
		require.NoError(t, db.DB.Create(&entities.Word{Text: text, Status: entities.WordStatusPending}).Error)
	}
	require.NoError(t, db.Close())

	cmd := NewEnrichWordsCommand(cfg)
	require.Error(t, cmd.ParseFlags([]string{"-limit", "-1"}))
	require.NoError(t, cmd.ParseFlags(nil))
	cmd.dict = stubDictionary{}
	require.NoError(t, cmd.Run())

	db, err = database.NewDatabase(cfg.Database)
	require.NoError(t, err)
	defer db.Close()

	var words []entities.Word
	require.NoError(t, db.DB.Order("word").Find(&words).Error)
	require.Len(t, words, 2)
	assert.Equal(t, entities.WordStatusEnriched, words[0].Status)
	assert.Contains(t, words[0].Definition, "a greeting")
	assert.Equal(t, entities.WordStatusFailed, words[1].Status)
}
