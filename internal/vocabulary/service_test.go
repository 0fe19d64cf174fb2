package vocabulary

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/wordtrack/wordtrack/internal/config"
	"github.com/wordtrack/wordtrack/internal/database"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	"github.com/wordtrack/wordtrack/internal/entities"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeDictionary struct {
	mu      sync.Mutex
	entries map[string]*dictionary.LookupResult
	err     error
	calls   int
}

func (f *fakeDictionary) Name() string { return "fake" }

func (f *fakeDictionary) Lookup(_ context.Context, word string, _ dictionary.LanguagePair) (*dictionary.LookupResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	result, ok := f.entries[word]
	if !ok {
		return nil, dictionary.ErrWordNotFound
	}
	return result, nil
}

type fakeEnqueuer struct {
	mu  sync.Mutex
	ids []uint
}

func (f *fakeEnqueuer) EnqueueWordEnrichment(ids ...uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, ids...)
	return nil
}

type testEnv struct {
	svc   *Service
	db    *gorm.DB
	clock *fakeClock
	dict  *fakeDictionary
	queue *fakeEnqueuer
}

func setupService(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Path:     filepath.Join(t.TempDir(), "vocabulary.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := &fakeClock{now: time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)}
	dict := &fakeDictionary{entries: map[string]*dictionary.LookupResult{
		"hello": {
			Word:        "hello",
			AudioURL:    "https://audio.example/hello.mp3",
			Definitions: []dictionary.Definition{{PartOfSpeech: "exclamation", Definition: "a greeting"}},
		},
	}}
	queue := &fakeEnqueuer{}

	svc := NewService(db.DB, dict, Config{Now: clock.Now}, zaptest.NewLogger(t))
	svc.SetEnqueuer(queue)
	return &testEnv{svc: svc, db: db.DB, clock: clock, dict: dict, queue: queue}
}

func (e *testEnv) createUser(t *testing.T, email string) uint {
	t.Helper()
	user := entities.User{Email: email, DisplayName: email, IsActive: true}
	require.NoError(t, e.db.Create(&user).Error)
	return user.ID
}

func (e *testEnv) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(model).Count(&count).Error)
	return count
}

func TestService_AddWord(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	first, err := env.svc.AddWord(ctx, alice, "  ephemeral ")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.True(t, first.NewWord)

	again, err := env.svc.AddWord(ctx, alice, "ephemeral")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.WordID, again.WordID)

	shared, err := env.svc.AddWord(ctx, bob, "ephemeral")
	require.NoError(t, err)
	assert.True(t, shared.Created)
	assert.False(t, shared.NewWord)

	assert.Equal(t, int64(1), env.countRows(t, &entities.Word{}))
	assert.Equal(t, int64(2), env.countRows(t, &entities.UserWord{}))
	assert.Equal(t, []uint{first.WordID}, env.queue.ids)
}

func TestService_AddWord_Invalid(t *testing.T) {
	env := setupService(t)
	userID := env.createUser(t, "alice@example.com")

	for _, text := range []string{"", "   ", strings.Repeat("a", 256)} {
		_, err := env.svc.AddWord(context.Background(), userID, text)
		assert.ErrorIs(t, err, ErrInvalidWord)
	}
	assert.Equal(t, int64(0), env.countRows(t, &entities.Word{}))
}

func TestService_AddWord_Concurrent(t *testing.T) {
	env := setupService(t)
	userID := env.createUser(t, "alice@example.com")

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.svc.AddWord(context.Background(), userID, "ephemeral")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if result.Created {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, created)
	assert.Equal(t, int64(1), env.countRows(t, &entities.Word{}))
	assert.Equal(t, int64(1), env.countRows(t, &entities.UserWord{}))
}

func TestService_EditWord_RepointsToExistingWord(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	existing, err := env.svc.AddWord(ctx, bob, "receive")
	require.NoError(t, err)
	typo, err := env.svc.AddWord(ctx, alice, "recieve")
	require.NoError(t, err)

	newID, err := env.svc.EditWord(ctx, alice, typo.WordID, "receive")
	require.NoError(t, err)

	assert.Equal(t, existing.WordID, newID)
	rows, err := env.svc.ListWords(ctx, alice)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, existing.WordID, rows[0].WordID)
	assert.Equal(t, "receive", rows[0].Word)
}

func TestService_EditWord_RenamesWhenSoleOwner(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")

	typo, err := env.svc.AddWord(ctx, alice, "recieve")
	require.NoError(t, err)

	newID, err := env.svc.EditWord(ctx, alice, typo.WordID, "receive")
	require.NoError(t, err)

	assert.Equal(t, typo.WordID, newID)
	assert.Equal(t, int64(1), env.countRows(t, &entities.Word{}))
	var word entities.Word
	require.NoError(t, env.db.First(&word, newID).Error)
	assert.Equal(t, "receive", word.Text)
}

func TestService_EditWord_SharedWordGetsNewEntry(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	typo, err := env.svc.AddWord(ctx, alice, "recieve")
	require.NoError(t, err)
	_, err = env.svc.AddWord(ctx, bob, "recieve")
	require.NoError(t, err)

	newID, err := env.svc.EditWord(ctx, alice, typo.WordID, "receive")
	require.NoError(t, err)

	assert.NotEqual(t, typo.WordID, newID)
	bobWords, err := env.svc.ListWords(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobWords, 1)
	assert.Equal(t, "recieve", bobWords[0].Word)
}

func TestService_EditWord_NotTracked(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	bobs, err := env.svc.AddWord(ctx, bob, "recieve")
	require.NoError(t, err)

	_, err = env.svc.EditWord(ctx, alice, bobs.WordID, "receive")

	assert.ErrorIs(t, err, ErrNotTracked)
}

func TestService_SetMasteredAndRemove(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	added, err := env.svc.AddWord(ctx, alice, "ephemeral")
	require.NoError(t, err)
	_, err = env.svc.AddWord(ctx, bob, "ephemeral")
	require.NoError(t, err)

	require.NoError(t, env.svc.SetMastered(ctx, alice, added.WordID, true))
	require.NoError(t, env.svc.SetMastered(ctx, alice, added.WordID, false))
	rows, err := env.svc.ListWords(ctx, alice)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsMastered)
	assert.Nil(t, rows[0].MasteredAt)

	require.NoError(t, env.svc.RemoveWord(ctx, alice, added.WordID))
	assert.ErrorIs(t, env.svc.RemoveWord(ctx, alice, added.WordID), ErrNotTracked)
	assert.Equal(t, int64(1), env.countRows(t, &entities.Word{}))
	bobWords, err := env.svc.ListWords(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobWords, 1)
}

func TestService_WordsOfTheDay(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	now := env.clock.Now()

	for _, days := range []int{0, 1, 3, 4, 30, 31} {
		env.clock.Set(now.AddDate(0, 0, -days))
		_, err := env.svc.AddWord(ctx, alice, fmt.Sprintf("word-%d", days))
		require.NoError(t, err)
	}
	env.clock.Set(now)

	rows, err := env.svc.WordsOfTheDay(ctx, alice)
	require.NoError(t, err)

	var got []string
	for _, row := range rows {
		got = append(got, row.Word)
	}
	assert.Equal(t, []string{"word-0", "word-1", "word-4", "word-30"}, got)
}

func TestService_MonthlyReport(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")

	env.clock.Set(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))
	added, err := env.svc.AddWord(ctx, alice, "february")
	require.NoError(t, err)
	env.clock.Set(time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))
	require.NoError(t, env.svc.SetMastered(ctx, alice, added.WordID, true))

	report, err := env.svc.MonthlyReport(ctx, alice, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, report.Months)
	assert.Equal(t, []int64{0, 1, 0}, report.WordsAdded)
	assert.Equal(t, []int64{0, 0, 1}, report.WordsMastered)
}

func TestService_MonthlyReport_Invalid(t *testing.T) {
	env := setupService(t)
	alice := env.createUser(t, "alice@example.com")

	for _, n := range []int{0, -2, 121} {
		_, err := env.svc.MonthlyReport(context.Background(), alice, n)
		assert.ErrorIs(t, err, ErrInvalidMonths)
	}
}

func TestService_Definition_LooksUpAndCaches(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	_, err := env.svc.AddWord(ctx, alice, "hello")
	require.NoError(t, err)

	first, err := env.svc.Definition(ctx, "hello")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "https://audio.example/hello.mp3", first.Audio)

	second, err := env.svc.Definition(ctx, "hello")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.JSONEq(t, string(first.Definition), string(second.Definition))
	assert.Equal(t, 1, env.dict.calls)
}

func TestService_Definition_Errors(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	_, err := env.svc.Definition(ctx, "qwzx")
	assert.ErrorIs(t, err, ErrNoDefinition)

	env.dict.err = fmt.Errorf("%w: boom", dictionary.ErrUpstream)
	_, err = env.svc.Definition(ctx, "hello")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestService_UpdateDefinition(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	_, err := env.svc.AddWord(ctx, alice, "ephemeral")
	require.NoError(t, err)

	err = env.svc.UpdateDefinition(ctx, "ephemeral", "https://audio/e.mp3", json.RawMessage(`{"definitions":[]}`))
	require.NoError(t, err)

	result, err := env.svc.Definition(ctx, "ephemeral")
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, "https://audio/e.mp3", result.Audio)
	assert.JSONEq(t, `{"definitions":[]}`, string(result.Definition))

	err = env.svc.UpdateDefinition(ctx, "missing", "", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrWordNotFound)

	err = env.svc.UpdateDefinition(ctx, "ephemeral", "", json.RawMessage(`{broken`))
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestService_EnrichPending(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	for _, text := range []string{"hello", "qwzx"} {
		_, err := env.svc.AddWord(ctx, alice, text)
		require.NoError(t, err)
	}

	stats, err := env.svc.EnrichPending(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, EnrichStats{Total: 2, Enriched: 1, Failed: 1}, stats)
	ids, err := env.svc.PendingWordIDs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	var failed entities.Word
	require.NoError(t, env.db.Where("word = ?", "qwzx").First(&failed).Error)
	assert.Equal(t, entities.WordStatusFailed, failed.Status)
}

func TestService_EnrichWord_UpstreamFailureStaysPending(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice@example.com")
	added, err := env.svc.AddWord(ctx, alice, "hello")
	require.NoError(t, err)

	env.dict.err = fmt.Errorf("%w: status 503", dictionary.ErrUpstream)
	err = env.svc.EnrichWord(ctx, added.WordID)
	assert.ErrorIs(t, err, ErrUpstream)

	ids, err := env.svc.PendingWordIDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{added.WordID}, ids)

	env.dict.err = nil
	require.NoError(t, env.svc.EnrichWord(ctx, added.WordID))

	var word entities.Word
	require.NoError(t, env.db.First(&word, added.WordID).Error)
	assert.Equal(t, entities.WordStatusEnriched, word.Status)
	assert.Empty(t, word.EnrichmentError)
}
