package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wordtrack/wordtrack/internal/vocabulary"
)

type fakeEnricher struct {
	mu       sync.Mutex
	enriched []uint
	sweeps   []int
	err      error
	done     chan uint
}

func (f *fakeEnricher) EnrichWord(_ context.Context, wordID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.enriched = append(f.enriched, wordID)
	if f.done != nil {
		f.done <- wordID
	}
	return nil
}

func (f *fakeEnricher) EnrichPending(_ context.Context, limit int) (vocabulary.EnrichStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return vocabulary.EnrichStats{}, f.err
	}
	f.sweeps = append(f.sweeps, limit)
	return vocabulary.EnrichStats{Total: 3, Enriched: 2, Failed: 1}, nil
}

func TestEnrichWordProcessor(t *testing.T) {
	enricher := &fakeEnricher{}
	process := EnrichWordProcessor(enricher, zaptest.NewLogger(t))

	require.NoError(t, process(context.Background(), EnrichWordTask{WordID: 7}))
	assert.Equal(t, []uint{7}, enricher.enriched)

	enricher.err = vocabulary.ErrUpstream
	err := process(context.Background(), EnrichWordTask{WordID: 8})
	assert.True(t, errors.Is(err, vocabulary.ErrUpstream))
}

func TestEnrichPendingWordsProcessor(t *testing.T) {
	enricher := &fakeEnricher{}
	process := EnrichPendingWordsProcessor(enricher, zaptest.NewLogger(t))

	require.NoError(t, process(context.Background(), EnrichPendingWordsTask{Limit: 50}))
	assert.Equal(t, []int{50}, enricher.sweeps)

	enricher.err = errors.New("database is locked")
	assert.Error(t, process(context.Background(), EnrichPendingWordsTask{}))
}

func TestClient_EnqueueWordEnrichment(t *testing.T) {
	cfg := testConfig()
	logger := zaptest.NewLogger(t)

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg, logger)
	require.NoError(t, err)
	defer client.Close()

	enricher := &fakeEnricher{done: make(chan uint, 2)}
	client.Register(NewEnrichWordQueue(enricher, logger), NewEnrichPendingWordsQueue(enricher, logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	require.NoError(t, client.EnqueueWordEnrichment())
	require.NoError(t, client.EnqueueWordEnrichment(11, 12))

	got := map[uint]bool{}
	for len(got) < 2 {
		select {
		case id := <-enricher.done:
			got[id] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("enriched %v before timeout", got)
		}
	}
	assert.Equal(t, map[uint]bool{11: true, 12: true}, got)

	taskID, err := client.EnqueuePendingEnrichment(0)
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)
}
