package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/wordtrack/wordtrack/internal/vocabulary"
)

// WordEnricher fills catalog words with dictionary data.
type WordEnricher interface {
	EnrichWord(ctx context.Context, wordID uint) error
	EnrichPending(ctx context.Context, limit int) (vocabulary.EnrichStats, error)
}

// EnrichWordTask looks up a single catalog word.
type EnrichWordTask struct {
	WordID uint `json:"word_id"`
}

func (t EnrichWordTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_word",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichWordProcessor creates a processor for word enrichment. Words the
// dictionary does not know are marked failed by the enricher and do not
// retry; upstream errors do.
func EnrichWordProcessor(enricher WordEnricher, logger *zap.Logger) backlite.QueueProcessor[EnrichWordTask] {
	return func(ctx context.Context, task EnrichWordTask) error {
		if err := enricher.EnrichWord(ctx, task.WordID); err != nil {
			return fmt.Errorf("enrich word %d: %w", task.WordID, err)
		}
		logger.Debug("word enriched", zap.Uint("word_id", task.WordID))
		return nil
	}
}

func NewEnrichWordQueue(enricher WordEnricher, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(EnrichWordProcessor(enricher, logger))
}

// EnrichPendingWordsTask sweeps words still waiting for dictionary data.
type EnrichPendingWordsTask struct {
	// Limit caps the sweep; 0 means every pending word.
	Limit int `json:"limit,omitempty"`
}

func (t EnrichPendingWordsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_pending_words",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func EnrichPendingWordsProcessor(enricher WordEnricher, logger *zap.Logger) backlite.QueueProcessor[EnrichPendingWordsTask] {
	return func(ctx context.Context, task EnrichPendingWordsTask) error {
		stats, err := enricher.EnrichPending(ctx, task.Limit)
		if err != nil {
			return fmt.Errorf("enrich pending words: %w", err)
		}
		logger.Info("pending words enriched",
			zap.Int("total", stats.Total),
			zap.Int("enriched", stats.Enriched),
			zap.Int("failed", stats.Failed))
		return nil
	}
}

func NewEnrichPendingWordsQueue(enricher WordEnricher, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(EnrichPendingWordsProcessor(enricher, logger))
}
