package vocabulary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wordtrack/wordtrack/internal/database/words"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	"github.com/wordtrack/wordtrack/internal/entities"
)

// DefinitionResult is what callers see for a word's dictionary data.
type DefinitionResult struct {
	Word       string          `json:"word"`
	Audio      string          `json:"audio"`
	Definition json.RawMessage `json:"definition"`
	Cached     bool            `json:"-"`
}

// Definition returns dictionary data for text. Cached catalog data wins;
// otherwise the dictionary is queried and the answer cached on the catalog
// entry when one exists.
func (s *Service) Definition(ctx context.Context, text string) (*DefinitionResult, error) {
	text, err := normalizeWord(text)
	if err != nil {
		return nil, err
	}

	repo := s.words.WithTx(s.db.WithContext(ctx))
	word, err := repo.FindByText(text)
	if err != nil && !errors.Is(err, words.ErrWordNotFound) {
		return nil, err
	}
	if word != nil && word.HasDefinition() {
		return &DefinitionResult{
			Word:       word.Text,
			Audio:      word.Audio,
			Definition: definitionPayload(word.Definition),
			Cached:     true,
		}, nil
	}

	result, err := s.dict.Lookup(ctx, text, s.pair)
	if err != nil {
		return nil, err
	}
	payload, err := result.DefinitionJSON()
	if err != nil {
		return nil, err
	}

	if word != nil {
		if err := repo.UpdateDefinition(word.ID, payload, result.AudioURL); err != nil {
			s.logger.Warn("failed to cache definition", zap.String("word", text), zap.Error(err))
		}
	}

	return &DefinitionResult{
		Word:       text,
		Audio:      result.AudioURL,
		Definition: json.RawMessage(payload),
	}, nil
}

// UpdateDefinition overwrites the cached dictionary data of a catalog word.
func (s *Service) UpdateDefinition(ctx context.Context, text, audio string, definition json.RawMessage) error {
	text, err := normalizeWord(text)
	if err != nil {
		return err
	}
	if len(definition) > 0 && !json.Valid(definition) {
		return ErrInvalidDefinition
	}

	repo := s.words.WithTx(s.db.WithContext(ctx))
	word, err := repo.FindByText(text)
	if err != nil {
		return err
	}
	return repo.UpdateDefinition(word.ID, string(definition), audio)
}

// EnrichWord looks a catalog word up and stores the result. A word the
// dictionary does not know is marked failed and is not retried.
func (s *Service) EnrichWord(ctx context.Context, wordID uint) error {
	_, err := s.enrich(ctx, wordID)
	return err
}

// enrich reports whether the word ended up with a definition.
func (s *Service) enrich(ctx context.Context, wordID uint) (bool, error) {
	repo := s.words.WithTx(s.db.WithContext(ctx))
	word, err := repo.FindByID(wordID)
	if err != nil {
		return false, fmt.Errorf("get word %d: %w", wordID, err)
	}
	if word.HasDefinition() {
		return true, nil
	}

	result, err := s.dict.Lookup(ctx, word.Text, s.pair)
	if err != nil {
		// Upstream failures stay pending so the next sweep retries them.
		status := entities.WordStatusPending
		if errors.Is(err, dictionary.ErrWordNotFound) {
			status = entities.WordStatusFailed
		}
		if updateErr := repo.UpdateStatus(wordID, status, err.Error()); updateErr != nil {
			s.logger.Error("failed to update word status", zap.Uint("word_id", wordID), zap.Error(updateErr))
		}
		if status == entities.WordStatusFailed {
			return false, nil
		}
		return false, fmt.Errorf("lookup word %q: %w", word.Text, err)
	}

	payload, err := result.DefinitionJSON()
	if err != nil {
		return false, err
	}
	if err := repo.UpdateDefinition(wordID, payload, result.AudioURL); err != nil {
		return false, fmt.Errorf("save definition for word %d: %w", wordID, err)
	}

	s.logger.Info("enriched word",
		zap.String("word", word.Text),
		zap.Int("definitions", len(result.Definitions)))
	return true, nil
}

// EnrichStats summarises an EnrichPending run.
type EnrichStats struct {
	Total    int
	Enriched int
	Failed   int
}

// EnrichPending enriches pending catalog words until done or ctx ends.
// limit <= 0 processes every pending word.
func (s *Service) EnrichPending(ctx context.Context, limit int) (EnrichStats, error) {
	pending, err := s.words.WithTx(s.db.WithContext(ctx)).ListPending(limit)
	if err != nil {
		return EnrichStats{}, fmt.Errorf("get pending words: %w", err)
	}

	stats := EnrichStats{Total: len(pending)}
	for _, word := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		ok, err := s.enrich(ctx, word.ID)
		if err != nil {
			s.logger.Warn("word enrichment failed", zap.Uint("word_id", word.ID), zap.Error(err))
		}
		if !ok {
			stats.Failed++
			continue
		}
		stats.Enriched++
	}

	s.logger.Info("enrichment pass finished",
		zap.Int("enriched", stats.Enriched),
		zap.Int("failed", stats.Failed),
		zap.Int("total", stats.Total))
	return stats, nil
}

// PendingWordIDs lists catalog words still waiting for enrichment.
func (s *Service) PendingWordIDs(ctx context.Context, limit int) ([]uint, error) {
	pending, err := s.words.WithTx(s.db.WithContext(ctx)).ListPending(limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(pending))
	for i, w := range pending {
		ids[i] = w.ID
	}
	return ids, nil
}
