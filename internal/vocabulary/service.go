// Package vocabulary implements the per-user word workflows on top of the
// shared word catalog and the user-word ledger.
package vocabulary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wordtrack/wordtrack/internal/database/userwords"
	"github.com/wordtrack/wordtrack/internal/database/words"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	"github.com/wordtrack/wordtrack/internal/entities"
	"github.com/wordtrack/wordtrack/internal/progress"
)

const maxWordLength = 255

// Enqueuer schedules background dictionary lookups for new catalog words.
type Enqueuer interface {
	EnqueueWordEnrichment(wordIDs ...uint) error
}

// Config tunes the service.
type Config struct {
	LanguagePair dictionary.LanguagePair
	// MaxReportMonths bounds MonthlyReport. Zero means 120.
	MaxReportMonths int
	// Now overrides the clock in tests.
	Now func() time.Time
}

type Service struct {
	db       *gorm.DB
	words    *words.Repository
	ledger   *userwords.Repository
	dict     dictionary.Client
	enqueuer Enqueuer
	logger   *zap.Logger

	pair      dictionary.LanguagePair
	maxMonths int
	now       func() time.Time
}

func NewService(db *gorm.DB, dict dictionary.Client, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxReportMonths <= 0 {
		cfg.MaxReportMonths = 120
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.LanguagePair.Source == "" {
		cfg.LanguagePair = dictionary.LanguagePair{Source: "en", Target: "en"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        db,
		words:     words.NewRepository(db),
		ledger:    userwords.NewRepository(db),
		dict:      dict,
		logger:    logger.Named("vocabulary"),
		pair:      cfg.LanguagePair,
		maxMonths: cfg.MaxReportMonths,
		now:       cfg.Now,
	}
}

// SetEnqueuer enables background enrichment of newly created words.
func (s *Service) SetEnqueuer(e Enqueuer) {
	s.enqueuer = e
}

// AddResult describes the outcome of AddWord.
type AddResult struct {
	WordID uint
	// Created is false when the caller already tracked the word.
	Created bool
	// NewWord is true when the catalog entry was created by this call.
	NewWord bool
}

// AddWord records that userID tracks text, creating the catalog entry when
// needed. Both steps run in one transaction.
func (s *Service) AddWord(ctx context.Context, userID uint, text string) (AddResult, error) {
	text, err := normalizeWord(text)
	if err != nil {
		return AddResult{}, err
	}

	var result AddResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		word, newWord, err := s.words.WithTx(tx).GetOrCreate(text)
		if err != nil {
			return err
		}
		created, err := s.ledger.WithTx(tx).Add(userID, word.ID, s.clock())
		if err != nil {
			return err
		}
		result = AddResult{WordID: word.ID, Created: created, NewWord: newWord}
		return nil
	})
	if err != nil {
		return AddResult{}, fmt.Errorf("add word %q: %w", text, err)
	}

	if result.NewWord {
		s.enqueue(result.WordID)
	}
	return result, nil
}

// EditWord corrects the text of a word the caller tracks and returns the
// catalog ID the caller's row now points to. An existing catalog entry for
// the new text is reused. Otherwise the word is renamed in place when the
// caller is its only user, or a new entry is created for the caller.
func (s *Service) EditWord(ctx context.Context, userID, wordID uint, newText string) (uint, error) {
	newText, err := normalizeWord(newText)
	if err != nil {
		return 0, err
	}

	var (
		targetID uint
		fresh    bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wordsRepo := s.words.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		if _, err := ledger.Find(userID, wordID); err != nil {
			return err
		}
		current, err := wordsRepo.FindByID(wordID)
		if err != nil {
			return err
		}
		if current.Text == newText {
			targetID = current.ID
			return nil
		}

		existing, err := wordsRepo.FindByText(newText)
		switch {
		case err == nil:
			targetID = existing.ID
			return ledger.Repoint(userID, wordID, existing.ID)
		case !errors.Is(err, words.ErrWordNotFound):
			return err
		}

		refs, err := wordsRepo.CountReferences(wordID)
		if err != nil {
			return err
		}
		if refs <= 1 {
			id, renamed, err := wordsRepo.RenameOrGet(wordID, newText)
			if err != nil {
				return err
			}
			if renamed {
				targetID, fresh = wordID, true
				return nil
			}
			// Another writer created newText after the lookup above.
			targetID = id
			return ledger.Repoint(userID, wordID, id)
		}

		word, _, err := wordsRepo.GetOrCreate(newText)
		if err != nil {
			return err
		}
		targetID, fresh = word.ID, true
		return ledger.Repoint(userID, wordID, word.ID)
	})
	if err != nil {
		return 0, fmt.Errorf("edit word %d: %w", wordID, err)
	}

	if fresh {
		s.enqueue(targetID)
	}
	return targetID, nil
}

// SetMastered marks a tracked word mastered or not.
func (s *Service) SetMastered(ctx context.Context, userID, wordID uint, mastered bool) error {
	return s.ledger.WithTx(s.db.WithContext(ctx)).SetMastered(userID, wordID, mastered, s.clock())
}

// RemoveWord stops the caller tracking wordID. The catalog entry remains.
func (s *Service) RemoveWord(ctx context.Context, userID, wordID uint) error {
	return s.ledger.WithTx(s.db.WithContext(ctx)).Remove(userID, wordID)
}

// ListWords returns every word the caller tracks, newest first.
func (s *Service) ListWords(ctx context.Context, userID uint) ([]entities.TrackedWord, error) {
	rows, err := s.ledger.WithTx(s.db.WithContext(ctx)).ListForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	return rows, nil
}

// WordsOfTheDay returns the caller's unmastered words due for review today.
func (s *Service) WordsOfTheDay(ctx context.Context, userID uint) ([]entities.TrackedWord, error) {
	rows, err := s.ledger.WithTx(s.db.WithContext(ctx)).WordsOfTheDay(userID, progress.DayWindows(s.clock()))
	if err != nil {
		return nil, fmt.Errorf("words of the day: %w", err)
	}
	return rows, nil
}

// MonthlyReport counts words added and mastered per month over the last
// monthsBack months, ending with the current one.
func (s *Service) MonthlyReport(ctx context.Context, userID uint, monthsBack int) (progress.MonthlyReport, error) {
	if monthsBack > s.maxMonths {
		return progress.MonthlyReport{}, ErrInvalidMonths
	}
	now := s.clock()
	months, err := progress.MonthLabels(now, monthsBack)
	if err != nil {
		return progress.MonthlyReport{}, err
	}

	ledger := s.ledger.WithTx(s.db.WithContext(ctx))
	from := months[0].Start
	added, err := ledger.CountAddedByMonth(userID, from, now)
	if err != nil {
		return progress.MonthlyReport{}, err
	}
	mastered, err := ledger.CountMasteredByMonth(userID, from, now)
	if err != nil {
		return progress.MonthlyReport{}, err
	}

	return progress.BuildMonthlyReport(months, added, mastered), nil
}

// RandomWords returns up to n catalog words.
func (s *Service) RandomWords(ctx context.Context, n int) ([]entities.Word, error) {
	return s.words.WithTx(s.db.WithContext(ctx)).Random(n)
}

func (s *Service) enqueue(wordID uint) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueWordEnrichment(wordID); err != nil {
		s.logger.Warn("failed to enqueue word enrichment", zap.Uint("word_id", wordID), zap.Error(err))
	}
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func normalizeWord(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxWordLength {
		return "", ErrInvalidWord
	}
	return text, nil
}

// definitionPayload returns stored definition text as JSON, quoting values
// that are not valid JSON on their own.
func definitionPayload(stored string) json.RawMessage {
	if stored == "" {
		return nil
	}
	if json.Valid([]byte(stored)) {
		return json.RawMessage(stored)
	}
	quoted, _ := json.Marshal(stored)
	return quoted
}
