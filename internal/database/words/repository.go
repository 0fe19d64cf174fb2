// Package words provides database operations for the shared word catalog.
package words

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wordtrack/wordtrack/internal/database"
	"github.com/wordtrack/wordtrack/internal/entities"
)

var (
	ErrWordNotFound = errors.New("word not found")
	ErrWordExists   = errors.New("word already exists")
)

// Repository handles catalog word operations. Methods take the *gorm.DB they
// run on through the repository, so a transaction can bind its own copy with
// WithTx.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByText looks a word up by its exact, case-sensitive text.
func (r *Repository) FindByText(text string) (*entities.Word, error) {
	var word entities.Word
	if err := r.db.Where("word = ?", text).First(&word).Error; err != nil {
		return nil, notFound(err)
	}
	return &word, nil
}

func (r *Repository) FindByID(id uint) (*entities.Word, error) {
	var word entities.Word
	if err := r.db.First(&word, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &word, nil
}

// Create inserts a catalog word. ErrWordExists means another writer won.
func (r *Repository) Create(word *entities.Word) error {
	if word.Status == "" {
		word.Status = entities.WordStatusPending
	}
	if err := r.db.Create(word).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrWordExists
		}
		return fmt.Errorf("create word: %w", err)
	}
	return nil
}

// GetOrCreate returns the catalog word for text, creating it when absent.
// The boolean reports whether a new row was inserted.
func (r *Repository) GetOrCreate(text string) (*entities.Word, bool, error) {
	word, err := r.FindByText(text)
	if err == nil {
		return word, false, nil
	}
	if !errors.Is(err, ErrWordNotFound) {
		return nil, false, err
	}

	// The savepoint keeps an enclosing postgres transaction usable after a
	// lost insert race.
	word = &entities.Word{Text: text}
	err = r.db.Transaction(func(tx *gorm.DB) error {
		return r.WithTx(tx).Create(word)
	})
	if err != nil {
		if errors.Is(err, ErrWordExists) {
			existing, getErr := r.FindByText(text)
			return existing, false, getErr
		}
		return nil, false, err
	}
	return word, true, nil
}

// UpdateDefinition stores the dictionary payload and audio URL and marks the
// word enriched.
func (r *Repository) UpdateDefinition(id uint, definition, audio string) error {
	return r.update(id, map[string]any{
		"definition":       definition,
		"audio":            audio,
		"status":           entities.WordStatusEnriched,
		"enrichment_error": "",
	})
}

// UpdateStatus sets the enrichment status and the last enrichment error.
func (r *Repository) UpdateStatus(id uint, status entities.WordStatus, errMsg string) error {
	if len(errMsg) > 512 {
		errMsg = errMsg[:512]
	}
	return r.update(id, map[string]any{
		"status":           status,
		"enrichment_error": errMsg,
	})
}

// CountReferences returns how many ledger rows point at the word.
func (r *Repository) CountReferences(id uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.UserWord{}).Where("word_id = ?", id).Count(&count).Error
	return count, err
}

// Rename changes a word's text and drops its cached dictionary data.
func (r *Repository) Rename(id uint, text string) error {
	err := r.update(id, map[string]any{
		"word":             text,
		"audio":            "",
		"definition":       "",
		"status":           entities.WordStatusPending,
		"enrichment_error": "",
	})
	if database.IsUniqueViolation(err) {
		return ErrWordExists
	}
	return err
}

// RenameOrGet renames id to text inside a savepoint. If another word already
// holds text, that word's ID is returned and renamed is false.
func (r *Repository) RenameOrGet(id uint, text string) (uint, bool, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return r.WithTx(tx).Rename(id, text)
	})
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, ErrWordExists):
		existing, getErr := r.FindByText(text)
		if getErr != nil {
			return 0, false, getErr
		}
		return existing.ID, false, nil
	default:
		return 0, false, err
	}
}

// ListPending returns words that still need a dictionary lookup, oldest
// first. limit <= 0 means no limit.
func (r *Repository) ListPending(limit int) ([]entities.Word, error) {
	var words []entities.Word
	query := r.db.Where("status = ?", entities.WordStatusPending).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&words).Error
	return words, err
}

// Random returns up to n catalog words in random order.
func (r *Repository) Random(n int) ([]entities.Word, error) {
	var words []entities.Word
	err := r.db.Order("RANDOM()").Limit(n).Find(&words).Error
	return words, err
}

// Count returns the catalog size.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Word{}).Count(&count).Error
	return count, err
}

func (r *Repository) update(id uint, updates map[string]any) error {
	result := r.db.Model(&entities.Word{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWordNotFound
	}
	return nil
}

func notFound(err error) error {
	if database.IsNotFound(err) {
		return ErrWordNotFound
	}
	return err
}
