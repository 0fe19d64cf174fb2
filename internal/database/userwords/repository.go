// Package userwords provides database operations for the user-word ledger:
// which user tracks which catalog word, and whether it is mastered.
package userwords

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wordtrack/wordtrack/internal/database"
	"github.com/wordtrack/wordtrack/internal/entities"
	"github.com/wordtrack/wordtrack/internal/progress"
)

var ErrNotTracked = errors.New("word is not tracked by user")

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

// Add records that userID tracks wordID. It returns false when the pair
// already exists, whether found up front or lost to a concurrent insert.
func (r *Repository) Add(userID, wordID uint, at time.Time) (bool, error) {
	if _, err := r.Find(userID, wordID); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotTracked) {
		return false, err
	}

	row := &entities.UserWord{
		UserID:    userID,
		WordID:    wordID,
		CreatedAt: at.UTC(),
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("add user word: %w", err)
	}
	return true, nil
}

// Find returns the caller's ledger row for wordID.
func (r *Repository) Find(userID, wordID uint) (*entities.UserWord, error) {
	var row entities.UserWord
	err := r.db.Where("user_id = ? AND word_id = ?", userID, wordID).First(&row).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotTracked
		}
		return nil, err
	}
	return &row, nil
}

// SetMastered flips the mastered flag. Mastering stamps mastered_at with
// at; unmastering clears it.
func (r *Repository) SetMastered(userID, wordID uint, mastered bool, at time.Time) error {
	updates := map[string]any{"is_mastered": mastered, "mastered_at": nil}
	if mastered {
		updates["mastered_at"] = at.UTC()
	}
	result := r.db.Model(&entities.UserWord{}).
		Where("user_id = ? AND word_id = ?", userID, wordID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("set mastered: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotTracked
	}
	return nil
}

// Remove deletes only the caller's ledger row. The catalog word stays.
func (r *Repository) Remove(userID, wordID uint) error {
	result := r.db.Where("user_id = ? AND word_id = ?", userID, wordID).
		Delete(&entities.UserWord{})
	if result.Error != nil {
		return fmt.Errorf("remove user word: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotTracked
	}
	return nil
}

// Repoint moves the caller's row from one catalog word to another. When the
// caller already tracks the target, the source row is dropped and the
// target row is kept as is.
func (r *Repository) Repoint(userID, fromWordID, toWordID uint) error {
	if fromWordID == toWordID {
		return nil
	}
	if _, err := r.Find(userID, fromWordID); err != nil {
		return err
	}

	if _, err := r.Find(userID, toWordID); err == nil {
		return r.Remove(userID, fromWordID)
	} else if !errors.Is(err, ErrNotTracked) {
		return err
	}

	return r.db.Model(&entities.UserWord{}).
		Where("user_id = ? AND word_id = ?", userID, fromWordID).
		Update("word_id", toWordID).Error
}

// ListForUser returns the caller's tracked words, newest first.
func (r *Repository) ListForUser(userID uint) ([]entities.TrackedWord, error) {
	var rows []entities.TrackedWord
	err := r.trackedQuery(userID).
		Order("user_word.created_at DESC, user_word.id DESC").
		Scan(&rows).Error
	return rows, err
}

// WordsOfTheDay returns unmastered words whose added time falls in any of
// the windows, newest first.
func (r *Repository) WordsOfTheDay(userID uint, windows []progress.Window) ([]entities.TrackedWord, error) {
	rows := []entities.TrackedWord{}
	if len(windows) == 0 {
		return rows, nil
	}

	inWindow := r.db.Where("user_word.created_at >= ? AND user_word.created_at < ?", windows[0].Start, windows[0].End)
	for _, w := range windows[1:] {
		inWindow = inWindow.Or("user_word.created_at >= ? AND user_word.created_at < ?", w.Start, w.End)
	}

	err := r.trackedQuery(userID).
		Where("user_word.is_mastered = ?", false).
		Where(inWindow).
		Order("user_word.created_at DESC, user_word.id DESC").
		Scan(&rows).Error
	return rows, err
}

// CountAddedByMonth groups the caller's rows by the month they were added,
// for rows added in [from, to].
func (r *Repository) CountAddedByMonth(userID uint, from, to time.Time) (map[string]int64, error) {
	return r.countByMonth(userID, "created_at", false, from, to)
}

// CountMasteredByMonth groups the caller's mastered rows by mastered_at.
func (r *Repository) CountMasteredByMonth(userID uint, from, to time.Time) (map[string]int64, error) {
	return r.countByMonth(userID, "mastered_at", true, from, to)
}

// CountForUser returns the number of words the caller tracks.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.UserWord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

type monthCount struct {
	Month string
	Total int64
}

func (r *Repository) countByMonth(userID uint, column string, masteredOnly bool, from, to time.Time) (map[string]int64, error) {
	var rows []monthCount
	query := r.db.Model(&entities.UserWord{}).
		Select(database.MonthBucket(r.db, column)+" AS month, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Where(column+" >= ? AND "+column+" <= ?", from.UTC(), to.UTC())
	if masteredOnly {
		query = query.Where("is_mastered = ?", true)
	}
	err := query.Group("month").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Month] = row.Total
	}
	return counts, nil
}

func (r *Repository) trackedQuery(userID uint) *gorm.DB {
	return r.db.Table("user_word").
		Select(`user_word.word_id AS word_id, words.word AS word, words.audio AS audio,
			words.definition AS definition, user_word.is_mastered AS is_mastered,
			user_word.created_at AS added_at, user_word.mastered_at AS mastered_at`).
		Joins("JOIN words ON words.id = user_word.word_id").
		Where("user_word.user_id = ?", userID)
}
