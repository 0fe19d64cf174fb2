package entities

import (
	"time"
)

type WordStatus string

const (
	WordStatusPending  WordStatus = "pending"
	WordStatusEnriched WordStatus = "enriched"
	WordStatusFailed   WordStatus = "failed"
)

// Word is a catalog entry shared by every user that tracks the same text.
// Audio and Definition are filled lazily from the dictionary.
type Word struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Text            string     `gorm:"column:word;uniqueIndex;size:255;not null" json:"word"`
	Audio           string     `gorm:"size:2048" json:"audio,omitempty"`
	Definition      string     `gorm:"type:text" json:"-"` // JSON payload from the dictionary
	LanguagePair    string     `gorm:"size:16" json:"languagePair,omitempty"`
	Status          WordStatus `gorm:"size:20;default:'pending';index" json:"status"`
	EnrichmentError string     `gorm:"size:512" json:"-"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (Word) TableName() string {
	return "words"
}

// HasDefinition reports whether the dictionary payload has been cached.
func (w *Word) HasDefinition() bool {
	return w.Definition != ""
}

// UserWord records that a user tracks a catalog word.
type UserWord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_user_word" json:"userId"`
	WordID     uint       `gorm:"not null;uniqueIndex:idx_user_word;index" json:"wordId"`
	IsMastered bool       `gorm:"default:false;index" json:"isMastered"`
	MasteredAt *time.Time `json:"masteredAt,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Word       Word       `gorm:"foreignKey:WordID" json:"word"`
}

func (UserWord) TableName() string {
	return "user_word"
}

// TrackedWord is a ledger row joined with its catalog word.
type TrackedWord struct {
	WordID     uint       `json:"id"`
	Word       string     `json:"word"`
	Audio      string     `json:"audio,omitempty"`
	Definition string     `json:"-"`
	IsMastered bool       `json:"is_mastered"`
	AddedAt    time.Time  `json:"created_at"`
	MasteredAt *time.Time `json:"mastered_at,omitempty"`
}
