package vocabulary

import (
	"errors"

	"github.com/wordtrack/wordtrack/internal/database/userwords"
	"github.com/wordtrack/wordtrack/internal/database/words"
	"github.com/wordtrack/wordtrack/internal/dictionary"
	"github.com/wordtrack/wordtrack/internal/progress"
)

var (
	ErrInvalidWord       = errors.New("word must be between 1 and 255 characters")
	ErrInvalidDefinition = errors.New("definition must be valid JSON")
	ErrInvalidMonths     = progress.ErrInvalidMonths
	ErrNotTracked        = userwords.ErrNotTracked
	ErrWordNotFound      = words.ErrWordNotFound
	ErrNoDefinition      = dictionary.ErrWordNotFound
	ErrUpstream          = dictionary.ErrUpstream
)
