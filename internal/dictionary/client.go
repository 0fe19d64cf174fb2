// Package dictionary looks up audio and definitions for catalog words.
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWordNotFound means the provider has no entry for the word.
	ErrWordNotFound = errors.New("word not found in dictionary")
	// ErrUpstream wraps every other provider failure.
	ErrUpstream = errors.New("dictionary provider failed")
)

// LanguagePair names the source language of a word and the language its
// definition should be written in.
type LanguagePair struct {
	Source string
	Target string
}

// String renders the pair as "en-en".
func (p LanguagePair) String() string {
	return p.Source + "-" + p.Target
}

// ParseLanguagePair parses "src-dst". A bare "src" means src-src.
func ParseLanguagePair(s string) (LanguagePair, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "-")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return LanguagePair{Source: parts[0], Target: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return LanguagePair{Source: parts[0], Target: parts[1]}, nil
	default:
		return LanguagePair{}, fmt.Errorf("invalid language pair %q", s)
	}
}

// Definition is one sense of a word.
type Definition struct {
	PartOfSpeech string `json:"partOfSpeech"`
	Definition   string `json:"definition"`
	Example      string `json:"example,omitempty"`
}

// LookupResult contains the result of a dictionary lookup.
type LookupResult struct {
	Word          string       `json:"word"`
	Pronunciation string       `json:"pronunciation,omitempty"`
	AudioURL      string       `json:"-"`
	Definitions   []Definition `json:"definitions"`
}

// DefinitionJSON encodes the result in the form cached on catalog words.
func (r *LookupResult) DefinitionJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode definition: %w", err)
	}
	return string(data), nil
}

// Client defines the interface for dictionary API providers.
type Client interface {
	Lookup(ctx context.Context, word string, pair LanguagePair) (*LookupResult, error)
	Name() string
}
