package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// FreeDictionaryClient implements Client using the Free Dictionary API.
// API docs: https://dictionaryapi.dev/
// The API only serves monolingual entries, so the target language of a pair
// is recorded but not used for the request.
type FreeDictionaryClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// FreeDictionaryOptions configures NewFreeDictionaryClient. Zero values
// fall back to the public endpoint, one call per 500ms and a 10s timeout.
type FreeDictionaryOptions struct {
	BaseURL  string
	Interval time.Duration
	Timeout  time.Duration
}

func NewFreeDictionaryClient(opts FreeDictionaryOptions) *FreeDictionaryClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.dictionaryapi.dev/api/v2/entries"
	}
	if opts.Interval <= 0 {
		opts.Interval = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &FreeDictionaryClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(opts.Interval), 1),
	}
}

func (c *FreeDictionaryClient) Name() string {
	return "freedictionary"
}

// Lookup fetches word definitions from the Free Dictionary API.
func (c *FreeDictionaryClient) Lookup(ctx context.Context, word string, pair LanguagePair) (*LookupResult, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, ErrWordNotFound
	}
	lang := pair.Source
	if lang == "" {
		lang = "en"
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrUpstream, err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(lang), url.PathEscape(strings.ToLower(word)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", "wordtrack/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch definition: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrWordNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUpstream, resp.StatusCode)
	}

	var apiResponse []freeDictionaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(apiResponse) == 0 {
		return nil, ErrWordNotFound
	}

	return convertToLookupResult(word, apiResponse), nil
}

func convertToLookupResult(word string, entries []freeDictionaryResponse) *LookupResult {
	result := &LookupResult{Word: word}

	for _, entry := range entries {
		for _, phonetic := range entry.Phonetics {
			if result.Pronunciation == "" && phonetic.Text != "" {
				result.Pronunciation = phonetic.Text
			}
			if result.AudioURL == "" && phonetic.Audio != "" {
				result.AudioURL = phonetic.Audio
			}
		}
		if result.Pronunciation == "" {
			result.Pronunciation = entry.Phonetic
		}

		for _, meaning := range entry.Meanings {
			for _, def := range meaning.Definitions {
				result.Definitions = append(result.Definitions, Definition{
					PartOfSpeech: meaning.PartOfSpeech,
					Definition:   def.Definition,
					Example:      def.Example,
				})
			}
		}
	}

	return result
}

// Free Dictionary API response types

type freeDictionaryResponse struct {
	Word      string             `json:"word"`
	Phonetic  string             `json:"phonetic"`
	Phonetics []freeDictPhonetic `json:"phonetics"`
	Meanings  []freeDictMeaning  `json:"meanings"`
}

type freeDictPhonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type freeDictMeaning struct {
	PartOfSpeech string               `json:"partOfSpeech"`
	Definitions  []freeDictDefinition `json:"definitions"`
}

type freeDictDefinition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}
