package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/models"
)

const (
	DefaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	defaultTimeout       = 10 * time.Second
)

// ErrWordNotFound is returned when the word is not found in the dictionary
var ErrWordNotFound = errors.Wrap(errors.ErrNotFound, "word not found in dictionary")

// DictionaryService looks up english definitions
type DictionaryService struct {
	client  *http.Client
	baseURL string
}

// NewDictionaryService creates a dictionary service against baseURL, or the
// public dictionary API when baseURL is empty
func NewDictionaryService(baseURL string) *DictionaryService {
	if baseURL == "" {
		baseURL = DefaultDictionaryURL
	}
	return NewDictionaryServiceWithClient(&http.Client{Timeout: defaultTimeout}, baseURL)
}

// NewDictionaryServiceWithClient creates a new dictionary service with a custom HTTP client
func NewDictionaryServiceWithClient(client *http.Client, baseURL string) *DictionaryService {
	return &DictionaryService{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Lookup fetches the definition of an english word
func (s *DictionaryService) Lookup(ctx context.Context, word string) (*models.Definitions, error) {
	endpoint := fmt.Sprintf("%s/%s", s.baseURL, url.PathEscape(word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch definition: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrWordNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary API returned status %d", resp.StatusCode)
	}

	var entries []models.DictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(entries) == 0 {
		return nil, ErrWordNotFound
	}

	return toDefinitions(word, entries), nil
}

// toDefinitions keeps the first entry's meanings and collects every source URL
func toDefinitions(word string, entries []models.DictionaryEntry) *models.Definitions {
	entry := entries[0]

	defs := &models.Definitions{
		EnglishWord: word,
		Phonetic:    entry.Phonetic,
		Meanings:    entry.Meanings,
	}

	for _, phonetic := range entry.Phonetics {
		if defs.Phonetic == "" && phonetic.Text != "" {
			defs.Phonetic = phonetic.Text
		}
		if phonetic.Audio != "" {
			defs.AudioURL = phonetic.Audio
			break
		}
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if e.SourceURL != "" && !seen[e.SourceURL] {
			defs.SourceURLs = append(defs.SourceURLs, e.SourceURL)
			seen[e.SourceURL] = true
		}
	}

	return defs
}
