package models

import (
	"strings"

	"github.com/lehmann314159/tasklex/internal/errors"
)

// Word represents a vocabulary pair
type Word struct {
	ID                 int64  `json:"id" db:"id"`
	EnglishWord        string `json:"english_word" db:"english_word"`
	RussianTranslation string `json:"russian_translation" db:"russian_translation"`
}

// WordPair is a word without its identity, as shown in listings
type WordPair struct {
	EnglishWord        string `json:"english_word" db:"english_word"`
	RussianTranslation string `json:"russian_translation" db:"russian_translation"`
}

// NormalizeWord trims and lowercases a word before it is stored or matched
func NormalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TestType is the direction of a quiz question
type TestType string

const (
	EnToRu TestType = "en_ru"
	RuToEn TestType = "ru_en"
)

// Valid reports whether t is a known direction
func (t TestType) Valid() bool {
	return t == EnToRu || t == RuToEn
}

// ParseTestType converts user input into a TestType
func ParseTestType(s string) (TestType, error) {
	t := TestType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", errors.NewValidationError("test_type", s, "must be en_ru or ru_en")
	}
	return t, nil
}

// TimestampLayout is the layout answer timestamps are written with
const TimestampLayout = "2006-01-02 15:04:05"

// AnswerLog is one recorded quiz attempt
type AnswerLog struct {
	ID        int64    `json:"id" db:"id"`
	WordID    int64    `json:"word_id" db:"word_id"`
	Timestamp string   `json:"timestamp" db:"timestamp"`
	TestType  TestType `json:"test_type" db:"test_type"`
	IsCorrect bool     `json:"is_correct" db:"is_correct"`
}

// WordStats is the per-word aggregate over the answer log.
// Accuracy is nil when the word has no attempts.
type WordStats struct {
	EnglishWord        string   `json:"english_word" db:"english_word"`
	RussianTranslation string   `json:"russian_translation" db:"russian_translation"`
	Total              int      `json:"total" db:"total"`
	Correct            int      `json:"correct" db:"correct"`
	Incorrect          int      `json:"incorrect" db:"incorrect"`
	Accuracy           *float64 `json:"accuracy" db:"accuracy"`
}

// DictionaryEntry represents a response from the dictionary API
type DictionaryEntry struct {
	Word      string     `json:"word"`
	Phonetic  string     `json:"phonetic,omitempty"`
	Phonetics []Phonetic `json:"phonetics,omitempty"`
	Meanings  []Meaning  `json:"meanings"`
	SourceURL string     `json:"sourceUrl,omitempty"`
}

// Phonetic represents pronunciation information
type Phonetic struct {
	Text  string `json:"text,omitempty"`
	Audio string `json:"audio,omitempty"`
}

// Meaning represents a word meaning with definitions
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Definition represents a single definition
type Definition struct {
	Definition string   `json:"definition"`
	Example    string   `json:"example,omitempty"`
	Synonyms   []string `json:"synonyms,omitempty"`
	Antonyms   []string `json:"antonyms,omitempty"`
}

// Definitions is what we return for a stored word: its translation plus the
// first dictionary entry's meanings.
type Definitions struct {
	EnglishWord        string    `json:"english_word"`
	RussianTranslation string    `json:"russian_translation"`
	Phonetic           string    `json:"phonetic,omitempty"`
	AudioURL           string    `json:"audio_url,omitempty"`
	Meanings           []Meaning `json:"meanings"`
	SourceURLs         []string  `json:"source_urls,omitempty"`
}

// CreateWordRequest represents the request body for adding a word
type CreateWordRequest struct {
	EnglishWord        string `json:"english_word"`
	RussianTranslation string `json:"russian_translation"`
}

// AnswerRequest represents the request body for recording a quiz answer
type AnswerRequest struct {
	TestType  TestType `json:"test_type"`
	IsCorrect bool     `json:"is_correct"`
}
