package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/lehmann314159/tasklex/internal/database"
	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/models"
)

// VocabularyStore implements VocabularyRepository over a SQLite file holding the
// words table and the append-only answers log.
type VocabularyStore struct {
	path   string
	logger *slog.Logger
}

// NewVocabularyStore creates a store bound to path. The file is not touched until
// InitStore or the first operation.
func NewVocabularyStore(path string, logger *slog.Logger) *VocabularyStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &VocabularyStore{path: path, logger: logger.With("store", "vocabulary")}
}

// Path returns the store file this store is bound to.
func (s *VocabularyStore) Path() string {
	return s.path
}

// InitStore makes sure the words and answers tables exist. Failures are logged,
// not returned; the result says whether the store is ready.
func (s *VocabularyStore) InitStore(ctx context.Context) bool {
	if err := database.Migrate(ctx, s.path, database.VocabularySchema); err != nil {
		s.logger.Error("failed to initialize vocabulary store", "path", s.path, "error", err)
		return false
	}
	s.logger.Debug("vocabulary store ready", "path", s.path)
	return true
}

// AddWord stores a normalized english/russian pair and returns it with its ID.
func (s *VocabularyStore) AddWord(ctx context.Context, english, russian string) (*models.Word, error) {
	word := &models.Word{
		EnglishWord:        models.NormalizeWord(english),
		RussianTranslation: models.NormalizeWord(russian),
	}
	if word.EnglishWord == "" || word.RussianTranslation == "" {
		return nil, errors.NewValidationError("word", "", "english word and russian translation must not be empty")
	}

	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO words (english_word, russian_translation) VALUES (?, ?)`,
			word.EnglishWord, word.RussianTranslation,
		)
		if err != nil {
			return err
		}
		word.ID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.NewConflictError("word", word.EnglishWord, err)
		}
		return nil, errors.NewStoreError("add word", err)
	}

	s.logger.Info("word added", "english_word", word.EnglishWord)
	return word, nil
}

// LogAnswer appends one quiz attempt to the answers log and returns its ID.
func (s *VocabularyStore) LogAnswer(ctx context.Context, answer models.AnswerLog) (int64, error) {
	if answer.WordID <= 0 {
		return 0, errors.NewValidationError("word_id", fmt.Sprint(answer.WordID), "must be a stored word id")
	}
	if strings.TrimSpace(answer.Timestamp) == "" {
		return 0, errors.NewValidationError("timestamp", "", "must not be empty")
	}
	if !answer.TestType.Valid() {
		return 0, errors.NewValidationError("test_type", string(answer.TestType), "must be en_ru or ru_en")
	}

	var id int64
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO answers (word_id, timestamp, test_type, is_correct) VALUES (?, ?, ?, ?)`,
			answer.WordID, answer.Timestamp, answer.TestType, answer.IsCorrect,
		)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return 0, errors.NewStoreError("log answer", err)
	}
	return id, nil
}

// OverallStats aggregates the answers log per word, including words never asked.
// Rows are ordered by english word.
func (s *VocabularyStore) OverallStats(ctx context.Context) ([]models.WordStats, error) {
	const query = `
		SELECT
			w.english_word,
			w.russian_translation,
			COUNT(a.id) AS total,
			SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END) AS correct,
			SUM(CASE WHEN a.is_correct = 0 THEN 1 ELSE 0 END) AS incorrect,
			CASE
				WHEN COUNT(a.id) > 0 THEN
					ROUND(100.0 * SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END) / COUNT(a.id), 2)
				ELSE NULL
			END AS accuracy
		FROM words w
		LEFT JOIN answers a ON w.id = a.word_id
		GROUP BY w.id
		ORDER BY w.english_word ASC`

	stats := []models.WordStats{}
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &stats, query)
	})
	if err != nil {
		return nil, errors.NewStoreError("view overall stats", err)
	}
	return stats, nil
}

// ProblemWords returns up to limit words with at least minAttempts answers,
// worst accuracy first.
func (s *VocabularyStore) ProblemWords(ctx context.Context, limit, minAttempts int) ([]models.WordStats, error) {
	if limit <= 0 {
		return nil, errors.NewValidationError("limit", fmt.Sprint(limit), "must be positive")
	}
	if minAttempts < 0 {
		return nil, errors.NewValidationError("min_attempts", fmt.Sprint(minAttempts), "must not be negative")
	}

	const query = `
		SELECT
			w.english_word,
			w.russian_translation,
			COUNT(a.id) AS total,
			SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END) AS correct,
			SUM(CASE WHEN a.is_correct = 0 THEN 1 ELSE 0 END) AS incorrect,
			ROUND(100.0 * SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END) / COUNT(a.id), 2) AS accuracy
		FROM words w
		JOIN answers a ON w.id = a.word_id
		GROUP BY w.id
		HAVING total >= ?
		ORDER BY accuracy ASC, w.english_word ASC
		LIMIT ?`

	stats := []models.WordStats{}
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &stats, query, minAttempts, limit)
	})
	if err != nil {
		return nil, errors.NewStoreError("view problem words", err)
	}
	return stats, nil
}

// ViewWords returns every english/russian pair.
func (s *VocabularyStore) ViewWords(ctx context.Context) ([]models.WordPair, error) {
	pairs := []models.WordPair{}
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &pairs,
			`SELECT english_word, russian_translation FROM words ORDER BY id`)
	})
	if err != nil {
		return nil, errors.NewStoreError("view words", err)
	}
	return pairs, nil
}

// GetWords returns every word with its ID. An empty dictionary is reported in the
// log and returned as an empty slice.
func (s *VocabularyStore) GetWords(ctx context.Context) ([]models.Word, error) {
	words := []models.Word{}
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &words,
			`SELECT id, english_word, russian_translation FROM words ORDER BY id`)
	})
	if err != nil {
		return nil, errors.NewStoreError("get words", err)
	}
	if len(words) == 0 {
		s.logger.Info("dictionary is empty")
	}
	return words, nil
}

// GetWord retrieves a word by its english text.
func (s *VocabularyStore) GetWord(ctx context.Context, english string) (*models.Word, error) {
	words := []models.Word{}
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &words,
			`SELECT id, english_word, russian_translation FROM words WHERE english_word = ?`,
			models.NormalizeWord(english))
	})
	if err != nil {
		return nil, errors.NewStoreError("get word", err)
	}
	if len(words) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "word %q", english)
	}
	return &words[0], nil
}

// Answers returns the answers logged for wordID in the order they were recorded.
func (s *VocabularyStore) Answers(ctx context.Context, wordID int64) ([]models.AnswerLog, error) {
	answers := []models.AnswerLog{}
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &answers,
			`SELECT id, word_id, timestamp, test_type, is_correct FROM answers WHERE word_id = ? ORDER BY id`,
			wordID)
	})
	if err != nil {
		return nil, errors.NewStoreError("list answers", err)
	}
	return answers, nil
}

// DeleteWord removes the word matching english and, through the foreign key,
// its answers. It returns the number of words removed (0 or 1).
func (s *VocabularyStore) DeleteWord(ctx context.Context, english string) (int64, error) {
	var n int64
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM words WHERE english_word = ?`, models.NormalizeWord(english))
		if err != nil {
			return err
		}
		n, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, errors.NewStoreError("delete word", err)
	}
	return n, nil
}
