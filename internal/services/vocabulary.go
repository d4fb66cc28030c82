package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/models"
	"github.com/lehmann314159/tasklex/internal/repository"
)

// VocabularyService provides business logic over the vocabulary store
type VocabularyService struct {
	repo       repository.VocabularyRepository
	dictionary *DictionaryService
	now        func() time.Time
}

// NewVocabularyService creates a new vocabulary service
func NewVocabularyService(repo repository.VocabularyRepository, dictionary *DictionaryService) *VocabularyService {
	return &VocabularyService{
		repo:       repo,
		dictionary: dictionary,
		now:        time.Now,
	}
}

// Add stores a new word pair
func (s *VocabularyService) Add(ctx context.Context, req *models.CreateWordRequest) (*models.Word, error) {
	return s.repo.AddWord(ctx, req.EnglishWord, req.RussianTranslation)
}

// Words lists every stored word
func (s *VocabularyService) Words(ctx context.Context) ([]models.Word, error) {
	return s.repo.GetWords(ctx)
}

// Get retrieves a word by its english text
func (s *VocabularyService) Get(ctx context.Context, english string) (*models.Word, error) {
	return s.repo.GetWord(ctx, english)
}

// Delete removes a word and its answers. A missing word yields errors.ErrNotFound.
func (s *VocabularyService) Delete(ctx context.Context, english string) error {
	n, err := s.repo.DeleteWord(ctx, english)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "word %q", english)
	}
	return nil
}

// Stats returns the per-word accuracy table
func (s *VocabularyService) Stats(ctx context.Context) ([]models.WordStats, error) {
	return s.repo.OverallStats(ctx)
}

// Problems returns the words with the worst accuracy
func (s *VocabularyService) Problems(ctx context.Context, limit, minAttempts int) ([]models.WordStats, error) {
	return s.repo.ProblemWords(ctx, limit, minAttempts)
}

// Answers returns the answers recorded for a word
func (s *VocabularyService) Answers(ctx context.Context, english string) ([]models.AnswerLog, error) {
	word, err := s.repo.GetWord(ctx, english)
	if err != nil {
		return nil, err
	}
	return s.repo.Answers(ctx, word.ID)
}

// RecordAnswer logs an answer for the word, stamped with the current time
func (s *VocabularyService) RecordAnswer(ctx context.Context, english string, req *models.AnswerRequest) (*models.AnswerLog, error) {
	word, err := s.repo.GetWord(ctx, english)
	if err != nil {
		return nil, err
	}

	answer := models.AnswerLog{
		WordID:    word.ID,
		Timestamp: s.now().Format(models.TimestampLayout),
		TestType:  req.TestType,
		IsCorrect: req.IsCorrect,
	}
	answer.ID, err = s.repo.LogAnswer(ctx, answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// Define looks up a stored word in the dictionary
func (s *VocabularyService) Define(ctx context.Context, english string) (*models.Definitions, error) {
	word, err := s.repo.GetWord(ctx, english)
	if err != nil {
		return nil, err
	}

	defs, err := s.dictionary.Lookup(ctx, word.EnglishWord)
	if err != nil {
		return nil, err
	}
	defs.RussianTranslation = word.RussianTranslation
	return defs, nil
}

// ImportResult contains the results of an import operation
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

func (r *ImportResult) skip(line int, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("line %d: %v", line, err))
	r.Skipped++
}

// addRow stores one imported pair, recording a skip instead of failing the import
func (s *VocabularyService) addRow(ctx context.Context, result *ImportResult, line int, english, russian string) {
	if _, err := s.repo.AddWord(ctx, english, russian); err != nil {
		result.skip(line, err)
		return
	}
	result.Imported++
}

// ImportCSV imports word pairs from a CSV reader with an english,russian header
func (s *VocabularyService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"english", "russian"} {
		if _, ok := colIndex[col]; !ok {
			return nil, errors.NewValidationError("csv header", strings.Join(header, ","), "missing required column: "+col)
		}
	}

	result := &ImportResult{}
	lineNum := 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.skip(lineNum, err)
			continue
		}

		en, ru := colIndex["english"], colIndex["russian"]
		if en >= len(record) || ru >= len(record) {
			result.skip(lineNum, fmt.Errorf("missing required field"))
			continue
		}
		s.addRow(ctx, result, lineNum, record[en], record[ru])
	}

	return result, nil
}

// ExportCSV writes every word pair in CSV format
func (s *VocabularyService) ExportCSV(ctx context.Context, w io.Writer) error {
	pairs, err := s.repo.ViewWords(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch words: %w", err)
	}

	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"english", "russian"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range pairs {
		if err := writer.Write([]string{p.EnglishWord, p.RussianTranslation}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ImportXLSX imports word pairs from the first sheet of a workbook. Column A holds
// the english word, column B the translation, and the first row is a header.
func (s *VocabularyService) ImportXLSX(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		lineNum := i + 1

		var english, russian string
		if len(row) > 0 {
			english = row[0]
		}
		if len(row) > 1 {
			russian = row[1]
		}
		if english == "" && russian == "" {
			continue
		}
		s.addRow(ctx, result, lineNum, english, russian)
	}

	return result, nil
}

// ExportXLSX writes every word pair to a workbook with a header row
func (s *VocabularyService) ExportXLSX(ctx context.Context, w io.Writer) error {
	pairs, err := s.repo.ViewWords(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch words: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	rows := [][]string{{"english", "russian"}}
	for _, p := range pairs {
		rows = append(rows, []string{p.EnglishWord, p.RussianTranslation})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
