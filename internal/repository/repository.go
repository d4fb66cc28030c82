package repository

import (
	"context"

	"github.com/lehmann314159/tasklex/internal/models"
)

// TaskRepository defines the interface for task persistence operations
type TaskRepository interface {
	// Save inserts a new task (assigning its ID) or updates an existing one
	Save(ctx context.Context, task *models.Task) error

	// GetByID retrieves a task by its ID
	GetByID(ctx context.Context, id int64) (*models.Task, error)

	// GetAll retrieves every task
	GetAll(ctx context.Context) ([]models.Task, error)

	// Delete removes a task by its ID and clears the ID
	Delete(ctx context.Context, task *models.Task) (int64, error)

	GetByStatus(ctx context.Context, status models.Status) ([]models.Task, error)
	GetByPriority(ctx context.Context, priority int) ([]models.Task, error)
	GetCompleted(ctx context.Context) ([]models.Task, error)
	GetByTitleContains(ctx context.Context, keyword string) ([]models.Task, error)
	GetByPriorityRange(ctx context.Context, min, max int, order models.SortOrder) ([]models.Task, error)
	GetAllSortedByPriority(ctx context.Context, order models.SortOrder) ([]models.Task, error)
	GetByStatusSortedByPriority(ctx context.Context, status models.Status, order models.SortOrder) ([]models.Task, error)

	// DeleteCompleted removes completed tasks and returns the count
	DeleteCompleted(ctx context.Context) (int64, error)

	// DeleteAll removes every task and returns the count
	DeleteAll(ctx context.Context) (int64, error)
}

// VocabularyRepository defines the interface for words and the answers log
type VocabularyRepository interface {
	// InitStore creates the schema if needed and reports whether it is ready
	InitStore(ctx context.Context) bool

	AddWord(ctx context.Context, english, russian string) (*models.Word, error)
	LogAnswer(ctx context.Context, answer models.AnswerLog) (int64, error)

	// OverallStats aggregates attempts per word
	OverallStats(ctx context.Context) ([]models.WordStats, error)

	// ProblemWords returns the worst-accuracy words first
	ProblemWords(ctx context.Context, limit, minAttempts int) ([]models.WordStats, error)

	ViewWords(ctx context.Context) ([]models.WordPair, error)
	GetWords(ctx context.Context) ([]models.Word, error)
	GetWord(ctx context.Context, english string) (*models.Word, error)
	Answers(ctx context.Context, wordID int64) ([]models.AnswerLog, error)

	// DeleteWord removes a word and its answers, returning the count
	DeleteWord(ctx context.Context, english string) (int64, error)
}

var (
	_ TaskRepository       = (*TaskStore)(nil)
	_ VocabularyRepository = (*VocabularyStore)(nil)
)
