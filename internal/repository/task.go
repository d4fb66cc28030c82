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

const taskColumns = `id, title, description, status, priority`

// TaskStore implements TaskRepository over a SQLite file.
// Every method opens its own scope on the file and releases it before returning.
type TaskStore struct {
	path   string
	logger *slog.Logger
}

// NewTaskStore ensures the tasks schema exists at path and returns a store bound to it.
func NewTaskStore(ctx context.Context, path string, logger *slog.Logger) (*TaskStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := database.Migrate(ctx, path, database.TaskSchema); err != nil {
		return nil, errors.NewStoreError("ensure tasks table", err)
	}
	return &TaskStore{path: path, logger: logger.With("store", "tasks")}, nil
}

// Path returns the store file this store is bound to.
func (s *TaskStore) Path() string {
	return s.path
}

// Save inserts task when it has no ID and assigns one; otherwise it updates
// every field of the row with that ID.
func (s *TaskStore) Save(ctx context.Context, task *models.Task) error {
	if task == nil {
		return errors.NewValidationError("task", "", "must not be nil")
	}
	if err := task.Validate(); err != nil {
		return err
	}

	var (
		newID    int64
		affected int64
	)
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		if task.ID == nil {
			result, err := tx.ExecContext(ctx,
				`INSERT INTO tasks (title, description, status, priority) VALUES (?, ?, ?, ?)`,
				task.Title, task.Description, task.Status, task.Priority,
			)
			if err != nil {
				return fmt.Errorf("failed to insert task: %w", err)
			}
			newID, err = result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
			return nil
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ? WHERE id = ?`,
			task.Title, task.Description, task.Status, task.Priority, *task.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return errors.NewStoreError("save task", err)
	}

	if task.ID == nil {
		task.ID = &newID
	} else if affected == 0 {
		s.logger.Warn("update matched no task", "id", *task.ID)
	}
	return nil
}

// GetByID retrieves a task by its ID. A missing task yields errors.ErrNotFound.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	tasks, err := s.selectTasks(ctx, "get task",
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		s.logger.Debug("task not found", "id", id)
		return nil, errors.Wrapf(errors.ErrNotFound, "task %d", id)
	}
	return &tasks[0], nil
}

// GetAll retrieves every task.
func (s *TaskStore) GetAll(ctx context.Context) ([]models.Task, error) {
	return s.selectTasks(ctx, "list tasks",
		`SELECT `+taskColumns+` FROM tasks ORDER BY id`)
}

// Delete removes the row with task's ID and clears the ID. A task without an ID
// is reported and left alone; the returned count is then 0.
func (s *TaskStore) Delete(ctx context.Context, task *models.Task) (int64, error) {
	if !task.Saved() {
		s.logger.Warn("cannot delete task: task is missing or has no id")
		return 0, nil
	}

	n, err := s.exec(ctx, "delete task", `DELETE FROM tasks WHERE id = ?`, *task.ID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		s.logger.Info("task not found", "id", *task.ID)
	} else {
		s.logger.Info("task deleted", "id", *task.ID)
	}
	task.ID = nil
	return n, nil
}

// GetByStatus retrieves tasks with the given status.
func (s *TaskStore) GetByStatus(ctx context.Context, status models.Status) ([]models.Task, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	return s.selectTasks(ctx, "list tasks by status",
		`SELECT `+taskColumns+` FROM tasks WHERE status = ? ORDER BY id`, status)
}

// GetByPriority retrieves tasks with exactly the given priority.
func (s *TaskStore) GetByPriority(ctx context.Context, priority int) ([]models.Task, error) {
	if err := models.ValidatePriority("priority", priority); err != nil {
		return nil, err
	}
	return s.selectTasks(ctx, "list tasks by priority",
		`SELECT `+taskColumns+` FROM tasks WHERE priority = ? ORDER BY id`, priority)
}

// GetCompleted retrieves every completed task.
func (s *TaskStore) GetCompleted(ctx context.Context) ([]models.Task, error) {
	return s.GetByStatus(ctx, models.StatusCompleted)
}

// GetByTitleContains retrieves tasks whose title contains keyword, ignoring case.
func (s *TaskStore) GetByTitleContains(ctx context.Context, keyword string) ([]models.Task, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, errors.NewValidationError("keyword", "", "must not be empty")
	}
	pattern := "%" + escapeLike(keyword) + "%"
	return s.selectTasks(ctx, "search tasks by title",
		`SELECT `+taskColumns+` FROM tasks WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\' ORDER BY id`, pattern)
}

// GetByPriorityRange retrieves tasks with min <= priority <= max sorted by priority.
func (s *TaskStore) GetByPriorityRange(ctx context.Context, min, max int, order models.SortOrder) ([]models.Task, error) {
	if err := models.ValidatePriority("min_priority", min); err != nil {
		return nil, err
	}
	if err := models.ValidatePriority("max_priority", max); err != nil {
		return nil, err
	}
	if min > max {
		return nil, errors.NewValidationError("min_priority", fmt.Sprint(min), "must not be greater than max_priority")
	}
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	return s.selectTasks(ctx, "list tasks by priority range",
		`SELECT `+taskColumns+` FROM tasks WHERE priority BETWEEN ? AND ? `+orderByPriority(order), min, max)
}

// GetAllSortedByPriority retrieves every task sorted by priority.
func (s *TaskStore) GetAllSortedByPriority(ctx context.Context, order models.SortOrder) ([]models.Task, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	return s.selectTasks(ctx, "list tasks sorted by priority",
		`SELECT `+taskColumns+` FROM tasks `+orderByPriority(order))
}

// GetByStatusSortedByPriority retrieves tasks with status sorted by priority.
func (s *TaskStore) GetByStatusSortedByPriority(ctx context.Context, status models.Status, order models.SortOrder) ([]models.Task, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	return s.selectTasks(ctx, "list tasks by status sorted by priority",
		`SELECT `+taskColumns+` FROM tasks WHERE status = ? `+orderByPriority(order), status)
}

// DeleteCompleted removes every completed task and returns how many were removed.
func (s *TaskStore) DeleteCompleted(ctx context.Context) (int64, error) {
	n, err := s.exec(ctx, "delete completed tasks", `DELETE FROM tasks WHERE status = ?`, models.StatusCompleted)
	if err != nil {
		return 0, err
	}
	s.logger.Info("completed tasks deleted", "count", n)
	return n, nil
}

// DeleteAll removes every task and returns how many were removed.
func (s *TaskStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.exec(ctx, "delete all tasks", `DELETE FROM tasks`)
}

func (s *TaskStore) selectTasks(ctx context.Context, op, query string, args ...any) ([]models.Task, error) {
	tasks := []models.Task{}
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &tasks, query, args...)
	})
	if err != nil {
		return nil, errors.NewStoreError(op, err)
	}
	return tasks, nil
}

func (s *TaskStore) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	var n int64
	err := database.WithScope(ctx, s.path, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, errors.NewStoreError(op, err)
	}
	return n, nil
}

func validateStatus(status models.Status) error {
	if !status.Valid() {
		return errors.NewValidationError("status", string(status), "must be one of Pending, In Progress, Completed")
	}
	return nil
}

func validateOrder(order models.SortOrder) error {
	if !order.Valid() {
		return errors.NewValidationError("order", string(order), "must be ASC or DESC")
	}
	return nil
}

// orderByPriority builds the ORDER BY clause for a validated order.
// Ties keep insertion order.
func orderByPriority(order models.SortOrder) string {
	return fmt.Sprintf("ORDER BY priority %s, id ASC", order)
}

// escapeLike escapes LIKE wildcards so keyword matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
