package services

import (
	"context"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/models"
	"github.com/lehmann314159/tasklex/internal/repository"
)

// TaskService provides business logic for task operations
type TaskService struct {
	repo repository.TaskRepository
}

// NewTaskService creates a new task service
func NewTaskService(repo repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create saves a new task, applying the default status and priority when unset
func (s *TaskService) Create(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error) {
	task := models.NewTask(req.Title, req.Description)
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != nil {
		if err := task.SetPriority(*req.Priority); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Get retrieves a task by ID
func (s *TaskService) Get(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// List picks the store query matching filter. Filters that cannot be combined
// are rejected with a ValidationError.
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	hasRange := filter.MinPriority != 0 || filter.MaxPriority != 0

	switch {
	case filter.TitleContains != "":
		if filter.Status != "" || filter.Priority != 0 || hasRange || filter.CompletedOnly || filter.Order != "" {
			return nil, errors.NewValidationError("title", filter.TitleContains, "cannot be combined with other filters")
		}
		return s.repo.GetByTitleContains(ctx, filter.TitleContains)

	case filter.Priority != 0:
		if filter.Status != "" || hasRange || filter.CompletedOnly || filter.Order != "" {
			return nil, errors.NewValidationError("priority", "", "cannot be combined with other filters")
		}
		return s.repo.GetByPriority(ctx, filter.Priority)

	case hasRange:
		if filter.Status != "" || filter.CompletedOnly {
			return nil, errors.NewValidationError("priority range", "", "cannot be combined with a status filter")
		}
		min, max := filter.MinPriority, filter.MaxPriority
		if min == 0 {
			min = models.MinPriority
		}
		if max == 0 {
			max = models.MaxPriority
		}
		return s.repo.GetByPriorityRange(ctx, min, max, orderOrDefault(filter.Order))

	case filter.CompletedOnly:
		if filter.Status != "" && filter.Status != models.StatusCompleted {
			return nil, errors.NewValidationError("status", string(filter.Status), "conflicts with completed")
		}
		if filter.Order != "" {
			return s.repo.GetByStatusSortedByPriority(ctx, models.StatusCompleted, filter.Order)
		}
		return s.repo.GetCompleted(ctx)

	case filter.Status != "":
		if filter.Order != "" {
			return s.repo.GetByStatusSortedByPriority(ctx, filter.Status, filter.Order)
		}
		return s.repo.GetByStatus(ctx, filter.Status)

	case filter.Order != "":
		return s.repo.GetAllSortedByPriority(ctx, filter.Order)
	}

	return s.repo.GetAll(ctx)
}

// Update applies the non-nil fields of req to the task with the given ID
func (s *TaskService) Update(ctx context.Context, id int64, req *models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		switch *req.Status {
		case models.StatusCompleted:
			task.MarkCompleted()
		case models.StatusInProgress:
			task.MarkInProgress()
		case models.StatusPending:
			task.MarkPending()
		default:
			return nil, errors.NewValidationError("status", string(*req.Status), "must be one of Pending, In Progress, Completed")
		}
	}
	if req.Priority != nil {
		if err := task.SetPriority(*req.Priority); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks the task with the given ID as completed
func (s *TaskService) Complete(ctx context.Context, id int64) (*models.Task, error) {
	status := models.StatusCompleted
	return s.Update(ctx, id, &models.UpdateTaskRequest{Status: &status})
}

// Delete deletes a task by ID. A missing task yields errors.ErrNotFound.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.repo.Delete(ctx, task)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "task %d", id)
	}
	return nil
}

// Purge removes completed tasks, or every task when completedOnly is false
func (s *TaskService) Purge(ctx context.Context, completedOnly bool) (int64, error) {
	if completedOnly {
		return s.repo.DeleteCompleted(ctx)
	}
	return s.repo.DeleteAll(ctx)
}

func orderOrDefault(order models.SortOrder) models.SortOrder {
	if order == "" {
		return models.OrderAsc
	}
	return order
}
