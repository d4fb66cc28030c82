package models

import (
	"fmt"
	"strings"

	"github.com/lehmann314159/tasklex/internal/errors"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus converts user input into a Status. Matching is exact, as stored.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", errors.NewValidationError("status", s, "must be one of Pending, In Progress, Completed")
	}
	return st, nil
}

// SortOrder is the direction of a priority sort.
type SortOrder string

const (
	OrderAsc  SortOrder = "ASC"
	OrderDesc SortOrder = "DESC"
)

// Valid reports whether o is ASC or DESC.
func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// ParseSortOrder accepts asc/desc in any case.
func ParseSortOrder(s string) (SortOrder, error) {
	o := SortOrder(strings.ToUpper(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", errors.NewValidationError("order", s, "must be ASC or DESC")
	}
	return o, nil
}

const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3
)

// ValidatePriority checks that p is within [MinPriority, MaxPriority].
func ValidatePriority(field string, p int) error {
	if p < MinPriority || p > MaxPriority {
		return errors.NewValidationError(field, fmt.Sprint(p), "must be between 1 and 5")
	}
	return nil
}

// Task represents a tracked unit of work.
// ID is nil until the task has been saved.
type Task struct {
	ID          *int64 `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Status      Status `json:"status" db:"status"`
	Priority    int    `json:"priority" db:"priority"`
}

// NewTask returns a transient task with default status and priority.
func NewTask(title, description string) *Task {
	return &Task{
		Title:       title,
		Description: description,
		Status:      StatusPending,
		Priority:    DefaultPriority,
	}
}

// Saved reports whether the task carries a store identity.
func (t *Task) Saved() bool {
	return t != nil && t.ID != nil
}

func (t *Task) MarkCompleted()  { t.Status = StatusCompleted }
func (t *Task) MarkInProgress() { t.Status = StatusInProgress }
func (t *Task) MarkPending()    { t.Status = StatusPending }

// SetPriority changes the priority, rejecting values outside [1,5].
func (t *Task) SetPriority(p int) error {
	if err := ValidatePriority("priority", p); err != nil {
		return err
	}
	t.Priority = p
	return nil
}

// Validate checks every field against its domain.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.NewValidationError("title", "", "must not be empty")
	}
	if !t.Status.Valid() {
		return errors.NewValidationError("status", string(t.Status), "must be one of Pending, In Progress, Completed")
	}
	return ValidatePriority("priority", t.Priority)
}

func (t *Task) String() string {
	id := "nil"
	if t.ID != nil {
		id = fmt.Sprint(*t.ID)
	}
	return fmt.Sprintf("Task(id=%s, title=%q, status=%q, priority=%d)", id, t.Title, t.Status, t.Priority)
}

// TaskFilter represents query parameters for selecting tasks.
// Zero values mean "not set".
type TaskFilter struct {
	Status        Status
	Priority      int
	MinPriority   int
	MaxPriority   int
	TitleContains string
	Order         SortOrder
	CompletedOnly bool
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status,omitempty"`
	Priority    *int   `json:"priority,omitempty"`
}

// UpdateTaskRequest represents the request body for updating a task
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
}
