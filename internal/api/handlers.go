package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/models"
	"github.com/lehmann314159/tasklex/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	tasks  *services.TaskService
	vocab  *services.VocabularyService
	logger *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(tasks *services.TaskService, vocab *services.VocabularyService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tasks:  tasks,
		vocab:  vocab,
		logger: logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps the store error taxonomy onto HTTP status codes
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(message, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, message)
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseTaskID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("id", raw, "must be a positive integer")
	}
	return id, nil
}

// parseTaskFilter reads the list filters from the query string
func parseTaskFilter(r *http.Request) (models.TaskFilter, error) {
	q := r.URL.Query()
	var filter models.TaskFilter

	if s := q.Get("status"); s != "" {
		status, err := models.ParseStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if s := q.Get("order"); s != "" {
		order, err := models.ParseSortOrder(s)
		if err != nil {
			return filter, err
		}
		filter.Order = order
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"priority", &filter.Priority},
		{"min_priority", &filter.MinPriority},
		{"max_priority", &filter.MaxPriority},
	}
	for _, p := range ints {
		s := q.Get(p.name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return filter, errors.NewValidationError(p.name, s, "must be an integer")
		}
		*p.dst = v
	}

	filter.TitleContains = q.Get("title")
	filter.CompletedOnly = q.Get("completed") == "true"
	return filter, nil
}

// ListTasks handles GET /api/v1/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list tasks")
		return
	}

	tasks, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list tasks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// GetTask handles GET /api/v1/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to get task")
		return
	}

	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to get task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// CreateTask handles POST /api/v1/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.tasks.Create(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create task")
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/v1/tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update task")
		return
	}

	var req models.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.tasks.Update(r.Context(), id, &req)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/v1/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(r)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to delete task")
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err, "failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PurgeTasks handles DELETE /api/v1/tasks?completed=true and ?all=true
func (h *Handler) PurgeTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	completed, all := q.Get("completed") == "true", q.Get("all") == "true"
	if completed == all {
		writeError(w, http.StatusBadRequest, "exactly one of completed=true or all=true is required")
		return
	}

	n, err := h.tasks.Purge(r.Context(), completed)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to delete tasks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
