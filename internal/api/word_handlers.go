package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lehmann314159/tasklex/internal/errors"
	"github.com/lehmann314159/tasklex/internal/models"
	"github.com/lehmann314159/tasklex/internal/services"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportSize   = 10 << 20
)

func englishParam(r *http.Request) string {
	raw := chi.URLParam(r, "english")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

// ListWords handles GET /api/v1/words
func (h *Handler) ListWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.vocab.Words(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list words")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"words": words,
		"total": len(words),
	})
}

// CreateWord handles POST /api/v1/words
func (h *Handler) CreateWord(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	word, err := h.vocab.Add(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to add word")
		return
	}

	writeJSON(w, http.StatusCreated, word)
}

// GetWord handles GET /api/v1/words/{english}
func (h *Handler) GetWord(w http.ResponseWriter, r *http.Request) {
	word, err := h.vocab.Get(r.Context(), englishParam(r))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to get word")
		return
	}

	writeJSON(w, http.StatusOK, word)
}

// DeleteWord handles DELETE /api/v1/words/{english}
func (h *Handler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	if err := h.vocab.Delete(r.Context(), englishParam(r)); err != nil {
		h.writeServiceError(w, r, err, "failed to delete word")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// WordStats handles GET /api/v1/words/stats
func (h *Handler) WordStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.vocab.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, "failed to get stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

// ProblemWords handles GET /api/v1/words/problems?limit=&min_attempts=
func (h *Handler) ProblemWords(w http.ResponseWriter, r *http.Request) {
	limit, minAttempts := 10, 1

	for name, dst := range map[string]*int{"limit": &limit, "min_attempts": &minAttempts} {
		s := r.URL.Query().Get(name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+name)
			return
		}
		*dst = v
	}

	stats, err := h.vocab.Problems(r.Context(), limit, minAttempts)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to get problem words")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

// GetWordDefinition handles GET /api/v1/words/{english}/definition
func (h *Handler) GetWordDefinition(w http.ResponseWriter, r *http.Request) {
	definition, err := h.vocab.Define(r.Context(), englishParam(r))
	if err != nil {
		if errors.Is(err, services.ErrWordNotFound) {
			writeError(w, http.StatusNotFound, "definition not found in dictionary")
			return
		}
		h.writeServiceError(w, r, err, "failed to get definition")
		return
	}

	writeJSON(w, http.StatusOK, definition)
}

// ListAnswers handles GET /api/v1/words/{english}/answers
func (h *Handler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.vocab.Answers(r.Context(), englishParam(r))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list answers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"answers": answers})
}

// RecordAnswer handles POST /api/v1/words/{english}/answers
func (h *Handler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.vocab.RecordAnswer(r.Context(), englishParam(r), &req)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to record answer")
		return
	}

	writeJSON(w, http.StatusCreated, answer)
}

// ImportWords handles POST /api/v1/words/import. The format comes from the
// format query parameter or, failing that, the uploaded file's extension.
func (h *Handler) ImportWords(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	}

	var result *services.ImportResult
	switch format {
	case "xlsx":
		result, err = h.vocab.ImportXLSX(r.Context(), file)
	case "csv", "":
		result, err = h.vocab.ImportCSV(r.Context(), file)
	default:
		writeError(w, http.StatusBadRequest, "unsupported format: "+format)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ExportWords handles GET /api/v1/words/export?format=csv|xlsx
func (h *Handler) ExportWords(w http.ResponseWriter, r *http.Request) {
	var (
		buf         bytes.Buffer
		err         error
		contentType string
		filename    string
	)

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "csv":
		contentType, filename = "text/csv", "words.csv"
		err = h.vocab.ExportCSV(r.Context(), &buf)
	case "xlsx":
		contentType, filename = xlsxContentType, "words.xlsx"
		err = h.vocab.ExportXLSX(r.Context(), &buf)
	default:
		writeError(w, http.StatusBadRequest, "unsupported format: "+format)
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err, "failed to export words")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, &buf)
}
