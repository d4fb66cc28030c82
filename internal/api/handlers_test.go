package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/tasklex/internal/logging"
	"github.com/lehmann314159/tasklex/internal/models"
	"github.com/lehmann314159/tasklex/internal/repository"
	"github.com/lehmann314159/tasklex/internal/services"
)

func setupTestRouter(t *testing.T, apiToken string, dictionaryURL string) *chi.Mux {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	taskStore, err := repository.NewTaskStore(ctx, filepath.Join(dir, "tasks.db"), logging.Discard())
	require.NoError(t, err)

	vocabStore := repository.NewVocabularyStore(filepath.Join(dir, "vocabulary.db"), logging.Discard())
	require.True(t, vocabStore.InitStore(ctx))

	handler := NewHandler(
		services.NewTaskService(taskStore),
		services.NewVocabularyService(vocabStore, services.NewDictionaryService(dictionaryURL)),
		logging.Discard(),
	)
	return NewRouter(handler, apiToken)
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHandler_HealthCheck(t *testing.T) {
	router := setupTestRouter(t, "", "")

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rec))
}

func TestHandler_CreateTask(t *testing.T) {
	router := setupTestRouter(t, "", "")

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid task", body: `{"title":"write report","priority":4}`, wantStatus: http.StatusCreated},
		{name: "defaults", body: `{"title":"read book"}`, wantStatus: http.StatusCreated},
		{name: "missing title", body: `{"description":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "priority out of range", body: `{"title":"x","priority":9}`, wantStatus: http.StatusBadRequest},
		{name: "bad status", body: `{"title":"x","status":"Done"}`, wantStatus: http.StatusBadRequest},
		{name: "invalid JSON", body: `{invalid}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/v1/tasks", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_TaskLifecycle(t *testing.T) {
	router := setupTestRouter(t, "", "")

	rec := do(t, router, http.MethodPost, "/api/v1/tasks", `{"title":"write report"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Task](t, rec)
	require.NotNil(t, created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, models.DefaultPriority, created.Priority)

	path := "/api/v1/tasks/" + strconv.FormatInt(*created.ID, 10)

	rec = do(t, router, http.MethodPut, path, `{"status":"Completed","priority":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Task](t, rec)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, 1, updated.Priority)
	assert.Equal(t, "write report", updated.Title)

	rec = do(t, router, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "get missing", method: http.MethodGet, path: "/api/v1/tasks/9999", wantStatus: http.StatusNotFound},
		{name: "get invalid id", method: http.MethodGet, path: "/api/v1/tasks/abc", wantStatus: http.StatusBadRequest},
		{name: "update missing", method: http.MethodPut, path: "/api/v1/tasks/9999", body: `{"title":"x"}`, wantStatus: http.StatusNotFound},
		{name: "update bad body", method: http.MethodPut, path: path, body: `nope`, wantStatus: http.StatusBadRequest},
		{name: "delete existing", method: http.MethodDelete, path: path, wantStatus: http.StatusNoContent},
		{name: "delete again", method: http.MethodDelete, path: path, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_ListTasks(t *testing.T) {
	router := setupTestRouter(t, "", "")

	for _, body := range []string{
		`{"title":"write report","priority":3}`,
		`{"title":"fix bug","priority":5,"status":"In Progress"}`,
		`{"title":"read book","priority":1,"status":"Completed"}`,
		`{"title":"ship release","priority":4,"status":"Completed"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/v1/tasks", body).Code)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTitles []string
	}{
		{name: "list all", query: "", wantStatus: http.StatusOK, wantTitles: []string{"write report", "fix bug", "read book", "ship release"}},
		{name: "by status", query: "?status=In%20Progress", wantStatus: http.StatusOK, wantTitles: []string{"fix bug"}},
		{name: "completed desc", query: "?completed=true&order=desc", wantStatus: http.StatusOK, wantTitles: []string{"ship release", "read book"}},
		{name: "range", query: "?min_priority=3&max_priority=4&order=DESC", wantStatus: http.StatusOK, wantTitles: []string{"ship release", "write report"}},
		{name: "title", query: "?title=BOOK", wantStatus: http.StatusOK, wantTitles: []string{"read book"}},
		{name: "exact priority", query: "?priority=5", wantStatus: http.StatusOK, wantTitles: []string{"fix bug"}},
		{name: "bad status", query: "?status=Done", wantStatus: http.StatusBadRequest},
		{name: "bad order", query: "?order=sideways", wantStatus: http.StatusBadRequest},
		{name: "bad priority", query: "?priority=high", wantStatus: http.StatusBadRequest},
		{name: "priority out of range", query: "?max_priority=9", wantStatus: http.StatusBadRequest},
		{name: "inverted range", query: "?min_priority=4&max_priority=2", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/api/v1/tasks"+tt.query, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			resp := decode[struct {
				Tasks []models.Task `json:"tasks"`
				Total int           `json:"total"`
			}](t, rec)
			titles := make([]string, len(resp.Tasks))
			for i, task := range resp.Tasks {
				titles[i] = task.Title
			}
			assert.Equal(t, tt.wantTitles, titles)
			assert.Equal(t, len(tt.wantTitles), resp.Total)
		})
	}
}

func TestHandler_PurgeTasks(t *testing.T) {
	router := setupTestRouter(t, "", "")

	for _, body := range []string{
		`{"title":"a","status":"Pending"}`,
		`{"title":"b","status":"Completed"}`,
		`{"title":"c","status":"Completed"}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/v1/tasks", body).Code)
	}

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodDelete, "/api/v1/tasks", "").Code)

	rec := do(t, router, http.MethodDelete, "/api/v1/tasks?completed=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int64{"deleted": 2}, decode[map[string]int64](t, rec))

	rec = do(t, router, http.MethodDelete, "/api/v1/tasks?all=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int64{"deleted": 1}, decode[map[string]int64](t, rec))
}

func TestHandler_Words(t *testing.T) {
	router := setupTestRouter(t, "", "")

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "create", method: http.MethodPost, path: "/api/v1/words", body: `{"english_word":"Cat","russian_translation":"кот"}`, wantStatus: http.StatusCreated},
		{name: "create duplicate", method: http.MethodPost, path: "/api/v1/words", body: `{"english_word":"cat","russian_translation":"кошка"}`, wantStatus: http.StatusConflict},
		{name: "create empty", method: http.MethodPost, path: "/api/v1/words", body: `{"english_word":"","russian_translation":"кот"}`, wantStatus: http.StatusBadRequest},
		{name: "create invalid JSON", method: http.MethodPost, path: "/api/v1/words", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "get", method: http.MethodGet, path: "/api/v1/words/cat", wantStatus: http.StatusOK},
		{name: "get missing", method: http.MethodGet, path: "/api/v1/words/dog", wantStatus: http.StatusNotFound},
		{name: "answer", method: http.MethodPost, path: "/api/v1/words/cat/answers", body: `{"test_type":"en_ru","is_correct":true}`, wantStatus: http.StatusCreated},
		{name: "answer wrong", method: http.MethodPost, path: "/api/v1/words/cat/answers", body: `{"test_type":"ru_en","is_correct":false}`, wantStatus: http.StatusCreated},
		{name: "answer bad type", method: http.MethodPost, path: "/api/v1/words/cat/answers", body: `{"test_type":"xx","is_correct":true}`, wantStatus: http.StatusBadRequest},
		{name: "answer unknown word", method: http.MethodPost, path: "/api/v1/words/dog/answers", body: `{"test_type":"en_ru","is_correct":true}`, wantStatus: http.StatusNotFound},
		{name: "problems bad limit", method: http.MethodGet, path: "/api/v1/words/problems?limit=0", wantStatus: http.StatusBadRequest},
		{name: "problems non-numeric", method: http.MethodGet, path: "/api/v1/words/problems?limit=x", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, router, http.MethodGet, "/api/v1/words/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[struct {
		Stats []models.WordStats `json:"stats"`
	}](t, rec)
	require.Len(t, stats.Stats, 1)
	assert.Equal(t, 2, stats.Stats[0].Total)
	require.NotNil(t, stats.Stats[0].Accuracy)
	assert.InDelta(t, 50.0, *stats.Stats[0].Accuracy, 1e-9)

	rec = do(t, router, http.MethodGet, "/api/v1/words/problems?limit=5&min_attempts=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/words/cat/answers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	answers := decode[struct {
		Answers []models.AnswerLog `json:"answers"`
	}](t, rec)
	assert.Len(t, answers.Answers, 2)

	rec = do(t, router, http.MethodGet, "/api/v1/words", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Words []models.Word `json:"words"`
		Total int           `json:"total"`
	}](t, rec)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "cat", list.Words[0].EnglishWord)

	assert.Equal(t, http.StatusNoContent, do(t, router, http.MethodDelete, "/api/v1/words/cat", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/v1/words/cat", "").Code)
}

func TestHandler_GetWordDefinition(t *testing.T) {
	dict := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/house" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"word":"house","meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"a building"}]}]}]`))
	}))
	defer dict.Close()

	router := setupTestRouter(t, "", dict.URL)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/v1/words", `{"english_word":"house","russian_translation":"дом"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, router, http.MethodPost, "/api/v1/words", `{"english_word":"qwzx","russian_translation":"ъ"}`).Code)

	rec := do(t, router, http.MethodGet, "/api/v1/words/house/definition", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	defs := decode[models.Definitions](t, rec)
	assert.Equal(t, "дом", defs.RussianTranslation)
	assert.Equal(t, "noun", defs.Meanings[0].PartOfSpeech)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/words/qwzx/definition", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/words/absent/definition", "").Code)
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHandler_ImportExport(t *testing.T) {
	router := setupTestRouter(t, "", "")

	body, contentType := multipartBody(t, "words.csv", []byte("english,russian\ncat,кот\ndog,собака\ncat,кошка\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/words/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[services.ImportResult](t, rec)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	rec = do(t, router, http.MethodGet, "/api/v1/words/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "english,russian\ncat,кот\ndog,собака\n", rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/v1/words/export?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	xlsx := rec.Body.Bytes()

	// import the workbook into a fresh store
	fresh := setupTestRouter(t, "", "")
	body, contentType = multipartBody(t, "words.xlsx", xlsx)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/words/import", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	fresh.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result = decode[services.ImportResult](t, rec)
	assert.Equal(t, 2, result.Imported)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/words/export?format=pdf", "").Code)

	body, contentType = multipartBody(t, "words.pdf", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/api/v1/words/import", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBearerAuth(t *testing.T) {
	router := setupTestRouter(t, "s3cret", "")

	tests := []struct {
		name       string
		method     string
		auth       string
		wantStatus int
	}{
		{name: "get is open", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "post without header", method: http.MethodPost, wantStatus: http.StatusUnauthorized},
		{name: "post wrong token", method: http.MethodPost, auth: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "post wrong scheme", method: http.MethodPost, auth: "Basic s3cret", wantStatus: http.StatusUnauthorized},
		{name: "post with token", method: http.MethodPost, auth: "Bearer s3cret", wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/tasks", strings.NewReader(`{"title":"guarded"}`))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := setupTestRouter(t, "", "")

	rec := do(t, router, http.MethodOptions, "/api/v1/tasks", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
