package http_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSession(t *testing.T) {
	t.Run("Success: 201 with subject", func(t *testing.T) {
		app := setupApp(t)
		subjectID := app.createSubject(t, "user-1", "Anatomy")

		w := app.do(t, http.MethodPost, "/api/v1/sessions", "user-1", map[string]any{
			"subject_id":        subjectID,
			"category":          "reading",
			"occurred_at":       fixedNow,
			"duration_seconds":  1800,
			"questions_total":   20,
			"questions_correct": 17,
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decode[map[string]any](t, w)
		assert.Equal(t, subjectID, body["subject_id"])
		assert.EqualValues(t, 1800, body["duration_seconds"])
	})

	t.Run("Success: occurred_at defaults to now", func(t *testing.T) {
		app := setupApp(t)

		w := app.do(t, http.MethodPost, "/api/v1/sessions", "user-1", map[string]any{"duration_seconds": 60})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.NotEmpty(t, decode[map[string]any](t, w)["occurred_at"])
	})

	t.Run("Fail: 400 when correct exceeds total", func(t *testing.T) {
		app := setupApp(t)

		w := app.do(t, http.MethodPost, "/api/v1/sessions", "user-1", map[string]any{
			"duration_seconds":  600,
			"questions_total":   5,
			"questions_correct": 6,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 on negative duration", func(t *testing.T) {
		app := setupApp(t)

		w := app.do(t, http.MethodPost, "/api/v1/sessions", "user-1", map[string]any{"duration_seconds": -5})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 403 on another user's subject", func(t *testing.T) {
		app := setupApp(t)
		subjectID := app.createSubject(t, "user-1", "Private")

		w := app.do(t, http.MethodPost, "/api/v1/sessions", "user-2", map[string]any{
			"subject_id":       subjectID,
			"duration_seconds": 600,
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "forbidden")
	})
}

func TestListAndUpdateSessions(t *testing.T) {
	app := setupApp(t)
	early := app.logSession(t, "user-1", "", fixedNow.Add(-48*time.Hour), 30)
	app.logSession(t, "user-1", "", fixedNow, 45)

	t.Run("List filters by range", func(t *testing.T) {
		from := fixedNow.Add(-time.Hour).Format(time.RFC3339)
		w := app.do(t, http.MethodGet, "/api/v1/sessions?from="+from, "user-1", nil)

		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]map[string]any](t, w)
		require.Len(t, list, 1)
		assert.EqualValues(t, 45*60, list[0]["duration_seconds"])
	})

	t.Run("List rejects a bad bound", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/sessions?to=yesterday", "user-1", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update requires a version", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/v1/sessions/"+early["id"].(string), "user-1", map[string]any{"notes": "x"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update applies partial fields", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/v1/sessions/"+early["id"].(string), "user-1", map[string]any{
			"notes":   "anki deck",
			"version": 1,
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode[map[string]any](t, w)
		assert.Equal(t, "anki deck", body["notes"])
		assert.EqualValues(t, 30*60, body["duration_seconds"])
		assert.EqualValues(t, 2, body["version"])
	})

	t.Run("Update with stale version conflicts", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/v1/sessions/"+early["id"].(string), "user-1", map[string]any{
			"notes":   "again",
			"version": 1,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteSessions(t *testing.T) {
	t.Run("Delete one", func(t *testing.T) {
		app := setupApp(t)
		s := app.logSession(t, "user-1", "", fixedNow, 30)

		w := app.do(t, http.MethodDelete, "/api/v1/sessions/"+s["id"].(string), "user-2", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = app.do(t, http.MethodDelete, "/api/v1/sessions/"+s["id"].(string), "user-1", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = app.do(t, http.MethodDelete, "/api/v1/sessions/"+s["id"].(string), "user-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Clear history only touches the caller", func(t *testing.T) {
		app := setupApp(t)
		app.logSession(t, "user-1", "", fixedNow, 30)
		app.logSession(t, "user-1", "", fixedNow.Add(-24*time.Hour), 30)
		app.logSession(t, "user-2", "", fixedNow, 30)

		w := app.do(t, http.MethodDelete, "/api/v1/sessions", "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 2, decode[map[string]any](t, w)["deleted"])

		w = app.do(t, http.MethodGet, "/api/v1/sessions", "user-2", nil)
		assert.Len(t, decode[[]map[string]any](t, w), 1)
	})
}

func TestExamHandler(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/api/v1/exams", "user-1", map[string]any{
		"title":             "Mock test 3",
		"exam_date":         "2024-03-14",
		"elapsed_duration":  "01:30:00",
		"questions_total":   60,
		"questions_correct": 48,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	exam := decode[map[string]any](t, w)
	id := exam["id"].(string)

	t.Run("Rejects a malformed elapsed duration", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/exams", "user-1", map[string]any{
			"title":            "Bad",
			"exam_date":        "2024-03-14",
			"elapsed_duration": "90 minutes",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Rejects a malformed date", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/v1/exams", "user-1", map[string]any{
			"title":            "Bad",
			"exam_date":        "14/03/2024",
			"elapsed_duration": "00:10:00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Lists only own exams", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/v1/exams", "user-1", nil)
		assert.Len(t, decode[[]map[string]any](t, w), 1)

		w = app.do(t, http.MethodGet, "/api/v1/exams", "user-2", nil)
		assert.Empty(t, decode[[]map[string]any](t, w))
	})

	t.Run("Updates the date", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/v1/exams/"+id, "user-1", map[string]any{
			"exam_date": "2024-03-15",
			"version":   1,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "2024-03-15")
	})

	t.Run("Deletes", func(t *testing.T) {
		w := app.do(t, http.MethodDelete, "/api/v1/exams/"+id, "user-1", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = app.do(t, http.MethodGet, "/api/v1/exams", "user-1", nil)
		assert.Empty(t, decode[[]map[string]any](t, w))
	})
}
