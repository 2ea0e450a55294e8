package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-study-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-study-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

// fixedNow is a Friday.
var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type testApp struct {
	router   *gin.Engine
	subjects *repository.InMemorySubjectRepository
	sessions *repository.InMemorySessionRepository
	exams    *repository.InMemoryExamRepository
	settings *repository.InMemorySettingsRepository
	timers   *repository.InMemoryTimerStore
}

// setupApp wires every handler on in-memory storage. The caller's identity is
// taken from the X-User-ID header instead of a bearer token.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := &testApp{
		subjects: repository.NewInMemorySubjectRepository(),
		sessions: repository.NewInMemorySessionRepository(),
		exams:    repository.NewInMemoryExamRepository(),
		settings: repository.NewInMemorySettingsRepository(),
		timers:   repository.NewInMemoryTimerStore(),
	}
	achievementRepo := repository.NewInMemoryAchievementRepository()

	subjectSvc := services.NewSubjectService(app.subjects, app.settings)
	sessionSvc := services.NewSessionService(app.sessions, app.subjects, nil)
	examSvc := services.NewExamService(app.exams, nil)
	snapshotSvc := services.NewSnapshotService(services.SnapshotRepos{
		Tx:           repository.NewInMemoryTransactor(app.subjects, app.sessions, app.exams, app.settings, achievementRepo),
		Snapshots:    repository.NewInMemorySnapshotStore(),
		Subjects:     app.subjects,
		Sessions:     app.sessions,
		Exams:        app.exams,
		Settings:     app.settings,
		Achievements: achievementRepo,
	}, nil, 10)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})
	api := r.Group("/api/v1")

	adapterHTTP.NewSubjectHandler(subjectSvc).RegisterRoutes(api)
	adapterHTTP.NewSessionHandler(sessionSvc).RegisterRoutes(api)
	adapterHTTP.NewExamHandler(examSvc).RegisterRoutes(api)
	adapterHTTP.NewSettingsHandler(services.NewSettingsService(app.settings)).RegisterRoutes(api)
	adapterHTTP.NewStreakHandler(services.NewStreakService(app.sessions, app.exams, app.settings), func() time.Time { return fixedNow }).RegisterRoutes(api)
	adapterHTTP.NewStatsHandler(services.NewStatsService(app.subjects, app.sessions, app.exams, app.settings)).RegisterRoutes(api)
	adapterHTTP.NewAchievementHandler(services.NewAchievementService(achievementRepo, app.sessions, app.exams, app.settings)).RegisterRoutes(api)
	adapterHTTP.NewTimerHandler(services.NewTimerService(app.timers, app.subjects, sessionSvc)).RegisterRoutes(api)
	adapterHTTP.NewSnapshotHandler(snapshotSvc).RegisterRoutes(api)

	app.router = r
	return app
}

// do sends a request as userID. An empty userID sends no identity.
func (a *testApp) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// createSubject posts a subject and returns its id.
func (a *testApp) createSubject(t *testing.T, userID, title string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/subjects", userID, map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["id"].(string)
}

// logSession records a session of the given minutes at occurredAt.
func (a *testApp) logSession(t *testing.T, userID, subjectID string, occurredAt time.Time, minutes int) map[string]any {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/sessions", userID, map[string]any{
		"subject_id":       subjectID,
		"occurred_at":      occurredAt,
		"duration_seconds": minutes * 60,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)
}
