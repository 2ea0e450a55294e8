package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

type SessionHandler struct {
	svc *services.SessionService
}

func NewSessionHandler(svc *services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type createSessionRequest struct {
	SubjectID        string     `json:"subject_id"`
	Category         string     `json:"category"`
	OccurredAt       *time.Time `json:"occurred_at"`
	DurationSeconds  int        `json:"duration_seconds" binding:"min=0"`
	QuestionsTotal   int        `json:"questions_total" binding:"min=0"`
	QuestionsCorrect int        `json:"questions_correct" binding:"min=0"`
	Notes            string     `json:"notes"`
}

type updateSessionRequest struct {
	SubjectID        *string    `json:"subject_id"`
	Category         *string    `json:"category"`
	OccurredAt       *time.Time `json:"occurred_at"`
	DurationSeconds  *int       `json:"duration_seconds"`
	QuestionsTotal   *int       `json:"questions_total"`
	QuestionsCorrect *int       `json:"questions_correct"`
	Notes            *string    `json:"notes"`
	Version          int        `json:"version"`
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("", h.Create)
		sessions.GET("", h.List)
		sessions.DELETE("", h.ClearHistory)
		sessions.GET("/sync", h.Sync)
		sessions.PUT("/:id", h.Update)
		sessions.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Log a study session
// @Description  occurred_at defaults to now. Sessions count towards the day they occurred on in the user's timezone.
// @Tags         sessions
// @Security     BearerAuth
// @Param        body  body      createSessionRequest  true  "session"
// @Success      201   {object}  domain.StudySession
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	session, err := h.svc.Create(c.Request.Context(), services.CreateSessionInput{
		UserID:           userID,
		SubjectID:        req.SubjectID,
		Category:         req.Category,
		OccurredAt:       occurredAt,
		DurationSeconds:  req.DurationSeconds,
		QuestionsTotal:   req.QuestionsTotal,
		QuestionsCorrect: req.QuestionsCorrect,
		Notes:            req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// List godoc
// @Summary      List study sessions, optionally within [from, to)
// @Tags         sessions
// @Security     BearerAuth
// @Param        from  query  string  false  "RFC3339 lower bound"
// @Param        to    query  string  false  "RFC3339 upper bound (exclusive)"
// @Success      200   {array}  domain.StudySession
// @Router       /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var from, to time.Time
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &from}, {"to", &to}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "invalid "+p.name+" format, use RFC3339")
			return
		}
		*p.dst = parsed
	}

	list, err := h.svc.List(c.Request.Context(), userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *SessionHandler) Sync(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	lastSync, ok := parseLastSync(c)
	if !ok {
		return
	}

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": time.Now().UTC(),
	})
}

func (h *SessionHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Version <= 0 {
		handleError(c, domain.ErrVersionMissing)
		return
	}

	session, err := h.svc.Update(c.Request.Context(), services.UpdateSessionInput{
		ID:               c.Param("id"),
		UserID:           userID,
		SubjectID:        req.SubjectID,
		Category:         req.Category,
		OccurredAt:       req.OccurredAt,
		DurationSeconds:  req.DurationSeconds,
		QuestionsTotal:   req.QuestionsTotal,
		QuestionsCorrect: req.QuestionsCorrect,
		Notes:            req.Notes,
		Version:          req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearHistory godoc
// @Summary      Delete the whole study log
// @Tags         sessions
// @Security     BearerAuth
// @Success      200  {object}  map[string]int64
// @Router       /sessions [delete]
func (h *SessionHandler) ClearHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	n, err := h.svc.ClearHistory(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
