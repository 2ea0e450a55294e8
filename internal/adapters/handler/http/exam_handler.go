package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

type ExamHandler struct {
	svc *services.ExamService
}

func NewExamHandler(svc *services.ExamService) *ExamHandler {
	return &ExamHandler{svc: svc}
}

// Dates travel as YYYY-MM-DD; domain.Day decodes them.
type createExamRequest struct {
	Title            string     `json:"title" binding:"required"`
	ExamDate         domain.Day `json:"exam_date" binding:"required"`
	ElapsedDuration  string     `json:"elapsed_duration" binding:"required"`
	QuestionsTotal   int        `json:"questions_total"`
	QuestionsCorrect int        `json:"questions_correct"`
	Notes            string     `json:"notes"`
}

type updateExamRequest struct {
	Title            *string     `json:"title"`
	ExamDate         *domain.Day `json:"exam_date"`
	ElapsedDuration  *string     `json:"elapsed_duration"`
	QuestionsTotal   *int        `json:"questions_total"`
	QuestionsCorrect *int        `json:"questions_correct"`
	Notes            *string     `json:"notes"`
	Version          int         `json:"version"`
}

func (h *ExamHandler) RegisterRoutes(router *gin.RouterGroup) {
	exams := router.Group("/exams")
	{
		exams.POST("", h.Create)
		exams.GET("", h.List)
		exams.PUT("/:id", h.Update)
		exams.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Record a practice exam
// @Tags         exams
// @Security     BearerAuth
// @Param        body  body      createExamRequest  true  "exam, elapsed_duration as HH:MM:SS"
// @Success      201   {object}  domain.Exam
// @Failure      400   {object}  errorResponse
// @Router       /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	exam, err := h.svc.Create(c.Request.Context(), services.CreateExamInput{
		UserID:           userID,
		Title:            req.Title,
		ExamDate:         req.ExamDate,
		ElapsedDuration:  req.ElapsedDuration,
		QuestionsTotal:   req.QuestionsTotal,
		QuestionsCorrect: req.QuestionsCorrect,
		Notes:            req.Notes,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

func (h *ExamHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ExamHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Version <= 0 {
		handleError(c, domain.ErrVersionMissing)
		return
	}

	exam, err := h.svc.Update(c.Request.Context(), services.UpdateExamInput{
		ID:               c.Param("id"),
		UserID:           userID,
		Title:            req.Title,
		ExamDate:         req.ExamDate,
		ElapsedDuration:  req.ElapsedDuration,
		QuestionsTotal:   req.QuestionsTotal,
		QuestionsCorrect: req.QuestionsCorrect,
		Notes:            req.Notes,
		Version:          req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

func (h *ExamHandler) Delete(c *gin.Context) {
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
