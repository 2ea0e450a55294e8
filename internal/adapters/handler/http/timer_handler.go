package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

type TimerHandler struct {
	svc *services.TimerService
}

func NewTimerHandler(svc *services.TimerService) *TimerHandler {
	return &TimerHandler{svc: svc}
}

type startTimerRequest struct {
	SubjectID string `json:"subject_id"`
	Category  string `json:"category"`
}

type finishTimerRequest struct {
	Notes string `json:"notes"`
}

func (h *TimerHandler) RegisterRoutes(router *gin.RouterGroup) {
	timer := router.Group("/timer")
	{
		timer.GET("", h.Get)
		timer.DELETE("", h.Discard)
		timer.POST("/start", h.Start)
		timer.POST("/pause", h.Pause)
		timer.POST("/resume", h.Resume)
		timer.POST("/finish", h.Finish)
	}
}

// bindOptionalJSON accepts an empty body as the zero value.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return false
	}
	return true
}

// Start godoc
// @Summary      Start the study timer
// @Tags         timer
// @Security     BearerAuth
// @Param        body  body      startTimerRequest  false  "optional subject and category"
// @Success      201   {object}  services.TimerView
// @Failure      409   {object}  errorResponse
// @Router       /timer/start [post]
func (h *TimerHandler) Start(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req startTimerRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	view, err := h.svc.Start(c.Request.Context(), userID, req.SubjectID, req.Category)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *TimerHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TimerHandler) Pause(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.svc.Pause(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TimerHandler) Resume(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.svc.Resume(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TimerHandler) Discard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.Discard(c.Request.Context(), userID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Finish godoc
// @Summary      Stop the timer and log the elapsed time as a session
// @Tags         timer
// @Security     BearerAuth
// @Param        body  body      finishTimerRequest  false  "optional notes"
// @Success      201   {object}  domain.StudySession
// @Failure      404   {object}  errorResponse
// @Router       /timer/finish [post]
func (h *TimerHandler) Finish(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req finishTimerRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	session, err := h.svc.Finish(c.Request.Context(), userID, req.Notes)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}
