package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

type SubjectHandler struct {
	svc *services.SubjectService
}

func NewSubjectHandler(svc *services.SubjectService) *SubjectHandler {
	return &SubjectHandler{
		svc: svc,
	}
}

type createSubjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

type updateSubjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Archived    *bool  `json:"archived"`
	Version     int    `json:"version"`
}

type positionRequest struct {
	Position *int `json:"position" binding:"required"`
}

func (h *SubjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	subjects := router.Group("/subjects")
	{
		subjects.POST("", h.Create)
		subjects.GET("", h.List)
		subjects.GET("/sync", h.Sync)
		subjects.GET("/cycle", h.Current)
		subjects.POST("/cycle/next", h.Advance)
		subjects.PUT("/:id", h.Update)
		subjects.PATCH("/:id/position", h.Reorder)
		subjects.DELETE("/:id", h.Delete)
	}
}

// Create godoc
// @Summary      Add a subject to the study cycle
// @Tags         subjects
// @Security     BearerAuth
// @Param        body  body      createSubjectRequest  true  "subject"
// @Success      201   {object}  domain.Subject
// @Failure      400   {object}  errorResponse
// @Router       /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	subject, err := h.svc.Create(c.Request.Context(), services.CreateSubjectInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, subject)
}

func (h *SubjectHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Sync returns every subject changed after last_sync, soft deletes included.
func (h *SubjectHandler) Sync(c *gin.Context) {
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

func (h *SubjectHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	subject, err := h.svc.Update(c.Request.Context(), services.UpdateSubjectInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		Archived:    req.Archived,
		Version:     req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) Reorder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	subject, err := h.svc.Reorder(c.Request.Context(), c.Param("id"), userID, *req.Position)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) Delete(c *gin.Context) {
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

// Current godoc
// @Summary      Subject the user is currently on in the study cycle
// @Tags         subjects
// @Security     BearerAuth
// @Success      200  {object}  domain.Subject
// @Failure      404  {object}  errorResponse
// @Router       /subjects/cycle [get]
func (h *SubjectHandler) Current(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	subject, err := h.svc.Current(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) Advance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	subject, err := h.svc.Advance(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, subject)
}

func parseLastSync(c *gin.Context) (time.Time, bool) {
	raw := c.Query("last_sync")
	if raw == "" {
		return time.Time{}, true
	}

	lastSync, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		badRequest(c, "invalid last_sync format, use RFC3339")
		return time.Time{}, false
	}
	return lastSync, true
}
