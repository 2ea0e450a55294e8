package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

type SnapshotHandler struct {
	svc *services.SnapshotService
}

func NewSnapshotHandler(svc *services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{svc: svc}
}

func (h *SnapshotHandler) RegisterRoutes(router *gin.RouterGroup) {
	snapshots := router.Group("/snapshots")
	{
		snapshots.POST("", h.Push)
		snapshots.GET("", h.List)
		snapshots.GET("/:code", h.Get)
		snapshots.POST("/:code/restore", h.Restore)
	}
}

// Push godoc
// @Summary      Export all study data into a new snapshot
// @Tags         snapshots
// @Security     BearerAuth
// @Success      201  {object}  domain.SnapshotInfo
// @Router       /snapshots [post]
func (h *SnapshotHandler) Push(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	snap, err := h.svc.Push(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":       snap.Code,
		"created_at": snap.CreatedAt,
		"subjects":   len(snap.Subjects),
		"sessions":   len(snap.Sessions),
		"exams":      len(snap.Exams),
	})
}

func (h *SnapshotHandler) List(c *gin.Context) {
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

func (h *SnapshotHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	snap, err := h.svc.Get(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Restore godoc
// @Summary      Replace the study log with a snapshot
// @Tags         snapshots
// @Security     BearerAuth
// @Param        code  path  string  true  "snapshot code"
// @Success      200   {object}  map[string]any
// @Failure      404   {object}  errorResponse
// @Router       /snapshots/{code}/restore [post]
func (h *SnapshotHandler) Restore(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	snap, err := h.svc.Restore(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":     snap.Code,
		"subjects": len(snap.Subjects),
		"sessions": len(snap.Sessions),
		"exams":    len(snap.Exams),
	})
}
