package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

type SettingsHandler struct {
	svc *services.SettingsService
}

func NewSettingsHandler(svc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

type restDaysRequest struct {
	RestDays []int `json:"rest_days" binding:"required"`
	Version  int   `json:"version"`
}

type timezoneRequest struct {
	Timezone string `json:"timezone" binding:"required"`
	Version  int    `json:"version"`
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PUT("/rest-days", h.SaveRestDays)
		settings.PUT("/timezone", h.SetTimezone)
	}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	settings, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SaveRestDays godoc
// @Summary      Replace the weekdays that never break a streak
// @Description  0 is Sunday, 6 is Saturday. Duplicates are dropped.
// @Tags         settings
// @Security     BearerAuth
// @Param        body  body      restDaysRequest  true  "rest days"
// @Success      200   {object}  domain.Settings
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /settings/rest-days [put]
func (h *SettingsHandler) SaveRestDays(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req restDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	settings, err := h.svc.SaveRestDays(c.Request.Context(), userID, req.RestDays, req.Version)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) SetTimezone(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req timezoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	settings, err := h.svc.SetTimezone(c.Request.Context(), userID, req.Timezone, req.Version)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
