package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

type StreakHandler struct {
	svc *services.StreakService
	now func() time.Time
}

// NewStreakHandler serves the streak views. clock may be nil, in which case
// the wall clock is used.
func NewStreakHandler(svc *services.StreakService, clock func() time.Time) *StreakHandler {
	if clock == nil {
		clock = time.Now
	}
	return &StreakHandler{svc: svc, now: clock}
}

func (h *StreakHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/streak", h.Summary)
	r.GET("/streak/calendar", h.Calendar)
	r.GET("/streak/strip", h.Strip)
}

// Summary godoc
// @Summary      Current and best streak
// @Tags         streak
// @Security     BearerAuth
// @Success      200  {object}  domain.StreakSummary
// @Router       /streak [get]
func (h *StreakHandler) Summary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), userID, h.now())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Calendar godoc
// @Summary      Classified days of one month
// @Tags         streak
// @Security     BearerAuth
// @Param        month  query  string  false  "YYYY-MM, defaults to the current month in the user's timezone"
// @Success      200    {array}  domain.DayCell
// @Failure      400    {object}  errorResponse
// @Router       /streak/calendar [get]
func (h *StreakHandler) Calendar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var (
		year  int
		month time.Month
	)
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			badRequest(c, "invalid month format, expected YYYY-MM")
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}

	cal, err := h.svc.Calendar(c.Request.Context(), userID, year, month, h.now())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month": cal.Label(),
		"days":  cal.Days,
	})
}

func (h *StreakHandler) Strip(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handleError(c, domain.ErrInvalidRange)
			return
		}
		days = n
		if days == 0 {
			handleError(c, domain.ErrInvalidRange)
			return
		}
	}

	cells, err := h.svc.Strip(c.Request.Context(), userID, days, h.now())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cells)
}
