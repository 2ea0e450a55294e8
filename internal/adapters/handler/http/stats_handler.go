package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-study-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-study-engine/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/stats/report", h.GetReport)
}

// GetReport godoc
// @Summary      Study report over an inclusive date range
// @Description  Defaults to the seven days ending today. At most 366 days.
// @Tags         stats
// @Security     BearerAuth
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  domain.Report
// @Failure      400  {object}  errorResponse
// @Router       /stats/report [get]
func (h *StatsHandler) GetReport(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var endDate, startDate time.Time
	var err error

	if raw := c.Query("end_date"); raw == "" {
		endDate = time.Now().UTC()
	} else if endDate, err = time.Parse(domain.DayLayout, raw); err != nil {
		badRequest(c, "invalid end_date format, expected YYYY-MM-DD")
		return
	}

	if raw := c.Query("start_date"); raw == "" {
		startDate = endDate.AddDate(0, 0, -6)
	} else if startDate, err = time.Parse(domain.DayLayout, raw); err != nil {
		badRequest(c, "invalid start_date format, expected YYYY-MM-DD")
		return
	}

	report, err := h.svc.GetReport(c.Request.Context(), domain.ReportInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
