package handlers

import (
	"net/http"

	"orientation-service/internal/middleware"
	"orientation-service/internal/service"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.stats.Dashboard(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GET /api/admin/statistics?timeRange=week|month|year
func (h *StatsHandler) QuizStatistics(c *gin.Context) {
	stats, err := h.stats.QuizStatistics(c.Request.Context(), middleware.PrincipalFrom(c), c.Query("timeRange"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
