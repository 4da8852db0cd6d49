package handler

import (
	"net/http"

	"buildsite/internal/middleware"
	"buildsite/internal/model"
	"buildsite/internal/service"
	"buildsite/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/api/stats")
	{
		stats.GET("/dashboard", middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner), h.Dashboard)
	}
}

// Dashboard returns company-wide counts and stock value
// @Summary      Dashboard statistics
// @Tags         stats
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /api/stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	stats, err := h.statsService.Dashboard(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(stats))
}
