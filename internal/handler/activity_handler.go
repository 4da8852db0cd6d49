package handler

import (
	"net/http"

	"buildsite/internal/middleware"
	"buildsite/internal/model"
	"buildsite/internal/service"
	"buildsite/pkg/pagination"
	"buildsite/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	view := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleSupervisor, model.RoleWarehouseManager)

	activity := router.Group("/api/activity")
	{
		activity.GET("", view, h.CompanyFeed)
		activity.GET("/:entityType/:entityId", view, h.EntityFeed)
	}
}

// CompanyFeed returns the paginated per-company audit trail
// @Summary      Company activity feed
// @Tags         activity
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Items per page"
// @Success      200    {object}  response.Envelope
// @Router       /api/activity [get]
func (h *ActivityHandler) CompanyFeed(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	logs, total, err := h.activityService.CompanyFeed(c.Request.Context(), a.ID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listEnvelope(logs, total, p.Page, p.Limit)))
}

// EntityFeed returns recent activity for one entity
// @Summary      Entity activity feed
// @Tags         activity
// @Security     BearerAuth
// @Produce      json
// @Param        entityType  path      string  true  "Entity type (Site, Warehouse, User)"
// @Param        entityId    path      string  true  "Entity id"
// @Success      200         {object}  response.Envelope
// @Router       /api/activity/{entityType}/{entityId} [get]
func (h *ActivityHandler) EntityFeed(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	entityID, ok := pathID(c, "entityId")
	if !ok {
		return
	}

	logs, err := h.activityService.EntityFeed(c.Request.Context(), a.ID, c.Param("entityType"), entityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(logs))
}
