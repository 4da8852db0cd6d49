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

type SupplyRequestHandler struct {
	requestService service.SupplyRequestService
}

func NewSupplyRequestHandler(requestService service.SupplyRequestService) *SupplyRequestHandler {
	return &SupplyRequestHandler{requestService: requestService}
}

func (h *SupplyRequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	raise := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleSupervisor)
	handle := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleWarehouseManager)
	view := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleSupervisor, model.RoleWarehouseManager)

	requests := router.Group("/api/supply-requests")
	{
		requests.POST("", raise, h.Create)
		requests.GET("", view, h.List)
		requests.PUT("/:id/approve", handle, h.Approve)
		requests.PUT("/:id/reject", handle, h.Reject)
	}
}

// Create raises one or more supply requests
// @Summary      Create supply requests
// @Description  Raises requests for the given items; multiple items share a batch id
// @Tags         supply-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSupplyRequestDTO  true  "Request payload"
// @Success      201      {object}  response.Envelope
// @Failure      400      {object}  response.Envelope
// @Router       /api/supply-requests [post]
func (h *SupplyRequestHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.CreateSupplyRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	created, err := h.requestService.Create(c.Request.Context(), a.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("Supply requests created", created))
}

// List returns the company's supply requests
// @Summary      List supply requests
// @Tags         supply-requests
// @Security     BearerAuth
// @Produce      json
// @Param        site_id       query     string  false  "Filter by site"
// @Param        warehouse_id  query     string  false  "Filter by warehouse"
// @Param        status        query     string  false  "Filter by status (pending, approved, rejected)"
// @Param        page          query     int     false  "Page number"
// @Param        limit         query     int     false  "Items per page"
// @Success      200           {object}  response.Envelope
// @Router       /api/supply-requests [get]
func (h *SupplyRequestHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if a.CompanyID == nil {
		c.JSON(http.StatusForbidden, response.Fail("User does not belong to a company"))
		return
	}
	p := pagination.Parse(c)

	filter := service.SupplyRequestFilterDTO{
		SiteID:      c.Query("site_id"),
		WarehouseID: c.Query("warehouse_id"),
		Status:      c.Query("status"),
		Page:        p.Page,
		Limit:       p.Limit,
	}
	requests, total, err := h.requestService.List(c.Request.Context(), *a.CompanyID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listEnvelope(requests, total, p.Page, p.Limit)))
}

// Approve transfers stock and marks the request approved
// @Summary      Approve supply request
// @Description  Decrements warehouse stock, credits the site inventory and marks the request handled
// @Tags         supply-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Request id"
// @Param        payload  body      service.ApproveRequestDTO  true  "Transfer quantity"
// @Success      200      {object}  response.Envelope
// @Failure      409      {object}  response.Envelope
// @Router       /api/supply-requests/{id}/approve [put]
func (h *SupplyRequestHandler) Approve(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.ApproveRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.Approve(c.Request.Context(), id, req.TransferQuantity, a.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Supply request approved", result))
}

// Reject declines a supply request
// @Summary      Reject supply request
// @Tags         supply-requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Request id"
// @Param        payload  body      service.RejectRequestDTO  true  "Rejection reason"
// @Success      200      {object}  response.Envelope
// @Router       /api/supply-requests/{id}/reject [put]
func (h *SupplyRequestHandler) Reject(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.RejectRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.requestService.Reject(c.Request.Context(), id, req.Reason, a.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Supply request rejected", result))
}
