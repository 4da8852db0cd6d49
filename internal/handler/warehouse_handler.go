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

type WarehouseHandler struct {
	warehouseService service.WarehouseService
}

func NewWarehouseHandler(warehouseService service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

func (h *WarehouseHandler) RegisterRoutes(router *gin.RouterGroup) {
	manage := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner)
	stock := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleWarehouseManager)
	view := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleWarehouseManager, model.RoleSupervisor)

	warehouses := router.Group("/api/warehouses")
	{
		warehouses.POST("", manage, h.Create)
		warehouses.GET("", view, h.List)
		warehouses.GET("/:id", view, h.Get)
		warehouses.PUT("/:id", manage, h.Update)
		warehouses.DELETE("/:id", manage, h.Delete)
		warehouses.GET("/:id/valuation", stock, h.Valuation)

		warehouses.POST("/:id/supplies", stock, h.AddSupply)
		warehouses.GET("/:id/supplies", view, h.ListSupplies)
		warehouses.PUT("/:id/supplies/:supplyId", stock, h.UpdateSupply)
		warehouses.DELETE("/:id/supplies/:supplyId", manage, h.DeleteSupply)
		warehouses.POST("/:id/supplies/import", stock, h.ImportSupplies)
	}
}

// Create creates a warehouse
// @Summary      Create warehouse
// @Tags         warehouses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateWarehouseDTO  true  "Warehouse payload"
// @Success      201      {object}  response.Envelope
// @Router       /api/warehouses [post]
func (h *WarehouseHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.CreateWarehouseDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	warehouse, err := h.warehouseService.Create(c.Request.Context(), a.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("Warehouse created", warehouse))
}

// List returns the company's warehouses
// @Summary      List warehouses
// @Tags         warehouses
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Items per page"
// @Success      200    {object}  response.Envelope
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	warehouses, total, err := h.warehouseService.List(c.Request.Context(), a.ID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listEnvelope(warehouses, total, p.Page, p.Limit)))
}

// Get returns one warehouse
// @Summary      Get warehouse
// @Tags         warehouses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Warehouse id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/warehouses/{id} [get]
func (h *WarehouseHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	warehouse, err := h.warehouseService.Get(c.Request.Context(), a.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(warehouse))
}

// Update modifies a warehouse
// @Summary      Update warehouse
// @Tags         warehouses
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Warehouse id"
// @Param        payload  body      service.UpdateWarehouseDTO  true  "Fields to update"
// @Success      200      {object}  response.Envelope
// @Router       /api/warehouses/{id} [put]
func (h *WarehouseHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateWarehouseDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	warehouse, err := h.warehouseService.Update(c.Request.Context(), a.ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Warehouse updated", warehouse))
}

// Delete removes a warehouse
// @Summary      Delete warehouse
// @Tags         warehouses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Warehouse id"
// @Success      200  {object}  response.Envelope
// @Router       /api/warehouses/{id} [delete]
func (h *WarehouseHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.warehouseService.Delete(c.Request.Context(), a.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Warehouse deleted", nil))
}

// Valuation totals the warehouse's stock value
// @Summary      Warehouse valuation
// @Tags         warehouses
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Warehouse id"
// @Success      200  {object}  response.Envelope
// @Router       /api/warehouses/{id}/valuation [get]
func (h *WarehouseHandler) Valuation(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	valuation, err := h.warehouseService.Valuation(c.Request.Context(), a.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(valuation))
}

// AddSupply stocks a new line
// @Summary      Add warehouse supply
// @Tags         warehouse-supplies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Warehouse id"
// @Param        payload  body      service.AddWarehouseSupplyDTO  true  "Supply payload"
// @Success      201      {object}  response.Envelope
// @Router       /api/warehouses/{id}/supplies [post]
func (h *WarehouseHandler) AddSupply(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.AddWarehouseSupplyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	supply, err := h.warehouseService.AddSupply(c.Request.Context(), a.ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("Supply stocked", supply))
}

// ListSupplies returns a warehouse's stock
// @Summary      List warehouse supplies
// @Tags         warehouse-supplies
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Warehouse id"
// @Success      200  {object}  response.Envelope
// @Router       /api/warehouses/{id}/supplies [get]
func (h *WarehouseHandler) ListSupplies(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	supplies, err := h.warehouseService.ListSupplies(c.Request.Context(), a.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(supplies))
}

// UpdateSupply modifies a stock line
// @Summary      Update warehouse supply
// @Tags         warehouse-supplies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id        path      string                            true  "Warehouse id"
// @Param        supplyId  path      string                            true  "Supply id"
// @Param        payload   body      service.UpdateWarehouseSupplyDTO  true  "Fields to update"
// @Success      200       {object}  response.Envelope
// @Router       /api/warehouses/{id}/supplies/{supplyId} [put]
func (h *WarehouseHandler) UpdateSupply(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	supplyID, ok := pathID(c, "supplyId")
	if !ok {
		return
	}
	var req service.UpdateWarehouseSupplyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	supply, err := h.warehouseService.UpdateSupply(c.Request.Context(), a.ID, id, supplyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Supply updated", supply))
}

// DeleteSupply removes a stock line
// @Summary      Delete warehouse supply
// @Tags         warehouse-supplies
// @Security     BearerAuth
// @Produce      json
// @Param        id        path      string  true  "Warehouse id"
// @Param        supplyId  path      string  true  "Supply id"
// @Success      200       {object}  response.Envelope
// @Router       /api/warehouses/{id}/supplies/{supplyId} [delete]
func (h *WarehouseHandler) DeleteSupply(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	supplyID, ok := pathID(c, "supplyId")
	if !ok {
		return
	}

	if err := h.warehouseService.DeleteSupply(c.Request.Context(), a.ID, id, supplyID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Supply deleted", nil))
}

// ImportSupplies bulk imports a CSV/XLSX sheet into the warehouse stock
// @Summary      Import warehouse supplies
// @Tags         warehouse-supplies
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Warehouse id"
// @Param        file  formData  file    true  "CSV or XLSX file with prices"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /api/warehouses/{id}/supplies/import [post]
func (h *WarehouseHandler) ImportSupplies(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Missing file upload"))
		return
	}
	rows, err := parseImportFile(fileHeader, true)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.warehouseService.BulkImportSupplies(c.Request.Context(), a.ID, id, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Import complete", summary))
}
