package handler

import (
	"net/http"
	"time"

	"buildsite/internal/middleware"
	"buildsite/internal/model"
	"buildsite/internal/service"
	"buildsite/pkg/pagination"
	"buildsite/pkg/response"

	"github.com/gin-gonic/gin"
)

type SiteHandler struct {
	siteService service.SiteService
}

func NewSiteHandler(siteService service.SiteService) *SiteHandler {
	return &SiteHandler{siteService: siteService}
}

func (h *SiteHandler) RegisterRoutes(router *gin.RouterGroup) {
	manage := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner)
	operate := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleSupervisor)
	view := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleSupervisor, model.RoleStaff)

	sites := router.Group("/api/sites")
	{
		sites.POST("", manage, h.Create)
		sites.GET("", view, h.List)
		sites.GET("/:id", view, h.Get)
		sites.PUT("/:id", manage, h.Update)
		sites.DELETE("/:id", manage, h.Delete)
		sites.PUT("/:id/supervisors", manage, h.AssignSupervisors)

		sites.POST("/:id/supplies", operate, h.AddSupply)
		sites.GET("/:id/supplies", view, h.ListSupplies)
		sites.PUT("/:id/supplies/:supplyId", operate, h.UpdateSupply)
		sites.DELETE("/:id/supplies/:supplyId", manage, h.DeleteSupply)
		sites.PUT("/:id/supplies/:supplyId/price", manage, h.PriceSupply)
		sites.POST("/:id/supplies/import", operate, h.ImportSupplies)

		sites.POST("/:id/workers", operate, h.AddWorker)
		sites.GET("/:id/workers", view, h.ListWorkers)
		sites.PUT("/:id/workers/:workerId", operate, h.UpdateWorker)
		sites.DELETE("/:id/workers/:workerId", manage, h.DeleteWorker)
		sites.POST("/:id/attendance", operate, h.MarkAttendance)
		sites.GET("/:id/workers/:workerId/attendance", view, h.ListAttendance)

		sites.POST("/:id/announcements", operate, h.PostAnnouncement)
		sites.GET("/:id/announcements", view, h.ListAnnouncements)
		sites.POST("/:id/announcements/:announcementId/read", view, h.MarkAnnouncementRead)
	}
}

// Create creates a site
// @Summary      Create site
// @Tags         sites
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSiteDTO  true  "Site payload"
// @Success      201      {object}  response.Envelope
// @Router       /api/sites [post]
func (h *SiteHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.CreateSiteDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	site, err := h.siteService.Create(c.Request.Context(), a.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("Site created", site))
}

// List returns the actor's sites
// @Summary      List sites
// @Tags         sites
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Items per page"
// @Success      200    {object}  response.Envelope
// @Router       /api/sites [get]
func (h *SiteHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	sites, total, err := h.siteService.List(c.Request.Context(), a.ID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listEnvelope(sites, total, p.Page, p.Limit)))
}

// Get returns one site
// @Summary      Get site
// @Tags         sites
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Site id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/sites/{id} [get]
func (h *SiteHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	site, err := h.siteService.Get(c.Request.Context(), a.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(site))
}

// Update modifies a site
// @Summary      Update site
// @Tags         sites
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Site id"
// @Param        payload  body      service.UpdateSiteDTO  true  "Fields to update"
// @Success      200      {object}  response.Envelope
// @Router       /api/sites/{id} [put]
func (h *SiteHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateSiteDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	site, err := h.siteService.Update(c.Request.Context(), a.ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Site updated", site))
}

// Delete removes a site
// @Summary      Delete site
// @Tags         sites
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Site id"
// @Success      200  {object}  response.Envelope
// @Router       /api/sites/{id} [delete]
func (h *SiteHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.siteService.Delete(c.Request.Context(), a.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Site deleted", nil))
}

// AssignSupervisors replaces the site's supervisor set
// @Summary      Assign supervisors
// @Tags         sites
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string    true  "Site id"
// @Param        payload  body      object{supervisor_ids=[]string}  true  "Supervisor ids"
// @Success      200      {object}  response.Envelope
// @Router       /api/sites/{id}/supervisors [put]
func (h *SiteHandler) AssignSupervisors(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		SupervisorIDs []string `json:"supervisor_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	site, err := h.siteService.AssignSupervisors(c.Request.Context(), a.ID, id, req.SupervisorIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Supervisors assigned", site))
}

// --- Supplies ---

// AddSupply adds an inventory line to a site
// @Summary      Add site supply
// @Tags         site-supplies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Site id"
// @Param        payload  body      service.AddSupplyDTO  true  "Supply payload"
// @Success      201      {object}  response.Envelope
// @Router       /api/sites/{id}/supplies [post]
func (h *SiteHandler) AddSupply(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.AddSupplyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	supply, err := h.siteService.AddSupply(c.Request.Context(), a.ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("Supply added", supply))
}

// ListSupplies returns a site's inventory
// @Summary      List site supplies
// @Tags         site-supplies
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Site id"
// @Success      200  {object}  response.Envelope
// @Router       /api/sites/{id}/supplies [get]
func (h *SiteHandler) ListSupplies(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	supplies, err := h.siteService.ListSupplies(c.Request.Context(), a.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(supplies))
}

// UpdateSupply modifies an inventory line
// @Summary      Update site supply
// @Tags         site-supplies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id        path      string                   true  "Site id"
// @Param        supplyId  path      string                   true  "Supply id"
// @Param        payload   body      service.UpdateSupplyDTO  true  "Fields to update"
// @Success      200       {object}  response.Envelope
// @Router       /api/sites/{id}/supplies/{supplyId} [put]
func (h *SiteHandler) UpdateSupply(c *gin.Context) {
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
	var req service.UpdateSupplyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	supply, err := h.siteService.UpdateSupply(c.Request.Context(), a.ID, id, supplyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Supply updated", supply))
}

// DeleteSupply removes an inventory line
// @Summary      Delete site supply
// @Tags         site-supplies
// @Security     BearerAuth
// @Produce      json
// @Param        id        path      string  true  "Site id"
// @Param        supplyId  path      string  true  "Supply id"
// @Success      200       {object}  response.Envelope
// @Router       /api/sites/{id}/supplies/{supplyId} [delete]
func (h *SiteHandler) DeleteSupply(c *gin.Context) {
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

	if err := h.siteService.DeleteSupply(c.Request.Context(), a.ID, id, supplyID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Supply deleted", nil))
}

// PriceSupply sets the cost of a pending line
// @Summary      Price site supply
// @Tags         site-supplies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id        path      string                  true  "Site id"
// @Param        supplyId  path      string                  true  "Supply id"
// @Param        payload   body      service.PriceSupplyDTO  true  "Price"
// @Success      200       {object}  response.Envelope
// @Router       /api/sites/{id}/supplies/{supplyId}/price [put]
func (h *SiteHandler) PriceSupply(c *gin.Context) {
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
	var req service.PriceSupplyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	supply, err := h.siteService.PriceSupply(c.Request.Context(), a.ID, id, supplyID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Supply priced", supply))
}

// ImportSupplies bulk imports a CSV/XLSX sheet into the site inventory
// @Summary      Import site supplies
// @Tags         site-supplies
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Site id"
// @Param        file  formData  file    true  "CSV or XLSX file"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Router       /api/sites/{id}/supplies/import [post]
func (h *SiteHandler) ImportSupplies(c *gin.Context) {
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
	rows, err := parseImportFile(fileHeader, false)
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.siteService.BulkImportSupplies(c.Request.Context(), a.ID, id, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Import complete", summary))
}

// --- Workers & attendance ---

// AddWorker registers a worker on a site
// @Summary      Add worker
// @Tags         workers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Site id"
// @Param        payload  body      service.AddWorkerDTO  true  "Worker payload"
// @Success      201      {object}  response.Envelope
// @Router       /api/sites/{id}/workers [post]
func (h *SiteHandler) AddWorker(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.AddWorkerDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	worker, err := h.siteService.AddWorker(c.Request.Context(), a.ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("Worker added", worker))
}

// ListWorkers returns a site's workers
// @Summary      List workers
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Site id"
// @Success      200  {object}  response.Envelope
// @Router       /api/sites/{id}/workers [get]
func (h *SiteHandler) ListWorkers(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	workers, err := h.siteService.ListWorkers(c.Request.Context(), a.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(workers))
}

// UpdateWorker modifies a worker
// @Summary      Update worker
// @Tags         workers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id        path      string                   true  "Site id"
// @Param        workerId  path      string                   true  "Worker id"
// @Param        payload   body      service.UpdateWorkerDTO  true  "Fields to update"
// @Success      200       {object}  response.Envelope
// @Router       /api/sites/{id}/workers/{workerId} [put]
func (h *SiteHandler) UpdateWorker(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	workerID, ok := pathID(c, "workerId")
	if !ok {
		return
	}
	var req service.UpdateWorkerDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	worker, err := h.siteService.UpdateWorker(c.Request.Context(), a.ID, id, workerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Worker updated", worker))
}

// DeleteWorker removes a worker
// @Summary      Delete worker
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Param        id        path      string  true  "Site id"
// @Param        workerId  path      string  true  "Worker id"
// @Success      200       {object}  response.Envelope
// @Router       /api/sites/{id}/workers/{workerId} [delete]
func (h *SiteHandler) DeleteWorker(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	workerID, ok := pathID(c, "workerId")
	if !ok {
		return
	}

	if err := h.siteService.DeleteWorker(c.Request.Context(), a.ID, id, workerID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Worker deleted", nil))
}

// MarkAttendance records a worker's status for one day
// @Summary      Mark attendance
// @Tags         workers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Site id"
// @Param        payload  body      service.MarkAttendanceDTO  true  "Attendance payload"
// @Success      200      {object}  response.Envelope
// @Router       /api/sites/{id}/attendance [post]
func (h *SiteHandler) MarkAttendance(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.MarkAttendanceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.siteService.MarkAttendance(c.Request.Context(), a.ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Attendance marked", record))
}

// ListAttendance returns a worker's attendance history
// @Summary      Attendance history
// @Tags         workers
// @Security     BearerAuth
// @Produce      json
// @Param        id        path      string  true   "Site id"
// @Param        workerId  path      string  true   "Worker id"
// @Param        from      query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to        query     string  false  "End date (YYYY-MM-DD)"
// @Success      200       {object}  response.Envelope
// @Router       /api/sites/{id}/workers/{workerId}/attendance [get]
func (h *SiteHandler) ListAttendance(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	workerID, ok := pathID(c, "workerId")
	if !ok {
		return
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Fail("from must be YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Fail("to must be YYYY-MM-DD"))
			return
		}
		to = parsed
	}

	records, err := h.siteService.ListAttendance(c.Request.Context(), a.ID, id, workerID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(records))
}

// --- Announcements ---

// PostAnnouncement publishes a site-wide notice
// @Summary      Post announcement
// @Tags         announcements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Site id"
// @Param        payload  body      service.PostAnnouncementDTO  true  "Announcement payload"
// @Success      201      {object}  response.Envelope
// @Router       /api/sites/{id}/announcements [post]
func (h *SiteHandler) PostAnnouncement(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.PostAnnouncementDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	announcement, err := h.siteService.PostAnnouncement(c.Request.Context(), a.ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("Announcement posted", announcement))
}

// ListAnnouncements returns a site's announcements
// @Summary      List announcements
// @Tags         announcements
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Site id"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Items per page"
// @Success      200    {object}  response.Envelope
// @Router       /api/sites/{id}/announcements [get]
func (h *SiteHandler) ListAnnouncements(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p := pagination.Parse(c)

	announcements, total, err := h.siteService.ListAnnouncements(c.Request.Context(), a.ID, id, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listEnvelope(announcements, total, p.Page, p.Limit)))
}

// MarkAnnouncementRead records a read receipt
// @Summary      Mark announcement read
// @Tags         announcements
// @Security     BearerAuth
// @Produce      json
// @Param        id              path      string  true  "Site id"
// @Param        announcementId  path      string  true  "Announcement id"
// @Success      200             {object}  response.Envelope
// @Router       /api/sites/{id}/announcements/{announcementId}/read [post]
func (h *SiteHandler) MarkAnnouncementRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	announcementID, ok := pathID(c, "announcementId")
	if !ok {
		return
	}

	if err := h.siteService.MarkAnnouncementRead(c.Request.Context(), a.ID, id, announcementID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("Announcement marked read", nil))
}
