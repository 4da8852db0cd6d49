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

type MessageHandler struct {
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) RegisterRoutes(router *gin.RouterGroup) {
	send := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin, model.RoleCompanyOwner)
	view := middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner, model.RoleSupervisor)

	messages := router.Group("/api/messages")
	{
		messages.POST("", send, h.Send)
		messages.GET("", view, h.List)
		messages.PUT("/:id/read", view, h.MarkRead)
	}
}

// Send posts a site-bound message
// @Summary      Send message
// @Tags         messages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.SendMessageDTO  true  "Message payload"
// @Success      201      {object}  response.Envelope
// @Router       /api/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.SendMessageDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), a.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("Message sent", message))
}

// List returns the company's messages
// @Summary      List messages
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Param        site_id  query     string  false  "Filter by site"
// @Param        page     query     int     false  "Page number"
// @Param        limit    query     int     false  "Items per page"
// @Success      200      {object}  response.Envelope
// @Router       /api/messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	messages, total, err := h.messageService.List(c.Request.Context(), a.ID, c.Query("site_id"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listEnvelope(messages, total, p.Page, p.Limit)))
}

// MarkRead flags a message as read
// @Summary      Mark message read
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Message id"
// @Success      200  {object}  response.Envelope
// @Router       /api/messages/{id}/read [put]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	message, err := h.messageService.MarkRead(c.Request.Context(), a.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(message))
}
