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

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", h.RegisterCompany)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.RequireRole(
			model.RoleAdmin, model.RoleCompanyOwner, model.RoleSupervisor,
			model.RoleWarehouseManager, model.RoleStaff), h.Me)
	}

	users := router.Group("/api/users")
	{
		users.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner), h.Create)
		users.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner), h.List)
		users.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner), h.Get)
		users.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner), h.Update)
		users.DELETE("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleCompanyOwner), h.Delete)
	}
}

// RegisterCompany registers a tenant and its owner account
// @Summary      Register company
// @Description  Creates a company and its owner account in one step
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterCompanyDTO  true  "Registration payload"
// @Success      201      {object}  response.Envelope
// @Failure      409      {object}  response.Envelope
// @Router       /api/auth/register [post]
func (h *UserHandler) RegisterCompany(c *gin.Context) {
	var req service.RegisterCompanyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	company, owner, err := h.userService.RegisterCompany(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.OKMessage("Company registered", gin.H{
		"company": company,
		"owner":   owner,
	}))
}

// Login authenticates a user
// @Summary      Login
// @Description  Verifies credentials and returns a signed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginDTO  true  "Credentials"
// @Success      200      {object}  response.Envelope
// @Failure      401      {object}  response.Envelope
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Cookie for browser clients; the token in the body serves everyone else.
	c.SetCookie("access_token", result.Token, 24*60*60, "/", "", false, true)
	c.JSON(http.StatusOK, response.OK(result))
}

// Logout clears the auth cookie
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, response.OKMessage("Logged out", nil))
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Router       /api/auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), a.ID, a.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(user))
}

// Create adds a user to the actor's company
// @Summary      Create user
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateUserDTO  true  "User payload"
// @Success      201      {object}  response.Envelope
// @Failure      400      {object}  response.Envelope
// @Router       /api/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.CreateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.Create(c.Request.Context(), a.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage("User created", user))
}

// List returns the company's users
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        role   query     string  false  "Filter by role"
// @Param        page   query     int     false  "Page number"
// @Param        limit  query     int     false  "Items per page"
// @Success      200    {object}  response.Envelope
// @Router       /api/users [get]
func (h *UserHandler) List(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	users, total, err := h.userService.List(c.Request.Context(), a.ID, c.Query("role"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listEnvelope(users, total, p.Page, p.Limit)))
}

// Get returns one user
// @Summary      Get user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), a.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(user))
}

// Update modifies a user
// @Summary      Update user
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "User id"
// @Param        payload  body      service.UpdateUserDTO  true  "Fields to update"
// @Success      200      {object}  response.Envelope
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), a.ID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("User updated", user))
}

// Delete removes a user
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  response.Envelope
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), a.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage("User deleted", nil))
}
