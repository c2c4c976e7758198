package handler

import (
	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StaffHandler handles staff management API endpoints
type StaffHandler struct {
	BaseHandler
	staffService *identityapp.StaffService
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(staffService *identityapp.StaffService) *StaffHandler {
	return &StaffHandler{
		staffService: staffService,
	}
}

// actorRole returns the authenticated staff member's role
func actorRole(c *gin.Context) identity.StaffRole {
	return identity.StaffRole(middleware.GetJWTRole(c))
}

// Create godoc
// @ID           createStaff
// @Summary      Create a staff member
// @Description  Create a new staff account (admin only)
// @Tags         staff
// @Accept       json
// @Produce      json
// @Param        request body identityapp.CreateStaffRequest true "Staff creation request"
// @Success      201 {object} APIResponse[identityapp.StaffResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req identityapp.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	staff, err := h.staffService.CreateStaff(c.Request.Context(), req, actorRole(c), getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, staff)
}

// GetByID godoc
// @ID           getStaffById
// @Summary      Get staff member by ID
// @Tags         staff
// @Produce      json
// @Param        id path string true "Staff ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.StaffResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /staff/{id} [get]
func (h *StaffHandler) GetByID(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid staff ID format")
		return
	}

	staff, err := h.staffService.GetStaff(c.Request.Context(), staffID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, staff)
}

// List godoc
// @ID           listStaff
// @Summary      List staff members
// @Description  Retrieve a paginated list of staff with optional filtering
// @Tags         staff
// @Produce      json
// @Param        search query string false "Search term (name, email)"
// @Param        role query string false "Role" Enums(ADMIN, AGENT, DELIVERY, VIEWER)
// @Param        country query string false "Country"
// @Param        active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]identityapp.StaffResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	var filter identityapp.StaffListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.staffService.ListStaff(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateStaff
// @Summary      Update a staff member
// @Description  Update a staff member's profile (admin only)
// @Tags         staff
// @Accept       json
// @Produce      json
// @Param        id path string true "Staff ID" format(uuid)
// @Param        request body identityapp.UpdateStaffRequest true "Staff update request"
// @Success      200 {object} APIResponse[identityapp.StaffResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid staff ID format")
		return
	}

	var req identityapp.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	staff, err := h.staffService.UpdateStaff(c.Request.Context(), staffID, req, actorRole(c), getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, staff)
}

// Deactivate godoc
// @ID           deactivateStaff
// @Summary      Deactivate a staff member
// @Description  Deactivate a staff account so it can no longer log in (admin only)
// @Tags         staff
// @Produce      json
// @Param        id path string true "Staff ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.StaffResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /staff/{id}/deactivate [post]
func (h *StaffHandler) Deactivate(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid staff ID format")
		return
	}

	staff, err := h.staffService.DeactivateStaff(c.Request.Context(), staffID, actorRole(c), getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, staff)
}
