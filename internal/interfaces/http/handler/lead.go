package handler

import (
	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadHandler handles lead API endpoints, including conversion to orders
type LeadHandler struct {
	BaseHandler
	leadService       *crmapp.LeadService
	conversionService *crmapp.ConversionService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *crmapp.LeadService, conversionService *crmapp.ConversionService) *LeadHandler {
	return &LeadHandler{
		leadService:       leadService,
		conversionService: conversionService,
	}
}

// Create godoc
// @ID           createLead
// @Summary      Create a new lead
// @Description  Register an inbound lead, optionally with products, an intake form, and agent assignment
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body crmapp.CreateLeadRequest true "Lead creation request"
// @Success      201 {object} APIResponse[crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req crmapp.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.CreateLead(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, lead)
}

// GetByID godoc
// @ID           getLeadById
// @Summary      Get lead by ID
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	lead, err := h.leadService.GetLead(c.Request.Context(), leadID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// List godoc
// @ID           listLeads
// @Summary      List leads
// @Description  Retrieve a paginated list of leads with optional filtering
// @Tags         leads
// @Produce      json
// @Param        search query string false "Search term (phone, notes)"
// @Param        status query string false "Lead status" Enums(NEW, CONTACTED, FOLLOW_UP, WON, LOST)
// @Param        country query string false "Country"
// @Param        source query string false "Source channel"
// @Param        agent_id query string false "Assigned agent ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	var filter crmapp.LeadListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.leadService.ListLeads(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateLead
// @Summary      Update a lead
// @Description  Update a lead's editable details; nil fields are left unchanged
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body crmapp.UpdateLeadRequest true "Lead update request"
// @Success      200 {object} APIResponse[crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req crmapp.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.UpdateLead(c.Request.Context(), leadID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// ChangeStatus godoc
// @ID           changeLeadStatus
// @Summary      Change lead status
// @Description  Move a lead between working statuses; WON and LOST are set through conversion and mark-lost
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body crmapp.ChangeLeadStatusRequest true "Target status"
// @Success      200 {object} APIResponse[crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/status [put]
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req crmapp.ChangeLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.ChangeLeadStatus(c.Request.Context(), leadID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// MarkLost godoc
// @ID           markLeadLost
// @Summary      Mark a lead as lost
// @Description  Close a lead with a mandatory reason
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body crmapp.MarkLeadLostRequest true "Lost reason"
// @Success      200 {object} APIResponse[crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/lost [post]
func (h *LeadHandler) MarkLost(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req crmapp.MarkLeadLostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.MarkLeadLost(c.Request.Context(), leadID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// Assign godoc
// @ID           assignLead
// @Summary      Assign an agent to a lead
// @Description  Assign the given agent, or the next agent in rotation when agent_id is omitted
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body crmapp.AssignLeadRequest true "Agent assignment"
// @Success      200 {object} APIResponse[crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/assign [post]
func (h *LeadHandler) Assign(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req crmapp.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.AssignLead(c.Request.Context(), leadID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// SetIntakeForm godoc
// @ID           setLeadIntakeForm
// @Summary      Set a lead's intake form
// @Description  Create or replace the shipping details captured for a lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body crmapp.IntakeFormInput true "Intake form"
// @Success      200 {object} APIResponse[crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/intake-form [put]
func (h *LeadHandler) SetIntakeForm(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req crmapp.IntakeFormInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.SetIntakeForm(c.Request.Context(), leadID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// ReplaceProducts godoc
// @ID           replaceLeadProducts
// @Summary      Replace a lead's product lines
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body crmapp.ReplaceLeadProductsRequest true "New product lines"
// @Success      200 {object} APIResponse[crmapp.LeadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/products [put]
func (h *LeadHandler) ReplaceProducts(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	var req crmapp.ReplaceLeadProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lead, err := h.leadService.ReplaceLeadProducts(c.Request.Context(), leadID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lead)
}

// ConversionCheck godoc
// @ID           checkLeadConversion
// @Summary      Dry-run conversion validation
// @Description  Evaluate the conversion rules against a lead without converting it
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} APIResponse[crm.ConversionCheck]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/conversion-check [get]
func (h *LeadHandler) ConversionCheck(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	check, err := h.conversionService.ValidateLead(c.Request.Context(), leadID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, check)
}

// Convert godoc
// @ID           convertLead
// @Summary      Convert a lead to an order
// @Description  Atomically validate the lead, allocate the next EM number for its shipping country, resolve the customer by phone, and create the order
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body crmapp.ConvertLeadRequest true "Conversion overrides"
// @Success      201 {object} APIResponse[orderingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leads/{id}/convert [post]
func (h *LeadHandler) Convert(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID format")
		return
	}

	// Overrides are optional; an empty body converts with the lead's own values
	var req crmapp.ConvertLeadRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	order, err := h.conversionService.ConvertLead(c.Request.Context(), leadID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}
