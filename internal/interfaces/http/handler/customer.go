package handler

import (
	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerHandler handles customer API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *crmapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *crmapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create godoc
// @ID           createCustomer
// @Summary      Create a customer
// @Description  Create a customer keyed by normalized phone number
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body crmapp.CreateCustomerRequest true "Customer creation request"
// @Success      201 {object} APIResponse[crmapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req crmapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, customer)
}

// GetByID godoc
// @ID           getCustomerById
// @Summary      Get customer by ID
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[crmapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, customer)
}

// GetByPhone godoc
// @ID           getCustomerByPhone
// @Summary      Get customer by phone
// @Description  Look up a customer by phone number; the lookup normalizes the phone the same way creation does
// @Tags         customers
// @Produce      json
// @Param        phone query string true "Phone number"
// @Success      200 {object} APIResponse[crmapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/by-phone [get]
func (h *CustomerHandler) GetByPhone(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		h.BadRequest(c, "phone query parameter is required")
		return
	}

	customer, err := h.customerService.GetCustomerByPhone(c.Request.Context(), phone)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, customer)
}

// List godoc
// @ID           listCustomers
// @Summary      List customers
// @Description  Retrieve a paginated list of customers with optional filtering
// @Tags         customers
// @Produce      json
// @Param        search query string false "Search term (phone, name)"
// @Param        country query string false "Country"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]crmapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var filter crmapp.CustomerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.customerService.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateCustomer
// @Summary      Update a customer
// @Description  Update a customer's profile; nil fields are left unchanged
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body crmapp.UpdateCustomerRequest true "Customer update request"
// @Success      200 {object} APIResponse[crmapp.CustomerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var req crmapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), customerID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, customer)
}
