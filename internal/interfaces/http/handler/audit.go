package handler

import (
	auditapp "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler handles audit trail API endpoints
type AuditHandler struct {
	BaseHandler
	auditService *auditapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *auditapp.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// toSharedFilter converts the HTTP filter into the repository filter
func toSharedFilter(f auditapp.AuditListFilter) shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Filters = map[string]interface{}{}
	if f.EntityType != "" {
		filter.Filters["entity_type"] = f.EntityType
	}
	if f.Action != "" {
		filter.Filters["action"] = f.Action
	}
	if f.ActorID != nil {
		filter.Filters["actor_id"] = *f.ActorID
	}
	return filter
}

// List godoc
// @ID           listAuditEntries
// @Summary      List audit entries
// @Description  Retrieve a paginated list of audit entries, newest first (admin only)
// @Tags         audit
// @Produce      json
// @Param        entity_type query string false "Entity type"
// @Param        action query string false "Action" Enums(CREATE, UPDATE, DELETE, STATUS_CHANGE, ASSIGN, CONVERT_TO_ORDER)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]auditapp.EntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	var httpFilter auditapp.AuditListFilter
	if err := c.ShouldBindQuery(&httpFilter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.auditService.List(c.Request.Context(), toSharedFilter(httpFilter))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListByEntity godoc
// @ID           listAuditEntriesByEntity
// @Summary      List audit entries for an entity
// @Description  Retrieve the audit history of a single entity, newest first
// @Tags         audit
// @Produce      json
// @Param        type path string true "Entity type" Enums(Staff, Customer, Lead, EmSeries, Order)
// @Param        id path string true "Entity ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]auditapp.EntryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit/entity/{type}/{id} [get]
func (h *AuditHandler) ListByEntity(c *gin.Context) {
	entityType := c.Param("type")
	if entityType == "" {
		h.BadRequest(c, "Entity type is required")
		return
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	var httpFilter auditapp.AuditListFilter
	if err := c.ShouldBindQuery(&httpFilter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, err := h.auditService.ListByEntity(c.Request.Context(), entityType, entityID, toSharedFilter(httpFilter))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// ListByActor godoc
// @ID           listAuditEntriesByActor
// @Summary      List audit entries by actor
// @Description  Retrieve the changes a staff member has made, newest first (admin only)
// @Tags         audit
// @Produce      json
// @Param        id path string true "Actor staff ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]auditapp.EntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit/actor/{id} [get]
func (h *AuditHandler) ListByActor(c *gin.Context) {
	actorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid actor ID format")
		return
	}

	var httpFilter auditapp.AuditListFilter
	if err := c.ShouldBindQuery(&httpFilter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, err := h.auditService.ListByActor(c.Request.Context(), actorID, toSharedFilter(httpFilter))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}
