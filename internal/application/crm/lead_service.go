package crm

import (
	"context"

	auditapp "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeadService handles lead intake and lifecycle up to (but not including)
// conversion.
type LeadService struct {
	leadRepo   crm.LeadRepository
	assignment *AssignmentService
	auditor    *auditapp.AuditService
	logger     *zap.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(leadRepo crm.LeadRepository, assignment *AssignmentService, auditor *auditapp.AuditService, logger *zap.Logger) *LeadService {
	return &LeadService{
		leadRepo:   leadRepo,
		assignment: assignment,
		auditor:    auditor,
		logger:     logger,
	}
}

// CreateLead registers an inbound lead. The phone number is normalized to
// E.164 on the way in; when no country is given it is inferred from the
// number's dial code.
func (s *LeadService) CreateLead(ctx context.Context, req CreateLeadRequest, actorID *uuid.UUID) (*LeadResponse, error) {
	phoneKey := valueobject.NormalizePhoneKey(req.Phone, "")

	country := req.Country
	if country == "" {
		country = valueobject.CountryFromPhone(phoneKey)
	}

	lead, err := crm.NewLead(phoneKey, country, req.Source)
	if err != nil {
		return nil, err
	}
	lead.AdSource = req.AdSource
	lead.Language = req.Language
	lead.Notes = req.Notes
	lead.PaymentMethod = req.PaymentMethod

	if len(req.Products) > 0 {
		products, err := buildLeadProducts(lead.ID, req.Products)
		if err != nil {
			return nil, err
		}
		if err := lead.ReplaceProducts(products); err != nil {
			return nil, err
		}
	}
	if req.IntakeForm != nil {
		if err := lead.SetIntakeForm(toIntakeForm(req.IntakeForm)); err != nil {
			return nil, err
		}
	}

	switch {
	case req.AgentID != nil:
		if err := lead.AssignAgent(*req.AgentID); err != nil {
			return nil, err
		}
	case req.AutoAssign:
		agent, err := s.assignment.NextAgent(ctx, country)
		if err != nil {
			return nil, err
		}
		if err := lead.AssignAgent(agent.ID); err != nil {
			return nil, err
		}
	}

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityLead, lead.ID, audit.ActionCreate, actorID, nil, leadSnapshot(lead))

	s.logger.Info("Lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("country", lead.Country),
		zap.String("source", lead.Source),
	)

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// GetLead returns a lead with its products, intake form, agent and customer
func (s *LeadService) GetLead(ctx context.Context, id uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// ListLeads returns leads matching the filter with pagination metadata
func (s *LeadService) ListLeads(ctx context.Context, filter LeadListFilter) (*shared.Paginated[LeadResponse], error) {
	domainFilter := buildLeadFilter(filter)

	leads, err := s.leadRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.leadRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]LeadResponse, len(leads))
	for i := range leads {
		responses[i] = ToLeadResponse(&leads[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateLead applies a partial update to the lead's descriptive fields
func (s *LeadService) UpdateLead(ctx context.Context, id uuid.UUID, req UpdateLeadRequest, actorID *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := leadSnapshot(lead)

	country := orDefault(req.Country, lead.Country)
	source := orDefault(req.Source, lead.Source)
	adSource := orDefault(req.AdSource, lead.AdSource)
	language := orDefault(req.Language, lead.Language)
	notes := orDefault(req.Notes, lead.Notes)
	paymentMethod := orDefault(req.PaymentMethod, lead.PaymentMethod)

	if err := lead.UpdateDetails(country, source, adSource, language, notes, paymentMethod); err != nil {
		return nil, err
	}
	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityLead, lead.ID, audit.ActionUpdate, actorID, before, leadSnapshot(lead))

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// ChangeLeadStatus moves a lead between working statuses
func (s *LeadService) ChangeLeadStatus(ctx context.Context, id uuid.UUID, req ChangeLeadStatusRequest, actorID *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := leadSnapshot(lead)

	if err := lead.ChangeStatus(crm.LeadStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityLead, lead.ID, audit.ActionStatusChange, actorID, before, leadSnapshot(lead))

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// MarkLeadLost closes a lead with a reason
func (s *LeadService) MarkLeadLost(ctx context.Context, id uuid.UUID, req MarkLeadLostRequest, actorID *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := leadSnapshot(lead)

	if err := lead.MarkLost(req.Reason); err != nil {
		return nil, err
	}
	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityLead, lead.ID, audit.ActionStatusChange, actorID, before, leadSnapshot(lead))

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// AssignLead assigns the given agent, or the next agent from the rotation
// when the request carries none.
func (s *LeadService) AssignLead(ctx context.Context, id uuid.UUID, req AssignLeadRequest, actorID *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := leadSnapshot(lead)

	agentID := req.AgentID
	if agentID == nil {
		agent, err := s.assignment.NextAgent(ctx, lead.Country)
		if err != nil {
			return nil, err
		}
		agentID = &agent.ID
	}

	if err := lead.AssignAgent(*agentID); err != nil {
		return nil, err
	}
	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityLead, lead.ID, audit.ActionAssign, actorID, before, leadSnapshot(lead))

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// SetIntakeForm attaches or replaces the lead's intake form
func (s *LeadService) SetIntakeForm(ctx context.Context, id uuid.UUID, req IntakeFormInput, actorID *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := leadSnapshot(lead)

	form := toIntakeForm(&req)
	if lead.IntakeForm != nil {
		// Keep the row identity so the update replaces rather than duplicates
		form.BaseEntity = lead.IntakeForm.BaseEntity
	}
	if err := lead.SetIntakeForm(form); err != nil {
		return nil, err
	}
	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityLead, lead.ID, audit.ActionUpdate, actorID, before, leadSnapshot(lead))

	resp := ToLeadResponse(lead)
	return &resp, nil
}

// ReplaceLeadProducts swaps the lead's product lines
func (s *LeadService) ReplaceLeadProducts(ctx context.Context, id uuid.UUID, req ReplaceLeadProductsRequest, actorID *uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := leadSnapshot(lead)

	products, err := buildLeadProducts(lead.ID, req.Products)
	if err != nil {
		return nil, err
	}
	if err := lead.ReplaceProducts(products); err != nil {
		return nil, err
	}
	if err := s.leadRepo.SaveWithLock(ctx, lead); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityLead, lead.ID, audit.ActionUpdate, actorID, before, leadSnapshot(lead))

	resp := ToLeadResponse(lead)
	return &resp, nil
}

func buildLeadProducts(leadID uuid.UUID, inputs []LeadProductInput) ([]crm.LeadProduct, error) {
	products := make([]crm.LeadProduct, 0, len(inputs))
	for _, input := range inputs {
		product, err := crm.NewLeadProduct(leadID, input.ProductCode, input.Quantity, input.PriceEstimate)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, nil
}

// leadSnapshot captures the audited fields of a lead
func leadSnapshot(lead *crm.Lead) map[string]interface{} {
	return map[string]interface{}{
		"status":            string(lead.Status),
		"country":           lead.Country,
		"source":            lead.Source,
		"notes":             lead.Notes,
		"payment_method":    lead.PaymentMethod,
		"lost_reason":       lead.LostReason,
		"assigned_agent_id": lead.AssignedAgentID,
		"product_count":     len(lead.Products),
	}
}

func orDefault(value *string, fallback string) string {
	if value != nil {
		return *value
	}
	return fallback
}

// buildLeadFilter converts the API filter to a repository filter
func buildLeadFilter(filter LeadListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.Country != "" {
		domainFilter.Filters["country"] = filter.Country
	}
	if filter.Source != "" {
		domainFilter.Filters["source"] = filter.Source
	}
	if filter.AgentID != nil {
		domainFilter.Filters["assigned_agent_id"] = *filter.AgentID
	}
	if filter.FromDate != nil {
		domainFilter.Filters["start_date"] = *filter.FromDate
	}
	if filter.ToDate != nil {
		domainFilter.Filters["end_date"] = *filter.ToDate
	}

	return domainFilter
}
