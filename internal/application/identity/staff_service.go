package identity

import (
	"context"
	"errors"

	auditapp "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntityStaff is the entity type audit entries use for staff
const AuditEntityStaff = "Staff"

// StaffService manages staff accounts. Mutations are admin-only; the role
// check happens here so every transport enforces the same rule.
type StaffService struct {
	staffRepo identity.StaffRepository
	auditor   *auditapp.AuditService
	logger    *zap.Logger
}

// NewStaffService creates a new staff management service
func NewStaffService(staffRepo identity.StaffRepository, auditor *auditapp.AuditService, logger *zap.Logger) *StaffService {
	return &StaffService{
		staffRepo: staffRepo,
		auditor:   auditor,
		logger:    logger,
	}
}

// CreateStaff creates a staff account. Only admins may create staff.
func (s *StaffService) CreateStaff(ctx context.Context, req CreateStaffRequest, actorRole identity.StaffRole, actorID *uuid.UUID) (*StaffResponse, error) {
	if !actorRole.CanManageStaff() {
		return nil, shared.ErrForbidden
	}

	existing, err := s.staffRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("EMAIL_IN_USE", "A staff member with this email already exists")
	}

	staff, err := identity.NewStaff(req.Name, req.Email, req.Password, identity.StaffRole(req.Role), req.Country)
	if err != nil {
		return nil, err
	}

	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityStaff, staff.ID, audit.ActionCreate, actorID, nil, staffSnapshot(staff))

	s.logger.Info("Staff member created",
		zap.String("staff_id", staff.ID.String()),
		zap.String("role", string(staff.Role)),
	)

	resp := ToStaffResponse(staff)
	return &resp, nil
}

// GetStaff returns a staff member by ID
func (s *StaffService) GetStaff(ctx context.Context, id uuid.UUID) (*StaffResponse, error) {
	staff, err := s.staffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToStaffResponse(staff)
	return &resp, nil
}

// ListStaff returns staff matching the filter with pagination metadata
func (s *StaffService) ListStaff(ctx context.Context, filter StaffListFilter) (*shared.Paginated[StaffResponse], error) {
	domainFilter := buildStaffFilter(filter)

	staff, err := s.staffRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.staffRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]StaffResponse, len(staff))
	for i := range staff {
		responses[i] = ToStaffResponse(&staff[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateStaff applies a partial update to a staff account. Only admins may
// update staff.
func (s *StaffService) UpdateStaff(ctx context.Context, id uuid.UUID, req UpdateStaffRequest, actorRole identity.StaffRole, actorID *uuid.UUID) (*StaffResponse, error) {
	if !actorRole.CanManageStaff() {
		return nil, shared.ErrForbidden
	}

	staff, err := s.staffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := staffSnapshot(staff)

	name := staff.Name
	if req.Name != nil {
		name = *req.Name
	}
	country := staff.Country
	if req.Country != nil {
		country = *req.Country
	}
	role := staff.Role
	if req.Role != nil {
		role = identity.StaffRole(*req.Role)
	}
	if err := staff.UpdateProfile(name, country, role); err != nil {
		return nil, err
	}

	if req.Active != nil {
		if *req.Active {
			staff.Activate()
		} else {
			staff.Deactivate()
		}
	}

	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityStaff, staff.ID, audit.ActionUpdate, actorID, before, staffSnapshot(staff))

	resp := ToStaffResponse(staff)
	return &resp, nil
}

// DeactivateStaff disables an account. Deactivated staff cannot log in and
// are skipped by lead assignment. Only admins may deactivate staff.
func (s *StaffService) DeactivateStaff(ctx context.Context, id uuid.UUID, actorRole identity.StaffRole, actorID *uuid.UUID) (*StaffResponse, error) {
	if !actorRole.CanManageStaff() {
		return nil, shared.ErrForbidden
	}

	staff, err := s.staffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := staffSnapshot(staff)

	staff.Deactivate()
	if err := s.staffRepo.Save(ctx, staff); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityStaff, staff.ID, audit.ActionUpdate, actorID, before, staffSnapshot(staff))

	resp := ToStaffResponse(staff)
	return &resp, nil
}

// staffSnapshot captures the audited fields of a staff member
func staffSnapshot(staff *identity.Staff) map[string]interface{} {
	return map[string]interface{}{
		"name":    staff.Name,
		"email":   staff.Email,
		"role":    string(staff.Role),
		"country": staff.Country,
		"active":  staff.Active,
	}
}

// buildStaffFilter converts the API filter to a repository filter
func buildStaffFilter(filter StaffListFilter) shared.Filter {
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

	if filter.Role != "" {
		domainFilter.Filters["role"] = filter.Role
	}
	if filter.Country != "" {
		domainFilter.Filters["country"] = filter.Country
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	return domainFilter
}
