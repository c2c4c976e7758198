package crm

import (
	"context"
	"errors"

	auditapp "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntityCustomer is the entity type audit entries use for customers
const AuditEntityCustomer = "Customer"

// CustomerService handles customer records outside the conversion flow
type CustomerService struct {
	customerRepo crm.CustomerRepository
	auditor      *auditapp.AuditService
	logger       *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo crm.CustomerRepository, auditor *auditapp.AuditService, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		auditor:      auditor,
		logger:       logger,
	}
}

// CreateCustomer creates a customer with a normalized phone key
func (s *CustomerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest, actorID *uuid.UUID) (*CustomerResponse, error) {
	phoneKey := valueobject.NormalizePhoneKey(req.Phone, "")

	existing, err := s.customerRepo.FindByPhoneKey(ctx, phoneKey)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("PHONE_IN_USE", "A customer with this phone number already exists")
	}

	customer, err := crm.NewCustomer(phoneKey, req.Name)
	if err != nil {
		return nil, err
	}
	customer.AltPhone = req.AltPhone
	customer.Country = req.Country
	customer.City = req.City
	customer.AddressLine1 = req.AddressLine1
	customer.AddressLine2 = req.AddressLine2

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityCustomer, customer.ID, audit.ActionCreate, actorID, nil, customerSnapshot(customer))

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetCustomer returns a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetCustomerByPhone returns a customer looked up by any phone format; the
// number is normalized before the lookup.
func (s *CustomerService) GetCustomerByPhone(ctx context.Context, phone string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByPhoneKey(ctx, valueobject.NormalizePhoneKey(phone, ""))
	if err != nil {
		return nil, err
	}

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// ListCustomers returns customers matching the filter with pagination
func (s *CustomerService) ListCustomers(ctx context.Context, filter CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
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
	if filter.Country != "" {
		domainFilter.Filters["country"] = filter.Country
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateCustomer applies a partial profile update. A changed phone number is
// renormalized and checked for collisions with other customers.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest, actorID *uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := customerSnapshot(customer)

	if req.Phone != nil {
		phoneKey := valueobject.NormalizePhoneKey(*req.Phone, "")
		if phoneKey != customer.PhoneKey {
			existing, err := s.customerRepo.FindByPhoneKey(ctx, phoneKey)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			if existing != nil {
				return nil, shared.NewDomainError("PHONE_IN_USE", "A customer with this phone number already exists")
			}
			if err := customer.ChangePhone(phoneKey); err != nil {
				return nil, err
			}
		}
	}

	customer.UpdateProfile(
		orDefault(req.Name, customer.Name),
		orDefault(req.AltPhone, customer.AltPhone),
		orDefault(req.Country, customer.Country),
		orDefault(req.City, customer.City),
		orDefault(req.AddressLine1, customer.AddressLine1),
		orDefault(req.AddressLine2, customer.AddressLine2),
	)

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityCustomer, customer.ID, audit.ActionUpdate, actorID, before, customerSnapshot(customer))

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// customerSnapshot captures the audited fields of a customer
func customerSnapshot(customer *crm.Customer) map[string]interface{} {
	return map[string]interface{}{
		"phone_key": customer.PhoneKey,
		"name":      customer.Name,
		"country":   customer.Country,
		"city":      customer.City,
	}
}
