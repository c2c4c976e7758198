package crm

import (
	"context"

	auditdomain "github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockLeadRepository is a mock implementation of crm.LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) SaveWithLock(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context, status crm.LeadStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

// MockCustomerRepository is a mock implementation of crm.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByPhoneKey(ctx context.Context, phoneKey string) (*crm.Customer, error) {
	args := m.Called(ctx, phoneKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *crm.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of ordering.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByEmNumber(ctx context.Context, emNumber string) (*ordering.Order, error) {
	args := m.Called(ctx, emNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindBySourceLead(ctx context.Context, leadID uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) (map[ordering.OrderStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[ordering.OrderStatus]int64), args.Error(1)
}

// MockEmSeriesRepository is a mock implementation of ordering.EmSeriesRepository
type MockEmSeriesRepository struct {
	mock.Mock
}

func (m *MockEmSeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.EmSeries, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.EmSeries), args.Error(1)
}

func (m *MockEmSeriesRepository) FindByCountry(ctx context.Context, country string) (*ordering.EmSeries, error) {
	args := m.Called(ctx, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.EmSeries), args.Error(1)
}

func (m *MockEmSeriesRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.EmSeries, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.EmSeries), args.Error(1)
}

func (m *MockEmSeriesRepository) Save(ctx context.Context, series *ordering.EmSeries) error {
	args := m.Called(ctx, series)
	return args.Error(0)
}

func (m *MockEmSeriesRepository) AllocateNumber(ctx context.Context, country string) (string, error) {
	args := m.Called(ctx, country)
	return args.String(0), args.Error(1)
}

// MockAssignmentStateRepository is a mock implementation of crm.AssignmentStateRepository
type MockAssignmentStateRepository struct {
	mock.Mock
}

func (m *MockAssignmentStateRepository) FindOrCreateLocked(ctx context.Context, scope string) (*crm.AssignmentState, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.AssignmentState), args.Error(1)
}

func (m *MockAssignmentStateRepository) Save(ctx context.Context, state *crm.AssignmentState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// MockStaffRepository is a mock implementation of identity.StaffRepository
type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Staff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Staff), args.Error(1)
}

func (m *MockStaffRepository) FindByEmail(ctx context.Context, email string) (*identity.Staff, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Staff), args.Error(1)
}

func (m *MockStaffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Staff, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Staff), args.Error(1)
}

func (m *MockStaffRepository) FindActiveByRole(ctx context.Context, role identity.StaffRole, country string) ([]identity.Staff, error) {
	args := m.Called(ctx, role, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Staff), args.Error(1)
}

func (m *MockStaffRepository) Save(ctx context.Context, staff *identity.Staff) error {
	args := m.Called(ctx, staff)
	return args.Error(0)
}

func (m *MockStaffRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditEntryRepository is a mock implementation of audit.EntryRepository
type MockAuditEntryRepository struct {
	mock.Mock
}

func (m *MockAuditEntryRepository) Save(ctx context.Context, entry *auditdomain.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditEntryRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]auditdomain.Entry, error) {
	args := m.Called(ctx, entityType, entityID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditdomain.Entry), args.Error(1)
}

func (m *MockAuditEntryRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]auditdomain.Entry, error) {
	args := m.Called(ctx, actorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditdomain.Entry), args.Error(1)
}

func (m *MockAuditEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]auditdomain.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auditdomain.Entry), args.Error(1)
}

func (m *MockAuditEntryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// NoOpTransactionScope runs the callback without a real transaction, for
// tests where the repositories are mocks and atomicity is not under test.
type NoOpTransactionScope struct {
	leadRepo       crm.LeadRepository
	customerRepo   crm.CustomerRepository
	orderRepo      ordering.OrderRepository
	seriesRepo     ordering.EmSeriesRepository
	assignmentRepo crm.AssignmentStateRepository
	staffRepo      identity.StaffRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repositories.
func NewNoOpTransactionScope(
	leadRepo crm.LeadRepository,
	customerRepo crm.CustomerRepository,
	orderRepo ordering.OrderRepository,
	seriesRepo ordering.EmSeriesRepository,
	assignmentRepo crm.AssignmentStateRepository,
	staffRepo identity.StaffRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		leadRepo:       leadRepo,
		customerRepo:   customerRepo,
		orderRepo:      orderRepo,
		seriesRepo:     seriesRepo,
		assignmentRepo: assignmentRepo,
		staffRepo:      staffRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ExecuteSerializable runs the function without a real transaction
func (s *NoOpTransactionScope) ExecuteSerializable(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) LeadRepo() crm.LeadRepository            { return s.leadRepo }
func (s *NoOpTransactionScope) CustomerRepo() crm.CustomerRepository    { return s.customerRepo }
func (s *NoOpTransactionScope) OrderRepo() ordering.OrderRepository     { return s.orderRepo }
func (s *NoOpTransactionScope) SeriesRepo() ordering.EmSeriesRepository { return s.seriesRepo }
func (s *NoOpTransactionScope) AssignmentRepo() crm.AssignmentStateRepository {
	return s.assignmentRepo
}
func (s *NoOpTransactionScope) StaffRepo() identity.StaffRepository { return s.staffRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
