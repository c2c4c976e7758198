package ordering

import (
	"context"

	auditdomain "github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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
