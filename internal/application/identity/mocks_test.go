package identity

import (
	"context"

	auditdomain "github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

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
