package identity

import (
	"context"
	"testing"

	auditapp "github.com/crm/backend/internal/application/audit"
	auditdomain "github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staffServiceFixture struct {
	staffRepo *MockStaffRepository
	auditRepo *MockAuditEntryRepository
	service   *StaffService
}

func newStaffServiceFixture() *staffServiceFixture {
	staffRepo := new(MockStaffRepository)
	auditRepo := new(MockAuditEntryRepository)
	auditor := auditapp.NewAuditService(auditRepo, zap.NewNop())

	return &staffServiceFixture{
		staffRepo: staffRepo,
		auditRepo: auditRepo,
		service:   NewStaffService(staffRepo, auditor, zap.NewNop()),
	}
}

func makeStaffMember(t *testing.T, role identity.StaffRole) *identity.Staff {
	t.Helper()
	staff, err := identity.NewStaff("Fatima Hassan", "fatima@example.com", "password123", role, "UAE")
	require.NoError(t, err)
	return staff
}

func TestCreateStaff_Success(t *testing.T) {
	f := newStaffServiceFixture()
	actorID := uuid.New()

	f.staffRepo.On("FindByEmail", mock.Anything, "new.agent@example.com").Return(nil, shared.ErrNotFound)
	f.staffRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Staff")).Return(nil)
	f.auditRepo.On("Save", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil)

	resp, err := f.service.CreateStaff(context.Background(), CreateStaffRequest{
		Name:     "New Agent",
		Email:    "new.agent@example.com",
		Password: "password123",
		Role:     "AGENT",
		Country:  "UAE",
	}, identity.RoleAdmin, &actorID)

	require.NoError(t, err)
	assert.Equal(t, "New Agent", resp.Name)
	assert.Equal(t, "new.agent@example.com", resp.Email)
	assert.Equal(t, "AGENT", resp.Role)
	assert.Equal(t, "UAE", resp.Country)
	assert.True(t, resp.Active)
	f.staffRepo.AssertExpectations(t)
	f.auditRepo.AssertCalled(t, "Save", mock.Anything, mock.AnythingOfType("*audit.Entry"))
}

func TestCreateStaff_NonAdminForbidden(t *testing.T) {
	f := newStaffServiceFixture()
	actorID := uuid.New()

	for _, role := range []identity.StaffRole{identity.RoleAgent, identity.RoleDelivery, identity.RoleViewer} {
		_, err := f.service.CreateStaff(context.Background(), CreateStaffRequest{
			Name:     "New Agent",
			Email:    "new.agent@example.com",
			Password: "password123",
			Role:     "AGENT",
		}, role, &actorID)

		assert.ErrorIs(t, err, shared.ErrForbidden, "role %s must not manage staff", role)
	}
	f.staffRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateStaff_DuplicateEmailRejected(t *testing.T) {
	f := newStaffServiceFixture()
	actorID := uuid.New()
	existing := makeStaffMember(t, identity.RoleAgent)

	f.staffRepo.On("FindByEmail", mock.Anything, "fatima@example.com").Return(existing, nil)

	_, err := f.service.CreateStaff(context.Background(), CreateStaffRequest{
		Name:     "Another Fatima",
		Email:    "fatima@example.com",
		Password: "password123",
		Role:     "AGENT",
	}, identity.RoleAdmin, &actorID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMAIL_IN_USE", domainErr.Code)
	f.staffRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateStaff_PartialMerge(t *testing.T) {
	f := newStaffServiceFixture()
	actorID := uuid.New()
	staff := makeStaffMember(t, identity.RoleAgent)

	f.staffRepo.On("FindByID", mock.Anything, staff.ID).Return(staff, nil)
	f.staffRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Staff")).Return(nil)
	f.auditRepo.On("Save", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil)

	newCountry := "KSA"
	resp, err := f.service.UpdateStaff(context.Background(), staff.ID, UpdateStaffRequest{
		Country: &newCountry,
	}, identity.RoleAdmin, &actorID)

	require.NoError(t, err)
	assert.Equal(t, "KSA", resp.Country)
	assert.Equal(t, "Fatima Hassan", resp.Name, "unset fields keep their values")
	assert.Equal(t, "AGENT", resp.Role)
}

func TestUpdateStaff_ActiveToggle(t *testing.T) {
	f := newStaffServiceFixture()
	actorID := uuid.New()
	staff := makeStaffMember(t, identity.RoleAgent)

	f.staffRepo.On("FindByID", mock.Anything, staff.ID).Return(staff, nil)
	f.staffRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Staff")).Return(nil)
	f.auditRepo.On("Save", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil)

	inactive := false
	resp, err := f.service.UpdateStaff(context.Background(), staff.ID, UpdateStaffRequest{
		Active: &inactive,
	}, identity.RoleAdmin, &actorID)

	require.NoError(t, err)
	assert.False(t, resp.Active)

	active := true
	resp, err = f.service.UpdateStaff(context.Background(), staff.ID, UpdateStaffRequest{
		Active: &active,
	}, identity.RoleAdmin, &actorID)

	require.NoError(t, err)
	assert.True(t, resp.Active)
}

func TestUpdateStaff_NonAdminForbidden(t *testing.T) {
	f := newStaffServiceFixture()
	actorID := uuid.New()
	staff := makeStaffMember(t, identity.RoleAgent)

	newName := "Renamed"
	_, err := f.service.UpdateStaff(context.Background(), staff.ID, UpdateStaffRequest{
		Name: &newName,
	}, identity.RoleAgent, &actorID)

	assert.ErrorIs(t, err, shared.ErrForbidden)
	f.staffRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestDeactivateStaff(t *testing.T) {
	f := newStaffServiceFixture()
	actorID := uuid.New()
	staff := makeStaffMember(t, identity.RoleAgent)

	f.staffRepo.On("FindByID", mock.Anything, staff.ID).Return(staff, nil)
	f.staffRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Staff")).Return(nil)

	var entry *auditdomain.Entry
	f.auditRepo.On("Save", mock.Anything, mock.AnythingOfType("*audit.Entry")).
		Run(func(args mock.Arguments) {
			entry = args.Get(1).(*auditdomain.Entry)
		}).
		Return(nil)

	resp, err := f.service.DeactivateStaff(context.Background(), staff.ID, identity.RoleAdmin, &actorID)

	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.False(t, staff.Active)

	require.NotNil(t, entry)
	assert.Equal(t, AuditEntityStaff, entry.EntityType)
	assert.Equal(t, staff.ID, entry.EntityID)
}

func TestGetStaff_NotFound(t *testing.T) {
	f := newStaffServiceFixture()
	id := uuid.New()

	f.staffRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.GetStaff(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListStaff_FilterPassThrough(t *testing.T) {
	f := newStaffServiceFixture()
	staff := makeStaffMember(t, identity.RoleAgent)

	var captured shared.Filter
	f.staffRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(shared.Filter)
		}).
		Return([]identity.Staff{*staff}, nil)
	f.staffRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	active := true
	result, err := f.service.ListStaff(context.Background(), StaffListFilter{
		Role:    "AGENT",
		Country: "UAE",
		Active:  &active,
		Page:    2,
	})

	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, "AGENT", captured.Filters["role"])
	assert.Equal(t, "UAE", captured.Filters["country"])
	assert.Equal(t, true, captured.Filters["active"])
}
