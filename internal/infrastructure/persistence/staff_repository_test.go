package persistence

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStaffTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&identity.Staff{})
	require.NoError(t, err)

	return db
}

func seedStaff(t *testing.T, repo *GormStaffRepository, name, email string, role identity.StaffRole, country string) *identity.Staff {
	t.Helper()

	staff, err := identity.NewStaff(name, email, "password123", role, country)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), staff))
	return staff
}

func TestGormStaffRepository_SaveAndFindByID(t *testing.T) {
	repo := NewGormStaffRepository(setupStaffTestDB(t))

	staff := seedStaff(t, repo, "Fatima Hassan", "fatima@example.com", identity.RoleAgent, "UAE")

	found, err := repo.FindByID(context.Background(), staff.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fatima Hassan", found.Name)
	assert.Equal(t, identity.RoleAgent, found.Role)
	assert.True(t, found.Active)
}

func TestGormStaffRepository_FindByEmail(t *testing.T) {
	repo := NewGormStaffRepository(setupStaffTestDB(t))
	ctx := context.Background()

	staff := seedStaff(t, repo, "Omar Khalil", "omar@example.com", identity.RoleAdmin, "KSA")

	t.Run("case insensitive lookup", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "Omar@Example.COM")
		require.NoError(t, err)
		assert.Equal(t, staff.ID, found.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStaffRepository_FindActiveByRole(t *testing.T) {
	repo := NewGormStaffRepository(setupStaffTestDB(t))
	ctx := context.Background()

	first := seedStaff(t, repo, "Agent One", "one@example.com", identity.RoleAgent, "UAE")
	seedStaff(t, repo, "Agent Two", "two@example.com", identity.RoleAgent, "KSA")
	seedStaff(t, repo, "Admin", "admin@example.com", identity.RoleAdmin, "UAE")

	inactive := seedStaff(t, repo, "Gone Agent", "gone@example.com", identity.RoleAgent, "UAE")
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))

	t.Run("all countries", func(t *testing.T) {
		agents, err := repo.FindActiveByRole(ctx, identity.RoleAgent, "")
		require.NoError(t, err)
		assert.Len(t, agents, 2, "inactive and non-agent staff are excluded")
	})

	t.Run("country scoped", func(t *testing.T) {
		agents, err := repo.FindActiveByRole(ctx, identity.RoleAgent, "UAE")
		require.NoError(t, err)
		require.Len(t, agents, 1)
		assert.Equal(t, first.ID, agents[0].ID)
	})
}

func TestGormStaffRepository_FindAll_RoleFilter(t *testing.T) {
	repo := NewGormStaffRepository(setupStaffTestDB(t))
	ctx := context.Background()

	seedStaff(t, repo, "Agent One", "one@example.com", identity.RoleAgent, "UAE")
	seedStaff(t, repo, "Courier", "courier@example.com", identity.RoleDelivery, "UAE")

	filter := shared.DefaultFilter()
	filter.Filters["role"] = string(identity.RoleDelivery)

	staff, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "Courier", staff[0].Name)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormStaffRepository_EmailUnique(t *testing.T) {
	repo := NewGormStaffRepository(setupStaffTestDB(t))

	seedStaff(t, repo, "First", "dup@example.com", identity.RoleAgent, "UAE")

	second, err := identity.NewStaff("Second", "dup@example.com", "password123", identity.RoleAgent, "UAE")
	require.NoError(t, err)
	assert.Error(t, repo.Save(context.Background(), second))
}
