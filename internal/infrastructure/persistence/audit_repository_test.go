package persistence

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&audit.Entry{})
	require.NoError(t, err)

	return db
}

func TestGormAuditEntryRepository_SaveAndFindByEntity(t *testing.T) {
	repo := NewGormAuditEntryRepository(setupAuditTestDB(t))
	ctx := context.Background()

	leadID := uuid.New()
	actorID := uuid.New()

	created := audit.NewEntry("Lead", leadID, audit.ActionCreate, &actorID, nil, map[string]string{"status": "NEW"})
	converted := audit.NewEntry("Lead", leadID, audit.ActionConvertToOrder, &actorID,
		map[string]string{"status": "NEW"}, map[string]string{"status": "WON"})
	unrelated := audit.NewEntry("Lead", uuid.New(), audit.ActionCreate, &actorID, nil, nil)

	for _, entry := range []*audit.Entry{created, converted, unrelated} {
		require.NoError(t, repo.Save(ctx, entry))
	}

	entries, err := repo.FindByEntity(ctx, "Lead", leadID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Equal(t, leadID, entry.EntityID)
	}
}

func TestGormAuditEntryRepository_FindByActor(t *testing.T) {
	repo := NewGormAuditEntryRepository(setupAuditTestDB(t))
	ctx := context.Background()

	actorID := uuid.New()
	otherActor := uuid.New()

	require.NoError(t, repo.Save(ctx, audit.NewEntry("Order", uuid.New(), audit.ActionCreate, &actorID, nil, nil)))
	require.NoError(t, repo.Save(ctx, audit.NewEntry("Order", uuid.New(), audit.ActionUpdate, &otherActor, nil, nil)))

	entries, err := repo.FindByActor(ctx, actorID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionCreate, entries[0].Action)
}

func TestGormAuditEntryRepository_FindAll_ActionFilter(t *testing.T) {
	repo := NewGormAuditEntryRepository(setupAuditTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, audit.NewEntry("Lead", uuid.New(), audit.ActionCreate, nil, nil, nil)))
	require.NoError(t, repo.Save(ctx, audit.NewEntry("Lead", uuid.New(), audit.ActionStatusChange, nil, nil, nil)))
	require.NoError(t, repo.Save(ctx, audit.NewEntry("Order", uuid.New(), audit.ActionCreate, nil, nil, nil)))

	filter := shared.DefaultFilter()
	filter.Filters["action"] = string(audit.ActionCreate)

	entries, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormAuditEntryRepository_SnapshotsRoundTrip(t *testing.T) {
	repo := NewGormAuditEntryRepository(setupAuditTestDB(t))
	ctx := context.Background()

	entityID := uuid.New()
	entry := audit.NewEntry("Customer", entityID, audit.ActionUpdate, nil,
		map[string]string{"city": "Dubai"}, map[string]string{"city": "Sharjah"})
	require.NoError(t, repo.Save(ctx, entry))

	entries, err := repo.FindByEntity(ctx, "Customer", entityID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.JSONEq(t, `{"city":"Dubai"}`, string(entries[0].Before))
	assert.JSONEq(t, `{"city":"Sharjah"}`, string(entries[0].After))
}
