package persistence

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLeadTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&crm.Lead{},
		&crm.LeadProduct{},
		&crm.IntakeForm{},
		&crm.Customer{},
		&identity.Staff{},
	)
	require.NoError(t, err)

	return db
}

func makeTestLead(t *testing.T) *crm.Lead {
	t.Helper()

	lead, err := crm.NewLead("+971501234567", "UAE", "facebook")
	require.NoError(t, err)

	price := decimal.NewFromInt(150)
	first, err := crm.NewLeadProduct(lead.ID, "SKU-001", 2, &price)
	require.NoError(t, err)
	second, err := crm.NewLeadProduct(lead.ID, "SKU-002", 1, nil)
	require.NoError(t, err)
	require.NoError(t, lead.ReplaceProducts([]crm.LeadProduct{*first, *second}))

	form := &crm.IntakeForm{
		BaseEntity:      shared.NewBaseEntity(),
		CustomerName:    "Ahmed Al Mansouri",
		ShippingCountry: "UAE",
		ShippingCity:    "Dubai",
		AddressLine1:    "Street 12, Villa 4",
	}
	require.NoError(t, lead.SetIntakeForm(form))

	return lead
}

func TestGormLeadRepository_SaveAndFindByID(t *testing.T) {
	repo := NewGormLeadRepository(setupLeadTestDB(t))
	ctx := context.Background()

	lead := makeTestLead(t)
	require.NoError(t, repo.Save(ctx, lead))

	found, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "+971501234567", found.PhoneKey)
	assert.Equal(t, crm.LeadStatusNew, found.Status)
	assert.Len(t, found.Products, 2)
	require.NotNil(t, found.IntakeForm)
	assert.Equal(t, "Dubai", found.IntakeForm.ShippingCity)
}

func TestGormLeadRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormLeadRepository(setupLeadTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLeadRepository_Save_ReplacesProductLines(t *testing.T) {
	repo := NewGormLeadRepository(setupLeadTestDB(t))
	ctx := context.Background()

	lead := makeTestLead(t)
	require.NoError(t, repo.Save(ctx, lead))

	price := decimal.NewFromInt(99)
	replacement, err := crm.NewLeadProduct(lead.ID, "SKU-003", 5, &price)
	require.NoError(t, err)
	require.NoError(t, lead.ReplaceProducts([]crm.LeadProduct{*replacement}))
	require.NoError(t, repo.Save(ctx, lead))

	found, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "SKU-003", found.Products[0].ProductCode)
	assert.Equal(t, 5, found.Products[0].Quantity)

	var orphans int64
	require.NoError(t, repo.db.WithContext(ctx).Model(&crm.LeadProduct{}).Count(&orphans).Error)
	assert.Equal(t, int64(1), orphans, "removed product lines must be deleted, not orphaned")
}

func TestGormLeadRepository_Save_UpdatesIntakeFormInPlace(t *testing.T) {
	repo := NewGormLeadRepository(setupLeadTestDB(t))
	ctx := context.Background()

	lead := makeTestLead(t)
	require.NoError(t, repo.Save(ctx, lead))
	formID := lead.IntakeForm.ID

	lead.IntakeForm.ShippingCity = "Sharjah"
	require.NoError(t, repo.Save(ctx, lead))

	found, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, found.IntakeForm)
	assert.Equal(t, formID, found.IntakeForm.ID, "form row identity must survive updates")
	assert.Equal(t, "Sharjah", found.IntakeForm.ShippingCity)
}

func TestGormLeadRepository_SaveWithLock_VersionConflict(t *testing.T) {
	repo := NewGormLeadRepository(setupLeadTestDB(t))
	ctx := context.Background()

	lead := makeTestLead(t)
	require.NoError(t, repo.Save(ctx, lead))

	t.Run("matching version succeeds", func(t *testing.T) {
		require.NoError(t, lead.UpdateDetails("UAE", "facebook", "campaign-7", "ar", "called back", "COD"))
		require.NoError(t, repo.SaveWithLock(ctx, lead))

		found, err := repo.FindByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, "campaign-7", found.AdSource)
		assert.Equal(t, lead.Version, found.Version)
	})

	t.Run("stale version rejected", func(t *testing.T) {
		stale := *lead
		stale.Version = lead.Version + 5

		err := repo.SaveWithLock(ctx, &stale)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)
	})
}

func TestGormLeadRepository_FindAll_StatusFilter(t *testing.T) {
	repo := NewGormLeadRepository(setupLeadTestDB(t))
	ctx := context.Background()

	newLead, err := crm.NewLead("+971501111111", "UAE", "facebook")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, newLead))

	contacted, err := crm.NewLead("+971502222222", "UAE", "tiktok")
	require.NoError(t, err)
	require.NoError(t, contacted.ChangeStatus(crm.LeadStatusContacted))
	require.NoError(t, repo.Save(ctx, contacted))

	filter := shared.DefaultFilter()
	filter.Filters["status"] = string(crm.LeadStatusContacted)

	leads, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, contacted.ID, leads[0].ID)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormLeadRepository_CountByStatus(t *testing.T) {
	repo := NewGormLeadRepository(setupLeadTestDB(t))
	ctx := context.Background()

	for i, phone := range []string{"+971501111111", "+971502222222", "+971503333333"} {
		lead, err := crm.NewLead(phone, "UAE", "facebook")
		require.NoError(t, err)
		if i == 2 {
			require.NoError(t, lead.MarkLost("no answer"))
		}
		require.NoError(t, repo.Save(ctx, lead))
	}

	newCount, err := repo.CountByStatus(ctx, crm.LeadStatusNew)
	require.NoError(t, err)
	assert.Equal(t, int64(2), newCount)

	lostCount, err := repo.CountByStatus(ctx, crm.LeadStatusLost)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lostCount)
}

func TestGormLeadRepository_Delete(t *testing.T) {
	repo := NewGormLeadRepository(setupLeadTestDB(t))
	ctx := context.Background()

	lead := makeTestLead(t)
	require.NoError(t, repo.Save(ctx, lead))
	require.NoError(t, repo.Delete(ctx, lead.ID))

	_, err := repo.FindByID(ctx, lead.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var products int64
	require.NoError(t, repo.db.WithContext(ctx).Model(&crm.LeadProduct{}).Count(&products).Error)
	assert.Equal(t, int64(0), products)
}
