package persistence

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&ordering.Order{},
		&ordering.OrderItem{},
		&crm.Customer{},
		&crm.Lead{},
		&crm.LeadProduct{},
		&crm.IntakeForm{},
		&identity.Staff{},
	)
	require.NoError(t, err)

	return db
}

func makeTestOrder(t *testing.T, db *gorm.DB, emNumber string) *ordering.Order {
	t.Helper()

	// Unique phone per order so the customers.phone_key index stays happy
	customer, err := crm.NewCustomer("+9715"+uuid.NewString()[:8], "Ahmed")
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(context.Background(), customer))

	order, err := ordering.NewOrder(emNumber, "UAE", customer.ID)
	require.NoError(t, err)

	price := decimal.NewFromInt(250)
	item, err := ordering.NewOrderItem(order.ID, "SKU-001", 2, &price)
	require.NoError(t, err)
	order.AddItem(item)
	order.SetValue(decimal.NewFromInt(500))

	return order
}

func TestGormOrderRepository_SaveAndFindByID(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := makeTestOrder(t, db, "EM-UAE-000001")
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "EM-UAE-000001", found.EmNumber)
	assert.Equal(t, ordering.OrderStatusOngoing, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "SKU-001", found.Items[0].ProductCode)
	require.NotNil(t, found.Value)
	assert.True(t, found.Value.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, found.Customer)
	assert.Equal(t, "Ahmed", found.Customer.Name)
}

func TestGormOrderRepository_FindByEmNumber(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := makeTestOrder(t, db, "EM-UAE-000042")
	require.NoError(t, repo.Save(ctx, order))

	t.Run("finds existing number", func(t *testing.T) {
		found, err := repo.FindByEmNumber(ctx, "EM-UAE-000042")
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("unknown number", func(t *testing.T) {
		_, err := repo.FindByEmNumber(ctx, "EM-UAE-999999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("empty number rejected", func(t *testing.T) {
		_, err := repo.FindByEmNumber(ctx, "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_EM_NUMBER", domainErr.Code)
	})
}

func TestGormOrderRepository_FindBySourceLead(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	lead, err := crm.NewLead("+971501234567", "UAE", "facebook")
	require.NoError(t, err)
	require.NoError(t, NewGormLeadRepository(db).Save(ctx, lead))

	order := makeTestOrder(t, db, "EM-UAE-000007")
	order.SourceLeadID = &lead.ID
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindBySourceLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindBySourceLead(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_EmNumberUnique(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	first := makeTestOrder(t, db, "EM-UAE-000099")
	require.NoError(t, repo.Save(ctx, first))

	customer, err := crm.NewCustomer("+966501234567", "Other")
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(ctx, customer))

	duplicate, err := ordering.NewOrder("EM-UAE-000099", "UAE", customer.ID)
	require.NoError(t, err)
	assert.Error(t, repo.Save(ctx, duplicate), "duplicate order numbers must violate the unique index")
}

func TestGormOrderRepository_SaveWithLock_VersionConflict(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	order := makeTestOrder(t, db, "EM-UAE-000010")
	require.NoError(t, repo.Save(ctx, order))

	t.Run("matching version succeeds", func(t *testing.T) {
		require.NoError(t, order.MarkDelivered())
		require.NoError(t, repo.SaveWithLock(ctx, order))

		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, ordering.OrderStatusDelivered, found.Status)
	})

	t.Run("stale version rejected", func(t *testing.T) {
		stale := *order
		stale.Version = order.Version + 3

		err := repo.SaveWithLock(ctx, &stale)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)
	})
}

func TestGormOrderRepository_FindAll_StatusFilter(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	ongoing := makeTestOrder(t, db, "EM-UAE-000001")
	require.NoError(t, repo.Save(ctx, ongoing))

	cancelled := makeTestOrder(t, db, "EM-UAE-000002")
	require.NoError(t, cancelled.Cancel("customer changed their mind"))
	require.NoError(t, repo.Save(ctx, cancelled))

	filter := shared.DefaultFilter()
	filter.Filters["status"] = string(ordering.OrderStatusCancelled)

	orders, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, cancelled.ID, orders[0].ID)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormOrderRepository_CountByStatus(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	for i, em := range []string{"EM-UAE-000001", "EM-UAE-000002", "EM-UAE-000003"} {
		order := makeTestOrder(t, db, em)
		if i == 0 {
			require.NoError(t, order.MarkDelivered())
		}
		require.NoError(t, repo.Save(ctx, order))
	}

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[ordering.OrderStatusDelivered])
	assert.Equal(t, int64(2), counts[ordering.OrderStatusOngoing])
}
