package persistence

import (
	"context"
	"fmt"
	"testing"

	appcrm "github.com/crm/backend/internal/application/crm"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMapTransientError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil passes through", nil, false},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock detected", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"wrapped serialization failure", fmt.Errorf("save lead: %w", &pgconn.PgError{Code: "40001"}), true},
		{"unique violation passes through", &pgconn.PgError{Code: "23505"}, false},
		{"plain error passes through", assert.AnError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mapTransientError(tt.err)
			if tt.transient {
				assert.ErrorIs(t, result, shared.ErrTransientStorage)
			} else {
				assert.Equal(t, tt.err, result)
			}
		})
	}
}

func TestGormTransactionScope_Execute(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&crm.Customer{}))

	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		customer, err := crm.NewCustomer("+971501234567", "Committed")
		require.NoError(t, err)

		err = scope.Execute(ctx, func(repos appcrm.TransactionalRepositories) error {
			return repos.CustomerRepo().Save(ctx, customer)
		})
		require.NoError(t, err)

		found, err := NewGormCustomerRepository(db).FindByPhoneKey(ctx, "+971501234567")
		require.NoError(t, err)
		assert.Equal(t, "Committed", found.Name)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		customer, err := crm.NewCustomer("+971509999999", "Rolled Back")
		require.NoError(t, err)

		err = scope.Execute(ctx, func(repos appcrm.TransactionalRepositories) error {
			if err := repos.CustomerRepo().Save(ctx, customer); err != nil {
				return err
			}
			return assert.AnError
		})
		require.Error(t, err)

		_, err = NewGormCustomerRepository(db).FindByPhoneKey(ctx, "+971509999999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTransactionalRepositories_ProvidesAllRepos(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	repos := &gormTransactionalRepositories{tx: db}

	var _ crm.LeadRepository = repos.LeadRepo()
	var _ crm.CustomerRepository = repos.CustomerRepo()
	var _ ordering.OrderRepository = repos.OrderRepo()
	var _ ordering.EmSeriesRepository = repos.SeriesRepo()
	var _ crm.AssignmentStateRepository = repos.AssignmentRepo()
	var _ identity.StaffRepository = repos.StaffRepo()

	assert.NotNil(t, repos.LeadRepo())
}
