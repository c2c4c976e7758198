package persistence

import (
	"context"
	"database/sql"
	"errors"

	appcrm "github.com/crm/backend/internal/application/crm"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error codes that mean the transaction lost a race and can be
// retried by the caller.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every repository handed to the callback runs on the same *gorm.DB
// transaction handle.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction at the
// default isolation level. If the function returns an error, the
// transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcrm.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	return mapTransientError(err)
}

// ExecuteSerializable runs the given function within a SERIALIZABLE
// transaction. Serialization failures surface as a TRANSIENT_STORAGE
// domain error so the transport layer can ask the client to retry.
func (s *GormTransactionScope) ExecuteSerializable(ctx context.Context, fn func(repos appcrm.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	return mapTransientError(err)
}

// mapTransientError converts retryable Postgres failures into the shared
// transient-storage error. Other errors pass through unchanged.
func mapTransientError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return shared.ErrTransientStorage
		}
	}
	return err
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// LeadRepo returns the lead repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LeadRepo() crm.LeadRepository {
	return NewGormLeadRepository(r.tx)
}

// CustomerRepo returns the customer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CustomerRepo() crm.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() ordering.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// SeriesRepo returns the numbering series repository scoped to the current transaction.
func (r *gormTransactionalRepositories) SeriesRepo() ordering.EmSeriesRepository {
	return NewGormEmSeriesRepository(r.tx)
}

// AssignmentRepo returns the assignment-state repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AssignmentRepo() crm.AssignmentStateRepository {
	return NewGormAssignmentStateRepository(r.tx)
}

// StaffRepo returns the staff repository scoped to the current transaction.
func (r *gormTransactionalRepositories) StaffRepo() identity.StaffRepository {
	return NewGormStaffRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appcrm.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appcrm.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
