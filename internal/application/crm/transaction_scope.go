package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/ordering"
)

// TransactionScope provides transactional access to the repositories the
// conversion and assignment flows touch. All repositories handed to the
// callback share one database transaction; an error from the callback rolls
// everything back.
type TransactionScope interface {
	// Execute runs the function inside a transaction at the default
	// isolation level.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error

	// ExecuteSerializable runs the function inside a SERIALIZABLE
	// transaction. The conversion flow uses this level so the customer
	// lookup, the number allocation and the lead flip commit as one unit
	// or not at all.
	ExecuteSerializable(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the per-transaction repositories.
type TransactionalRepositories interface {
	// LeadRepo returns the lead repository scoped to the transaction
	LeadRepo() crm.LeadRepository
	// CustomerRepo returns the customer repository scoped to the transaction
	CustomerRepo() crm.CustomerRepository
	// OrderRepo returns the order repository scoped to the transaction
	OrderRepo() ordering.OrderRepository
	// SeriesRepo returns the numbering series repository scoped to the transaction
	SeriesRepo() ordering.EmSeriesRepository
	// AssignmentRepo returns the assignment-state repository scoped to the transaction
	AssignmentRepo() crm.AssignmentStateRepository
	// StaffRepo returns the staff repository scoped to the transaction
	StaffRepo() identity.StaffRepository
}
