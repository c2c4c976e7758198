package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadRepository defines the interface for lead persistence
type LeadRepository interface {
	// FindByID loads a lead with its products, intake form, assigned agent
	// and linked customer preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)

	// FindAll finds leads with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Lead, error)

	// Save creates or updates a lead together with its product lines and
	// intake form
	Save(ctx context.Context, lead *Lead) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, lead *Lead) error

	// Delete deletes a lead
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts leads matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts leads in a given status
	CountByStatus(ctx context.Context, status LeadStatus) (int64, error)
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByPhoneKey finds a customer by normalized phone key
	FindByPhoneKey(ctx context.Context, phoneKey string) (*Customer, error)

	// FindAll finds customers with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// AssignmentStateRepository defines the interface for the round-robin
// rotation rows. FindOrCreateLocked must hold a row lock on the returned
// state until the surrounding transaction ends.
type AssignmentStateRepository interface {
	// FindOrCreateLocked loads the rotation row for a scope under a row
	// lock, creating it first if the scope has never been assigned
	FindOrCreateLocked(ctx context.Context, scope string) (*AssignmentState, error)

	// Save persists the advanced rotation state
	Save(ctx context.Context, state *AssignmentState) error
}
