package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StaffRepository defines the interface for staff persistence
type StaffRepository interface {
	// FindByID finds a staff member by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Staff, error)

	// FindByEmail finds a staff member by login email
	FindByEmail(ctx context.Context, email string) (*Staff, error)

	// FindAll finds staff with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Staff, error)

	// FindActiveByRole lists active staff holding a role, optionally
	// narrowed to a country ("" matches all). Results are ordered by
	// creation time so round-robin rotation is deterministic.
	FindActiveByRole(ctx context.Context, role StaffRole, country string) ([]Staff, error)

	// Save creates or updates a staff member
	Save(ctx context.Context, staff *Staff) error

	// Count counts staff matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
