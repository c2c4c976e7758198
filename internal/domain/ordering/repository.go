package ordering

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID loads an order with its items, customer, staff and source
	// lead preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByEmNumber finds an order by its EM number
	FindByEmNumber(ctx context.Context, emNumber string) (*Order, error)

	// FindBySourceLead finds the order created from a lead, if any
	FindBySourceLead(ctx context.Context, leadID uuid.UUID) (*Order, error)

	// FindAll finds orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders per status
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
}

// EmSeriesRepository defines the interface for the numbering series.
// AllocateNumber is only meaningful inside a transaction; the row lock it
// takes must live until that transaction commits or rolls back.
type EmSeriesRepository interface {
	// FindByID finds a series by ID
	FindByID(ctx context.Context, id uuid.UUID) (*EmSeries, error)

	// FindByCountry finds a series by country
	FindByCountry(ctx context.Context, country string) (*EmSeries, error)

	// FindAll lists all series
	FindAll(ctx context.Context, filter shared.Filter) ([]EmSeries, error)

	// Save creates or updates a series
	Save(ctx context.Context, series *EmSeries) error

	// AllocateNumber issues the next number for a country under a row lock,
	// creating the series if the country has never allocated before. The
	// counter advance is part of the ambient transaction and rolls back
	// with it.
	AllocateNumber(ctx context.Context, country string) (string, error)
}
