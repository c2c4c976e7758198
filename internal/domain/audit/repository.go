package audit

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryRepository defines the interface for audit entry persistence
type EntryRepository interface {
	// Save appends an audit entry
	Save(ctx context.Context, entry *Entry) error

	// FindByEntity lists entries for an entity, newest first
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]Entry, error)

	// FindByActor lists entries recorded for an actor, newest first
	FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]Entry, error)

	// FindAll lists entries with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Entry, error)

	// Count counts entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
