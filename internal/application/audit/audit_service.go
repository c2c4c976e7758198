package audit

import (
	"context"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditService records and queries audit entries. Record is best-effort by
// contract: business flows call it after their own transaction commits, and
// an audit failure must never undo committed work, so failures are logged
// and swallowed.
type AuditService struct {
	repo   audit.EntryRepository
	logger *zap.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo audit.EntryRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an audit entry. Never returns an error; a failed write is
// logged with enough context to reconstruct the entry.
func (s *AuditService) Record(ctx context.Context, entityType string, entityID uuid.UUID, action audit.Action, actorID *uuid.UUID, before, after interface{}) {
	entry := audit.NewEntry(entityType, entityID, action, actorID, before, after)

	if err := s.repo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to write audit entry",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

// ListByEntity returns the audit trail of an entity, newest first
func (s *AuditService) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]EntryResponse, error) {
	entries, err := s.repo.FindByEntity(ctx, entityType, entityID, filter)
	if err != nil {
		return nil, err
	}
	return toEntryResponses(entries), nil
}

// ListByActor returns the entries recorded for an actor, newest first
func (s *AuditService) ListByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]EntryResponse, error) {
	entries, err := s.repo.FindByActor(ctx, actorID, filter)
	if err != nil {
		return nil, err
	}
	return toEntryResponses(entries), nil
}

// List returns audit entries matching the filter, with pagination metadata
func (s *AuditService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[EntryResponse], error) {
	entries, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(toEntryResponses(entries), total, filter.Page, filter.PageSize)
	return &result, nil
}
