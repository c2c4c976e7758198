package persistence

import (
	"context"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditEntryRepository implements EntryRepository using GORM. Entries
// are append-only; the repository offers no update or delete.
type GormAuditEntryRepository struct {
	db *gorm.DB
}

// NewGormAuditEntryRepository creates a new GormAuditEntryRepository
func NewGormAuditEntryRepository(db *gorm.DB) *GormAuditEntryRepository {
	return &GormAuditEntryRepository{db: db}
}

// Save appends an audit entry
func (r *GormAuditEntryRepository) Save(ctx context.Context, entry *audit.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByEntity lists entries for an entity, newest first
func (r *GormAuditEntryRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	var entries []audit.Entry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&audit.Entry{}).
			Where("entity_type = ? AND entity_id = ?", entityType, entityID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByActor lists entries recorded for an actor, newest first
func (r *GormAuditEntryRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	var entries []audit.Entry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&audit.Entry{}).
			Where("actor_id = ?", actorID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAll lists entries with filtering
func (r *GormAuditEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.Entry, error) {
	var entries []audit.Entry
	query := r.applyFilter(r.db.WithContext(ctx).Model(&audit.Entry{}), filter)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts entries matching the filter
func (r *GormAuditEntryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&audit.Entry{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormAuditEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AuditSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAuditEntryRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "entity_type":
			query = query.Where("entity_type = ?", value)
		case "action":
			query = query.Where("action = ?", value)
		case "actor_id":
			query = query.Where("actor_id = ?", value)
		case "start_date":
			query = query.Where("created_at >= ?", value)
		case "end_date":
			query = query.Where("created_at <= ?", value)
		}
	}
	return query
}

// Ensure GormAuditEntryRepository implements EntryRepository
var _ audit.EntryRepository = (*GormAuditEntryRepository)(nil)
