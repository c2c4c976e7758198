package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStaffRepository implements StaffRepository using GORM
type GormStaffRepository struct {
	db *gorm.DB
}

// NewGormStaffRepository creates a new GormStaffRepository
func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// FindByID finds a staff member by ID
func (r *GormStaffRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Staff, error) {
	var staff identity.Staff
	if err := r.db.WithContext(ctx).First(&staff, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// FindByEmail finds a staff member by login email
func (r *GormStaffRepository) FindByEmail(ctx context.Context, email string) (*identity.Staff, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var staff identity.Staff
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// FindAll finds all staff matching the filter
func (r *GormStaffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Staff, error) {
	var staff []identity.Staff
	query := r.applyFilter(r.db.WithContext(ctx).Model(&identity.Staff{}), filter)

	if err := query.Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// FindActiveByRole lists active staff holding a role, optionally narrowed to
// a country. Ordered by creation time so round-robin rotation walks the pool
// in a stable order.
func (r *GormStaffRepository) FindActiveByRole(ctx context.Context, role identity.StaffRole, country string) ([]identity.Staff, error) {
	query := r.db.WithContext(ctx).
		Model(&identity.Staff{}).
		Where("role = ? AND active = ?", role, true)

	if country != "" {
		query = query.Where("country = ?", country)
	}

	var staff []identity.Staff
	if err := query.Order("created_at ASC").Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// Save creates or updates a staff member
func (r *GormStaffRepository) Save(ctx context.Context, staff *identity.Staff) error {
	return r.db.WithContext(ctx).Save(staff).Error
}

// Count counts staff matching the filter
func (r *GormStaffRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&identity.Staff{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormStaffRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StaffSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStaffRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "role":
			query = query.Where("role = ?", value)
		case "country":
			query = query.Where("country = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	return query
}

// Ensure GormStaffRepository implements StaffRepository
var _ identity.StaffRepository = (*GormStaffRepository)(nil)
