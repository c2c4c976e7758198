package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeadRepository implements LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

// FindByID loads a lead with its product lines, intake form, assigned agent
// and linked customer
func (r *GormLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	var lead crm.Lead
	if err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("IntakeForm").
		Preload("AssignedAgent").
		Preload("Customer").
		First(&lead, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// FindAll finds all leads matching the filter
func (r *GormLeadRepository) FindAll(ctx context.Context, filter shared.Filter) ([]crm.Lead, error) {
	var leads []crm.Lead
	query := r.applyFilter(r.db.WithContext(ctx).Model(&crm.Lead{}), filter)

	if err := query.
		Preload("Products").
		Preload("IntakeForm").
		Preload("AssignedAgent").
		Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// Save creates or updates a lead together with its product lines and intake
// form. Product lines removed from the aggregate are deleted; the intake
// form row keeps its identity across replacements.
func (r *GormLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products", "IntakeForm", "AssignedAgent", "Customer").
			Save(lead).Error; err != nil {
			return err
		}
		return r.saveAssociations(tx, lead)
	})
}

// SaveWithLock saves a lead with optimistic locking (version check).
// The caller's in-memory version must be one ahead of the stored row.
func (r *GormLeadRepository) SaveWithLock(ctx context.Context, lead *crm.Lead) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lead.UpdatedAt = time.Now()

		result := tx.Model(&crm.Lead{}).
			Where("id = ? AND version = ?", lead.ID, lead.Version-1).
			Updates(map[string]interface{}{
				"phone_key":         lead.PhoneKey,
				"status":            lead.Status,
				"country":           lead.Country,
				"source":            lead.Source,
				"ad_source":         lead.AdSource,
				"language":          lead.Language,
				"notes":             lead.Notes,
				"lost_reason":       lead.LostReason,
				"payment_method":    lead.PaymentMethod,
				"assigned_agent_id": lead.AssignedAgentID,
				"customer_id":       lead.CustomerID,
				"version":           lead.Version,
				"updated_at":        lead.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The lead has been modified by another user")
		}

		return r.saveAssociations(tx, lead)
	})
}

// saveAssociations diffs the product lines against the stored rows and
// upserts the intake form in place.
func (r *GormLeadRepository) saveAssociations(tx *gorm.DB, lead *crm.Lead) error {
	currentProductIDs := make([]uuid.UUID, len(lead.Products))
	for i, product := range lead.Products {
		currentProductIDs[i] = product.ID
	}

	if len(currentProductIDs) > 0 {
		if err := tx.Where("lead_id = ? AND id NOT IN ?", lead.ID, currentProductIDs).
			Delete(&crm.LeadProduct{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("lead_id = ?", lead.ID).
			Delete(&crm.LeadProduct{}).Error; err != nil {
			return err
		}
	}

	for i := range lead.Products {
		lead.Products[i].LeadID = lead.ID
		if err := tx.Save(&lead.Products[i]).Error; err != nil {
			return err
		}
	}

	if lead.IntakeForm != nil {
		lead.IntakeForm.LeadID = lead.ID
		if err := tx.Save(lead.IntakeForm).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a lead together with its product lines and intake form
func (r *GormLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", id).Delete(&crm.LeadProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&crm.IntakeForm{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&crm.Lead{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts leads matching the filter
func (r *GormLeadRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&crm.Lead{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts leads in a given status
func (r *GormLeadRepository) CountByStatus(ctx context.Context, status crm.LeadStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&crm.Lead{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormLeadRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, LeadSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLeadRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("phone_key ILIKE ? OR notes ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "country":
			query = query.Where("country = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "assigned_agent_id":
			query = query.Where("assigned_agent_id = ?", value)
		case "start_date":
			query = query.Where("created_at >= ?", value)
		case "end_date":
			query = query.Where("created_at <= ?", value)
		}
	}

	return query
}

// Ensure GormLeadRepository implements LeadRepository
var _ crm.LeadRepository = (*GormLeadRepository)(nil)
