package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order with its items, customer, staff and source lead
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.preloaded(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByEmNumber finds an order by its EM number
func (r *GormOrderRepository) FindByEmNumber(ctx context.Context, emNumber string) (*ordering.Order, error) {
	if emNumber == "" {
		return nil, shared.NewDomainError("INVALID_EM_NUMBER", "Order number cannot be empty")
	}
	var order ordering.Order
	if err := r.preloaded(ctx).
		Where("em_number = ?", emNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindBySourceLead finds the order created from a lead, if any
func (r *GormOrderRepository) FindBySourceLead(ctx context.Context, leadID uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.preloaded(ctx).
		Where("source_lead_id = ?", leadID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Order, error) {
	var orders []ordering.Order
	query := r.applyFilter(r.db.WithContext(ctx).Model(&ordering.Order{}), filter)

	if err := query.
		Preload("Items").
		Preload("Customer").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates an order together with its items
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Customer", "SalesStaff", "DeliveryStaff", "SourceLead").
			Save(order).Error; err != nil {
			return err
		}
		return r.saveItems(tx, order)
	})
}

// SaveWithLock saves an order with optimistic locking (version check).
// The caller's in-memory version must be one ahead of the stored row.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.UpdatedAt = time.Now()

		result := tx.Model(&ordering.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version-1).
			Updates(map[string]interface{}{
				"status":              order.Status,
				"customer_id":         order.CustomerID,
				"sales_staff_id":      order.SalesStaffID,
				"delivery_staff_id":   order.DeliveryStaffID,
				"value":               order.Value,
				"payment_method":      order.PaymentMethod,
				"tracking_number":     order.TrackingNumber,
				"rto":                 order.RTO,
				"notes":               order.Notes,
				"cancellation_reason": order.CancellationReason,
				"version":             order.Version,
				"updated_at":          order.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		return r.saveItems(tx, order)
	})
}

// saveItems diffs the order lines against the stored rows
func (r *GormOrderRepository) saveItems(tx *gorm.DB, order *ordering.Order) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&ordering.OrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&ordering.OrderItem{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&ordering.Order{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders per status
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[ordering.OrderStatus]int64, error) {
	type statusCount struct {
		Status ordering.OrderStatus
		Count  int64
	}

	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&ordering.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[ordering.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *GormOrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Preload("SalesStaff").
		Preload("DeliveryStaff").
		Preload("SourceLead")
}

// applyFilter applies filter options to the query
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "order_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("em_number ILIKE ? OR tracking_number ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "country":
			query = query.Where("country = ?", value)
		case "sales_staff_id":
			query = query.Where("sales_staff_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "start_date":
			query = query.Where("order_date >= ?", value)
		case "end_date":
			query = query.Where("order_date <= ?", value)
		}
	}

	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ ordering.OrderRepository = (*GormOrderRepository)(nil)
