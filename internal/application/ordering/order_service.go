package ordering

import (
	"context"

	auditapp "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntityOrder is the entity type audit entries use for orders
const AuditEntityOrder = "Order"

// OrderService handles order operations after conversion: queries, status
// changes and fulfillment updates. Order creation itself belongs to the
// conversion flow.
type OrderService struct {
	orderRepo ordering.OrderRepository
	auditor   *auditapp.AuditService
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo ordering.OrderRepository, auditor *auditapp.AuditService, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		auditor:   auditor,
		logger:    logger,
	}
}

// GetOrder returns an order hydrated with items, customer, staff and lead
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrderByEmNumber returns an order looked up by its EM number
func (s *OrderService) GetOrderByEmNumber(ctx context.Context, emNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByEmNumber(ctx, emNumber)
	if err != nil {
		return nil, err
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrders returns orders matching the filter with pagination metadata
func (s *OrderService) ListOrders(ctx context.Context, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	domainFilter := buildOrderFilter(filter)

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// UpdateOrder applies a partial update. Status changes run through the
// domain transition rules, so cancelling without a reason fails here exactly
// as it does on the dedicated cancel path.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req UpdateOrderRequest, actorID *uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := orderSnapshot(order)

	if req.Status != nil {
		reason := ""
		if req.CancellationReason != nil {
			reason = *req.CancellationReason
		}
		if err := order.ChangeStatus(ordering.OrderStatus(*req.Status), reason); err != nil {
			return nil, err
		}
	}
	if req.TrackingNumber != nil || req.RTO != nil {
		tracking := order.TrackingNumber
		rto := order.RTO
		if req.TrackingNumber != nil {
			tracking = *req.TrackingNumber
		}
		if req.RTO != nil {
			rto = *req.RTO
		}
		order.UpdateShippingDetails(tracking, rto)
	}
	if req.DeliveryStaffID != nil {
		order.AssignDeliveryStaff(*req.DeliveryStaffID)
	}
	if req.Notes != nil {
		order.SetNotes(*req.Notes)
	}
	if req.Value != nil {
		order.SetValue(*req.Value)
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityOrder, order.ID, audit.ActionUpdate, actorID, before, orderSnapshot(order))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// MarkDelivered transitions an order to DELIVERED
func (s *OrderService) MarkDelivered(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := orderSnapshot(order)

	if err := order.MarkDelivered(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityOrder, order.ID, audit.ActionStatusChange, actorID, before, orderSnapshot(order))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// CancelOrder transitions an order to CANCELLED with a reason
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID, req CancelOrderRequest, actorID *uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := orderSnapshot(order)

	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, AuditEntityOrder, order.ID, audit.ActionStatusChange, actorID, before, orderSnapshot(order))

	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetStats returns order counts per status
func (s *OrderService) GetStats(ctx context.Context) (*OrderStatsResponse, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &OrderStatsResponse{
		Ongoing:   counts[ordering.OrderStatusOngoing],
		Delivered: counts[ordering.OrderStatusDelivered],
		Cancelled: counts[ordering.OrderStatusCancelled],
	}
	stats.Total = stats.Ongoing + stats.Delivered + stats.Cancelled
	return stats, nil
}

// orderSnapshot captures the audited fields of an order
func orderSnapshot(order *ordering.Order) map[string]interface{} {
	return map[string]interface{}{
		"status":              string(order.Status),
		"tracking_number":     order.TrackingNumber,
		"rto":                 order.RTO,
		"value":               order.Value,
		"notes":               order.Notes,
		"cancellation_reason": order.CancellationReason,
		"delivery_staff_id":   order.DeliveryStaffID,
	}
}

// buildOrderFilter converts the API filter to a repository filter
func buildOrderFilter(filter OrderListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.Country != "" {
		domainFilter.Filters["country"] = filter.Country
	}
	if filter.SalesStaffID != nil {
		domainFilter.Filters["sales_staff_id"] = *filter.SalesStaffID
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	return domainFilter
}
