package ordering

import (
	"time"

	"github.com/crm/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Order DTOs ====================

// UpdateOrderRequest represents a request to update an order. Nil fields are
// left unchanged.
type UpdateOrderRequest struct {
	Status             *string          `json:"status" binding:"omitempty,oneof=ONGOING DELIVERED CANCELLED"`
	CancellationReason *string          `json:"cancellation_reason"`
	TrackingNumber     *string          `json:"tracking_number"`
	DeliveryStaffID    *uuid.UUID       `json:"delivery_staff_id"`
	RTO                *bool            `json:"rto"`
	Notes              *string          `json:"notes"`
	Value              *decimal.Decimal `json:"value"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search       string     `form:"search"`
	Status       *string    `form:"status" binding:"omitempty,oneof=ONGOING DELIVERED CANCELLED"`
	Country      string     `form:"country"`
	SalesStaffID *uuid.UUID `form:"sales_staff_id"`
	CustomerID   *uuid.UUID `form:"customer_id"`
	StartDate    *time.Time `form:"start_date"`
	EndDate      *time.Time `form:"end_date"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          uuid.UUID        `json:"id"`
	ProductCode string           `json:"product_code"`
	Quantity    int              `json:"quantity"`
	LineValue   *decimal.Decimal `json:"line_value,omitempty"`
}

// OrderPartyResponse is a compact reference to a customer or staff member
// embedded in an order response.
type OrderPartyResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	OrderKey           uuid.UUID           `json:"order_key"`
	EmNumber           string              `json:"em_number"`
	OrderDate          time.Time           `json:"order_date"`
	Country            string              `json:"country"`
	Status             string              `json:"status"`
	CustomerID         uuid.UUID           `json:"customer_id"`
	Customer           *OrderPartyResponse `json:"customer,omitempty"`
	SalesStaffID       *uuid.UUID          `json:"sales_staff_id,omitempty"`
	SalesStaff         *OrderPartyResponse `json:"sales_staff,omitempty"`
	DeliveryStaffID    *uuid.UUID          `json:"delivery_staff_id,omitempty"`
	DeliveryStaff      *OrderPartyResponse `json:"delivery_staff,omitempty"`
	SourceLeadID       *uuid.UUID          `json:"source_lead_id,omitempty"`
	Items              []OrderItemResponse `json:"items"`
	Value              *decimal.Decimal    `json:"value,omitempty"`
	PaymentMethod      string              `json:"payment_method,omitempty"`
	TrackingNumber     string              `json:"tracking_number,omitempty"`
	RTO                bool                `json:"rto"`
	Notes              string              `json:"notes,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Version            int                 `json:"version"`
}

// OrderStatsResponse counts orders per status
type OrderStatsResponse struct {
	Ongoing   int64 `json:"ongoing"`
	Delivered int64 `json:"delivered"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// ==================== EM Series DTOs ====================

// CreateEmSeriesRequest represents a request to create a numbering series
type CreateEmSeriesRequest struct {
	Country     string `json:"country" binding:"required,min=2,max=40"`
	Prefix      string `json:"prefix" binding:"omitempty,max=40"`
	NextCounter int64  `json:"next_counter" binding:"omitempty,min=1"`
}

// UpdateEmSeriesRequest represents a request to update a numbering series
type UpdateEmSeriesRequest struct {
	Prefix      *string `json:"prefix" binding:"omitempty,min=1,max=40"`
	NextCounter *int64  `json:"next_counter" binding:"omitempty,min=1"`
	Active      *bool   `json:"active"`
}

// EmSeriesResponse represents a numbering series in API responses
type EmSeriesResponse struct {
	ID          uuid.UUID `json:"id"`
	Country     string    `json:"country"`
	Prefix      string    `json:"prefix"`
	NextCounter int64     `json:"next_counter"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToOrderItemResponse converts a domain order item to a response DTO
func ToOrderItemResponse(item *ordering.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:          item.ID,
		ProductCode: item.ProductCode,
		Quantity:    item.Quantity,
		LineValue:   item.LineValue,
	}
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i := range order.Items {
		items[i] = ToOrderItemResponse(&order.Items[i])
	}

	resp := OrderResponse{
		ID:                 order.ID,
		OrderKey:           order.OrderKey,
		EmNumber:           order.EmNumber,
		OrderDate:          order.OrderDate,
		Country:            order.Country,
		Status:             string(order.Status),
		CustomerID:         order.CustomerID,
		SalesStaffID:       order.SalesStaffID,
		DeliveryStaffID:    order.DeliveryStaffID,
		SourceLeadID:       order.SourceLeadID,
		Items:              items,
		Value:              order.Value,
		PaymentMethod:      order.PaymentMethod,
		TrackingNumber:     order.TrackingNumber,
		RTO:                order.RTO,
		Notes:              order.Notes,
		CancellationReason: order.CancellationReason,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		Version:            order.Version,
	}

	if order.Customer != nil {
		resp.Customer = &OrderPartyResponse{ID: order.Customer.ID, Name: order.Customer.Name}
	}
	if order.SalesStaff != nil {
		resp.SalesStaff = &OrderPartyResponse{ID: order.SalesStaff.ID, Name: order.SalesStaff.Name}
	}
	if order.DeliveryStaff != nil {
		resp.DeliveryStaff = &OrderPartyResponse{ID: order.DeliveryStaff.ID, Name: order.DeliveryStaff.Name}
	}

	return resp
}

// ToEmSeriesResponse converts a domain series to a response DTO
func ToEmSeriesResponse(series *ordering.EmSeries) EmSeriesResponse {
	return EmSeriesResponse{
		ID:          series.ID,
		Country:     series.Country,
		Prefix:      series.Prefix,
		NextCounter: series.NextCounter,
		Active:      series.Active,
		CreatedAt:   series.CreatedAt,
		UpdatedAt:   series.UpdatedAt,
	}
}
