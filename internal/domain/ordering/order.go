package ordering

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfillment state of an order
type OrderStatus string

const (
	OrderStatusOngoing   OrderStatus = "ONGOING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusOngoing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem is a frozen line of the order, copied verbatim from the lead's
// product lines at conversion time. LineValue is the price estimate as it
// stood then; later edits to the lead never flow back here.
type OrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductCode string           `gorm:"not null"`
	Quantity    int              `gorm:"not null"`
	LineValue   *decimal.Decimal `gorm:"type:decimal(20,4)"`
}

// Order is the aggregate root for a customer order. Orders are created by
// converting a lead; SourceLeadID is unique so a lead converts at most once.
type Order struct {
	shared.BaseAggregateRoot
	OrderKey           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	EmNumber           string           `gorm:"not null;uniqueIndex"`
	OrderDate          time.Time        `gorm:"not null"`
	Country            string           `gorm:"not null"`
	Status             OrderStatus      `gorm:"not null;default:'ONGOING'"`
	CustomerID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	SalesStaffID       *uuid.UUID       `gorm:"type:uuid;index"`
	DeliveryStaffID    *uuid.UUID       `gorm:"type:uuid;index"`
	SourceLeadID       *uuid.UUID       `gorm:"type:uuid;uniqueIndex"`
	Value              *decimal.Decimal `gorm:"type:decimal(20,4)"`
	PaymentMethod      string
	TrackingNumber     string
	RTO                bool `gorm:"not null;default:false"`
	Notes              string
	CancellationReason string

	Items []OrderItem `gorm:"foreignKey:OrderID"`

	Customer      *crm.Customer   `gorm:"foreignKey:CustomerID"`
	SalesStaff    *identity.Staff `gorm:"foreignKey:SalesStaffID"`
	DeliveryStaff *identity.Staff `gorm:"foreignKey:DeliveryStaffID"`
	SourceLead    *crm.Lead       `gorm:"foreignKey:SourceLeadID"`
}

// NewOrder creates a new order in ONGOING status with a fresh order key
func NewOrder(emNumber, country string, customerID uuid.UUID) (*Order, error) {
	if strings.TrimSpace(emNumber) == "" {
		return nil, shared.NewDomainError("INVALID_EM_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderKey:          uuid.New(),
		EmNumber:          emNumber,
		OrderDate:         time.Now(),
		Country:           country,
		Status:            OrderStatusOngoing,
		CustomerID:        customerID,
		Items:             make([]OrderItem, 0),
	}, nil
}

// NewOrderItem creates a frozen order line
func NewOrderItem(orderID uuid.UUID, productCode string, quantity int, lineValue *decimal.Decimal) (*OrderItem, error) {
	if strings.TrimSpace(productCode) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &OrderItem{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		ProductCode: productCode,
		Quantity:    quantity,
		LineValue:   lineValue,
	}, nil
}

// AddItem appends a line to the order
func (o *Order) AddItem(item *OrderItem) {
	item.OrderID = o.ID
	o.Items = append(o.Items, *item)
	o.Touch()
}

// SetValue stores the order value. Non-positive totals are stored as NULL
// rather than zero so unpriced orders stay distinguishable from free ones.
func (o *Order) SetValue(total decimal.Decimal) {
	if total.LessThanOrEqual(decimal.Zero) {
		o.Value = nil
	} else {
		v := total
		o.Value = &v
	}
	o.Touch()
}

// ChangeStatus transitions the order, enforcing the cancellation-reason
// invariant: entering CANCELLED requires a reason, leaving it clears one.
func (o *Order) ChangeStatus(target OrderStatus, cancellationReason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+string(target))
	}

	if target == OrderStatusCancelled {
		if strings.TrimSpace(cancellationReason) == "" {
			return shared.NewDomainError("CANCELLATION_REASON_REQUIRED", "A cancellation reason is required to cancel an order")
		}
		o.CancellationReason = cancellationReason
	} else {
		o.CancellationReason = ""
	}

	o.Status = target
	o.Touch()
	o.IncrementVersion()
	return nil
}

// MarkDelivered transitions the order to DELIVERED
func (o *Order) MarkDelivered() error {
	return o.ChangeStatus(OrderStatusDelivered, "")
}

// Cancel transitions the order to CANCELLED with the given reason
func (o *Order) Cancel(reason string) error {
	return o.ChangeStatus(OrderStatusCancelled, reason)
}

// AssignDeliveryStaff sets the staff member delivering the order
func (o *Order) AssignDeliveryStaff(staffID uuid.UUID) {
	o.DeliveryStaffID = &staffID
	o.Touch()
	o.IncrementVersion()
}

// UpdateShippingDetails updates tracking and RTO information
func (o *Order) UpdateShippingDetails(trackingNumber string, rto bool) {
	o.TrackingNumber = trackingNumber
	o.RTO = rto
	o.Touch()
	o.IncrementVersion()
}

// SetNotes replaces the order notes
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.Touch()
}

// TableName specifies the database table name
func (Order) TableName() string {
	return "orders"
}

// TableName specifies the database table name
func (OrderItem) TableName() string {
	return "order_items"
}
