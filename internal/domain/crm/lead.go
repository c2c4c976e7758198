package crm

import (
	"strings"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadStatus represents the lifecycle state of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusFollowUp  LeadStatus = "FOLLOW_UP"
	LeadStatusWon       LeadStatus = "WON"
	LeadStatusLost      LeadStatus = "LOST"
)

// IsValid checks if the status is a valid lead status
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusFollowUp, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
// WON is reached only through conversion; LOST through MarkLost.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusWon || s == LeadStatusLost
}

// CanTransitionTo checks if the status can transition to the target status
func (s LeadStatus) CanTransitionTo(target LeadStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if !target.IsValid() || target == s {
		return false
	}
	return true
}

// Lead is the aggregate root for an inbound sales lead. The phone key is the
// E.164-normalized number used to match the lead to a customer at conversion.
type Lead struct {
	shared.BaseAggregateRoot
	PhoneKey        string     `gorm:"not null;index"`
	Status          LeadStatus `gorm:"not null;default:'NEW'"`
	Country         string
	Source          string
	AdSource        string
	Language        string
	Notes           string
	LostReason      string
	PaymentMethod   string
	AssignedAgentID *uuid.UUID `gorm:"type:uuid;index"`
	CustomerID      *uuid.UUID `gorm:"type:uuid;index"`

	Products   []LeadProduct `gorm:"foreignKey:LeadID"`
	IntakeForm *IntakeForm   `gorm:"foreignKey:LeadID"`

	AssignedAgent *identity.Staff `gorm:"foreignKey:AssignedAgentID"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID"`
}

// LeadProduct is a product line captured on a lead. PriceEstimate is the
// agent's quoted unit price and may be absent for unpriced inquiries.
type LeadProduct struct {
	shared.BaseEntity
	LeadID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductCode   string           `gorm:"not null"`
	Quantity      int              `gorm:"not null"`
	PriceEstimate *decimal.Decimal `gorm:"type:decimal(20,4)"`
}

// IntakeForm holds the shipping and contact details collected from the
// customer before conversion. A lead has at most one.
type IntakeForm struct {
	shared.BaseEntity
	LeadID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerName        string
	AltPhone            string
	ShippingCountry     string
	ShippingCity        string
	AddressLine1        string
	AddressLine2        string
	MapsLink            string
	DeliveryWindow      string
	SpecialInstructions string
}

// NewLead creates a new lead with the given normalized phone key
func NewLead(phoneKey, country, source string) (*Lead, error) {
	if strings.TrimSpace(phoneKey) == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Lead phone number is required")
	}

	return &Lead{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PhoneKey:          phoneKey,
		Status:            LeadStatusNew,
		Country:           country,
		Source:            source,
	}, nil
}

// NewLeadProduct creates a product line for a lead
func NewLeadProduct(leadID uuid.UUID, productCode string, quantity int, priceEstimate *decimal.Decimal) (*LeadProduct, error) {
	if strings.TrimSpace(productCode) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code is required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if priceEstimate != nil && priceEstimate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price estimate cannot be negative")
	}

	return &LeadProduct{
		BaseEntity:    shared.NewBaseEntity(),
		LeadID:        leadID,
		ProductCode:   productCode,
		Quantity:      quantity,
		PriceEstimate: priceEstimate,
	}, nil
}

// IsTerminal reports whether the lead reached a terminal status
func (l *Lead) IsTerminal() bool {
	return l.Status.IsTerminal()
}

// ChangeStatus moves the lead to the target working status. Terminal states
// (WON, LOST) cannot be entered here: WON only via MarkWon during conversion,
// LOST only via MarkLost which records the reason.
func (l *Lead) ChangeStatus(target LeadStatus) error {
	if target == LeadStatusWon || target == LeadStatusLost {
		return shared.NewDomainError("INVALID_STATUS_CHANGE", "WON and LOST are set by conversion and loss marking, not directly")
	}
	if !l.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			"Cannot change lead status from "+string(l.Status)+" to "+string(target))
	}

	l.Status = target
	l.Touch()
	l.IncrementVersion()
	return nil
}

// MarkLost closes the lead with a reason
func (l *Lead) MarkLost(reason string) error {
	if l.IsTerminal() {
		return shared.NewDomainError("LEAD_CLOSED", "Lead is already closed")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("LOST_REASON_REQUIRED", "A reason is required to mark a lead as lost")
	}

	l.Status = LeadStatusLost
	l.LostReason = reason
	l.Touch()
	l.IncrementVersion()
	return nil
}

// MarkWon flips the lead to WON and links the created customer. Called only
// by the conversion flow, inside its transaction.
func (l *Lead) MarkWon(customerID uuid.UUID) error {
	if l.IsTerminal() {
		return shared.NewDomainError("LEAD_CLOSED", "Lead is already closed")
	}

	l.Status = LeadStatusWon
	l.CustomerID = &customerID
	l.Touch()
	l.IncrementVersion()
	return nil
}

// AssignAgent sets the agent responsible for the lead
func (l *Lead) AssignAgent(agentID uuid.UUID) error {
	if l.IsTerminal() {
		return shared.NewDomainError("LEAD_CLOSED", "Cannot reassign a closed lead")
	}

	l.AssignedAgentID = &agentID
	l.Touch()
	l.IncrementVersion()
	return nil
}

// UpdateDetails updates the mutable descriptive fields of the lead
func (l *Lead) UpdateDetails(country, source, adSource, language, notes, paymentMethod string) error {
	if l.IsTerminal() {
		return shared.NewDomainError("LEAD_CLOSED", "Cannot update a closed lead")
	}

	l.Country = country
	l.Source = source
	l.AdSource = adSource
	l.Language = language
	l.Notes = notes
	l.PaymentMethod = paymentMethod
	l.Touch()
	l.IncrementVersion()
	return nil
}

// SetIntakeForm attaches or replaces the intake form
func (l *Lead) SetIntakeForm(form *IntakeForm) error {
	if l.IsTerminal() {
		return shared.NewDomainError("LEAD_CLOSED", "Cannot update a closed lead")
	}

	form.LeadID = l.ID
	l.IntakeForm = form
	l.Touch()
	l.IncrementVersion()
	return nil
}

// ReplaceProducts swaps the full set of product lines
func (l *Lead) ReplaceProducts(products []LeadProduct) error {
	if l.IsTerminal() {
		return shared.NewDomainError("LEAD_CLOSED", "Cannot update products of a closed lead")
	}

	for i := range products {
		products[i].LeadID = l.ID
	}
	l.Products = products
	l.Touch()
	l.IncrementVersion()
	return nil
}

// EstimatedValue sums quantity times price estimate over all product lines.
// Lines without an estimate contribute zero.
func (l *Lead) EstimatedValue() decimal.Decimal {
	total := decimal.Zero
	for _, p := range l.Products {
		if p.PriceEstimate == nil {
			continue
		}
		total = total.Add(p.PriceEstimate.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// ShippingCountry returns the country the order should ship to, preferring
// the intake form over the lead's own country field.
func (l *Lead) ShippingCountry() string {
	if l.IntakeForm != nil && l.IntakeForm.ShippingCountry != "" {
		return l.IntakeForm.ShippingCountry
	}
	return l.Country
}

// TableName specifies the database table name
func (Lead) TableName() string {
	return "leads"
}

// TableName specifies the database table name
func (LeadProduct) TableName() string {
	return "lead_products"
}

// TableName specifies the database table name
func (IntakeForm) TableName() string {
	return "lead_intake_forms"
}
