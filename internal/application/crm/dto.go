package crm

import (
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Lead DTOs ====================

// LeadProductInput represents a product line in lead requests
type LeadProductInput struct {
	ProductCode   string           `json:"product_code" binding:"required,min=1,max=50"`
	Quantity      int              `json:"quantity" binding:"required,min=1"`
	PriceEstimate *decimal.Decimal `json:"price_estimate"`
}

// IntakeFormInput represents the intake form in lead requests
type IntakeFormInput struct {
	CustomerName        string `json:"customer_name" binding:"omitempty,max=200"`
	AltPhone            string `json:"alt_phone" binding:"omitempty,max=30"`
	ShippingCountry     string `json:"shipping_country" binding:"omitempty,max=40"`
	ShippingCity        string `json:"shipping_city" binding:"omitempty,max=100"`
	AddressLine1        string `json:"address_line1" binding:"omitempty,max=300"`
	AddressLine2        string `json:"address_line2" binding:"omitempty,max=300"`
	MapsLink            string `json:"maps_link" binding:"omitempty,max=500"`
	DeliveryWindow      string `json:"delivery_window" binding:"omitempty,max=100"`
	SpecialInstructions string `json:"special_instructions" binding:"omitempty,max=1000"`
}

// CreateLeadRequest represents a request to create a lead
type CreateLeadRequest struct {
	Phone         string             `json:"phone" binding:"required,min=5,max=30"`
	Country       string             `json:"country" binding:"omitempty,max=40"`
	Source        string             `json:"source" binding:"omitempty,max=100"`
	AdSource      string             `json:"ad_source" binding:"omitempty,max=100"`
	Language      string             `json:"language" binding:"omitempty,max=20"`
	Notes         string             `json:"notes" binding:"omitempty,max=2000"`
	PaymentMethod string             `json:"payment_method" binding:"omitempty,max=50"`
	AgentID       *uuid.UUID         `json:"agent_id"`
	AutoAssign    bool               `json:"auto_assign"`
	Products      []LeadProductInput `json:"products" binding:"omitempty,dive"`
	IntakeForm    *IntakeFormInput   `json:"intake_form"`
}

// UpdateLeadRequest represents a partial update of a lead's details
type UpdateLeadRequest struct {
	Country       *string `json:"country" binding:"omitempty,max=40"`
	Source        *string `json:"source" binding:"omitempty,max=100"`
	AdSource      *string `json:"ad_source" binding:"omitempty,max=100"`
	Language      *string `json:"language" binding:"omitempty,max=20"`
	Notes         *string `json:"notes" binding:"omitempty,max=2000"`
	PaymentMethod *string `json:"payment_method" binding:"omitempty,max=50"`
}

// ChangeLeadStatusRequest moves a lead to a working status
type ChangeLeadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=NEW CONTACTED FOLLOW_UP"`
}

// MarkLeadLostRequest closes a lead with a reason
type MarkLeadLostRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AssignLeadRequest assigns an agent to a lead
type AssignLeadRequest struct {
	AgentID *uuid.UUID `json:"agent_id"`
}

// ReplaceLeadProductsRequest replaces a lead's product lines
type ReplaceLeadProductsRequest struct {
	Products []LeadProductInput `json:"products" binding:"required,dive"`
}

// LeadListFilter represents filter options for the lead list
type LeadListFilter struct {
	Search   string     `form:"search"`
	Status   *string    `form:"status" binding:"omitempty,oneof=NEW CONTACTED FOLLOW_UP WON LOST"`
	Country  string     `form:"country"`
	Source   string     `form:"source"`
	AgentID  *uuid.UUID `form:"agent_id"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LeadProductResponse represents a product line in API responses
type LeadProductResponse struct {
	ID            uuid.UUID        `json:"id"`
	ProductCode   string           `json:"product_code"`
	Quantity      int              `json:"quantity"`
	PriceEstimate *decimal.Decimal `json:"price_estimate,omitempty"`
}

// IntakeFormResponse represents an intake form in API responses
type IntakeFormResponse struct {
	CustomerName        string `json:"customer_name,omitempty"`
	AltPhone            string `json:"alt_phone,omitempty"`
	ShippingCountry     string `json:"shipping_country,omitempty"`
	ShippingCity        string `json:"shipping_city,omitempty"`
	AddressLine1        string `json:"address_line1,omitempty"`
	AddressLine2        string `json:"address_line2,omitempty"`
	MapsLink            string `json:"maps_link,omitempty"`
	DeliveryWindow      string `json:"delivery_window,omitempty"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

// LeadPartyResponse is a compact reference to an agent or customer
type LeadPartyResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// LeadResponse represents a lead in API responses
type LeadResponse struct {
	ID              uuid.UUID             `json:"id"`
	PhoneKey        string                `json:"phone_key"`
	Status          string                `json:"status"`
	Country         string                `json:"country,omitempty"`
	Source          string                `json:"source,omitempty"`
	AdSource        string                `json:"ad_source,omitempty"`
	Language        string                `json:"language,omitempty"`
	Notes           string                `json:"notes,omitempty"`
	LostReason      string                `json:"lost_reason,omitempty"`
	PaymentMethod   string                `json:"payment_method,omitempty"`
	AssignedAgentID *uuid.UUID            `json:"assigned_agent_id,omitempty"`
	AssignedAgent   *LeadPartyResponse    `json:"assigned_agent,omitempty"`
	CustomerID      *uuid.UUID            `json:"customer_id,omitempty"`
	Customer        *LeadPartyResponse    `json:"customer,omitempty"`
	Products        []LeadProductResponse `json:"products"`
	IntakeForm      *IntakeFormResponse   `json:"intake_form,omitempty"`
	EstimatedValue  decimal.Decimal       `json:"estimated_value"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Version         int                   `json:"version"`
}

// ==================== Conversion DTOs ====================

// ConvertLeadRequest carries the per-conversion overrides. Either field, when
// set, wins over the value captured on the lead.
type ConvertLeadRequest struct {
	PaymentMethod string `json:"payment_method" binding:"omitempty,max=50"`
	Notes         string `json:"notes" binding:"omitempty,max=2000"`
}

// ==================== Customer DTOs ====================

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Phone        string `json:"phone" binding:"required,min=5,max=30"`
	Name         string `json:"name" binding:"omitempty,max=200"`
	AltPhone     string `json:"alt_phone" binding:"omitempty,max=30"`
	Country      string `json:"country" binding:"omitempty,max=40"`
	City         string `json:"city" binding:"omitempty,max=100"`
	AddressLine1 string `json:"address_line1" binding:"omitempty,max=300"`
	AddressLine2 string `json:"address_line2" binding:"omitempty,max=300"`
}

// UpdateCustomerRequest represents a partial update of a customer
type UpdateCustomerRequest struct {
	Phone        *string `json:"phone" binding:"omitempty,min=5,max=30"`
	Name         *string `json:"name" binding:"omitempty,max=200"`
	AltPhone     *string `json:"alt_phone" binding:"omitempty,max=30"`
	Country      *string `json:"country" binding:"omitempty,max=40"`
	City         *string `json:"city" binding:"omitempty,max=100"`
	AddressLine1 *string `json:"address_line1" binding:"omitempty,max=300"`
	AddressLine2 *string `json:"address_line2" binding:"omitempty,max=300"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Country  string `form:"country"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID           uuid.UUID `json:"id"`
	PhoneKey     string    `json:"phone_key"`
	Name         string    `json:"name,omitempty"`
	AltPhone     string    `json:"alt_phone,omitempty"`
	Country      string    `json:"country,omitempty"`
	City         string    `json:"city,omitempty"`
	AddressLine1 string    `json:"address_line1,omitempty"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ==================== Mappers ====================

// ToLeadResponse converts a domain lead to a response DTO
func ToLeadResponse(lead *crm.Lead) LeadResponse {
	products := make([]LeadProductResponse, len(lead.Products))
	for i := range lead.Products {
		p := &lead.Products[i]
		products[i] = LeadProductResponse{
			ID:            p.ID,
			ProductCode:   p.ProductCode,
			Quantity:      p.Quantity,
			PriceEstimate: p.PriceEstimate,
		}
	}

	resp := LeadResponse{
		ID:              lead.ID,
		PhoneKey:        lead.PhoneKey,
		Status:          string(lead.Status),
		Country:         lead.Country,
		Source:          lead.Source,
		AdSource:        lead.AdSource,
		Language:        lead.Language,
		Notes:           lead.Notes,
		LostReason:      lead.LostReason,
		PaymentMethod:   lead.PaymentMethod,
		AssignedAgentID: lead.AssignedAgentID,
		CustomerID:      lead.CustomerID,
		Products:        products,
		EstimatedValue:  lead.EstimatedValue(),
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
		Version:         lead.Version,
	}

	if lead.IntakeForm != nil {
		resp.IntakeForm = &IntakeFormResponse{
			CustomerName:        lead.IntakeForm.CustomerName,
			AltPhone:            lead.IntakeForm.AltPhone,
			ShippingCountry:     lead.IntakeForm.ShippingCountry,
			ShippingCity:        lead.IntakeForm.ShippingCity,
			AddressLine1:        lead.IntakeForm.AddressLine1,
			AddressLine2:        lead.IntakeForm.AddressLine2,
			MapsLink:            lead.IntakeForm.MapsLink,
			DeliveryWindow:      lead.IntakeForm.DeliveryWindow,
			SpecialInstructions: lead.IntakeForm.SpecialInstructions,
		}
	}
	if lead.AssignedAgent != nil {
		resp.AssignedAgent = &LeadPartyResponse{ID: lead.AssignedAgent.ID, Name: lead.AssignedAgent.Name}
	}
	if lead.Customer != nil {
		resp.Customer = &LeadPartyResponse{ID: lead.Customer.ID, Name: lead.Customer.Name}
	}

	return resp
}

// ToCustomerResponse converts a domain customer to a response DTO
func ToCustomerResponse(customer *crm.Customer) CustomerResponse {
	return CustomerResponse{
		ID:           customer.ID,
		PhoneKey:     customer.PhoneKey,
		Name:         customer.Name,
		AltPhone:     customer.AltPhone,
		Country:      customer.Country,
		City:         customer.City,
		AddressLine1: customer.AddressLine1,
		AddressLine2: customer.AddressLine2,
		CreatedAt:    customer.CreatedAt,
		UpdatedAt:    customer.UpdatedAt,
	}
}

// toIntakeForm converts an intake form input to the domain entity
func toIntakeForm(input *IntakeFormInput) *crm.IntakeForm {
	return &crm.IntakeForm{
		BaseEntity:          shared.NewBaseEntity(),
		CustomerName:        input.CustomerName,
		AltPhone:            input.AltPhone,
		ShippingCountry:     input.ShippingCountry,
		ShippingCity:        input.ShippingCity,
		AddressLine1:        input.AddressLine1,
		AddressLine2:        input.AddressLine2,
		MapsLink:            input.MapsLink,
		DeliveryWindow:      input.DeliveryWindow,
		SpecialInstructions: input.SpecialInstructions,
	}
}
