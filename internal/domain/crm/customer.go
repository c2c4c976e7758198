package crm

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// Customer is the aggregate root for a customer record. Customers are keyed
// by their normalized phone number; the storage layer enforces uniqueness of
// PhoneKey so a phone number resolves to exactly one customer.
type Customer struct {
	shared.BaseAggregateRoot
	PhoneKey     string `gorm:"not null;uniqueIndex"`
	Name         string
	AltPhone     string
	Country      string
	City         string
	AddressLine1 string
	AddressLine2 string
}

// NewCustomer creates a customer from its identifying phone key
func NewCustomer(phoneKey, name string) (*Customer, error) {
	if strings.TrimSpace(phoneKey) == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Customer phone number is required")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PhoneKey:          phoneKey,
		Name:              name,
	}, nil
}

// CustomerFromIntake builds a customer from a lead's intake form during
// conversion. The shipping address becomes the customer's default address.
func CustomerFromIntake(phoneKey string, form *IntakeForm) (*Customer, error) {
	customer, err := NewCustomer(phoneKey, form.CustomerName)
	if err != nil {
		return nil, err
	}

	customer.AltPhone = form.AltPhone
	customer.Country = form.ShippingCountry
	customer.City = form.ShippingCity
	customer.AddressLine1 = form.AddressLine1
	customer.AddressLine2 = form.AddressLine2
	return customer, nil
}

// UpdateProfile updates the customer's descriptive fields
func (c *Customer) UpdateProfile(name, altPhone, country, city, address1, address2 string) {
	c.Name = name
	c.AltPhone = altPhone
	c.Country = country
	c.City = city
	c.AddressLine1 = address1
	c.AddressLine2 = address2
	c.Touch()
	c.IncrementVersion()
}

// ChangePhone replaces the customer's phone key with a newly normalized one
func (c *Customer) ChangePhone(phoneKey string) error {
	if strings.TrimSpace(phoneKey) == "" {
		return shared.NewDomainError("INVALID_PHONE", "Customer phone number is required")
	}

	c.PhoneKey = phoneKey
	c.Touch()
	c.IncrementVersion()
	return nil
}

// TableName specifies the database table name
func (Customer) TableName() string {
	return "customers"
}
