package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// LeadSortFields contains allowed sort fields for leads
var LeadSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"country":    true,
	"source":     true,
	"phone_key":  true,
}

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"phone_key":  true,
	"country":    true,
	"city":       true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"em_number":  true,
	"order_date": true,
	"status":     true,
	"country":    true,
	"value":      true,
}

// StaffSortFields contains allowed sort fields for staff
var StaffSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"name":          true,
	"email":         true,
	"role":          true,
	"country":       true,
	"last_login_at": true,
}

// AuditSortFields contains allowed sort fields for audit entries
var AuditSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"entity_type": true,
	"action":      true,
}
