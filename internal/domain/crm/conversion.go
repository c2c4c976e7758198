package crm

import "strings"

// ConversionCheck is the result of evaluating a lead for conversion.
// Errors block the conversion; warnings do not.
type ConversionCheck struct {
	CanConvert bool     `json:"can_convert"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
}

// ValidateConversion evaluates every conversion rule against the lead and
// collects all findings rather than stopping at the first. The same rule set
// backs the dry-run check and the conversion itself, so the two can never
// disagree on whether a lead is convertible.
func ValidateConversion(lead *Lead) ConversionCheck {
	check := ConversionCheck{
		Errors:   []string{},
		Warnings: []string{},
	}

	switch lead.Status {
	case LeadStatusWon:
		check.Errors = append(check.Errors, "Lead has already been converted to an order")
	case LeadStatusLost:
		check.Errors = append(check.Errors, "Lead is marked as lost and cannot be converted")
	}

	if len(lead.Products) == 0 {
		check.Errors = append(check.Errors, "Lead must have at least one product to convert")
	}

	if strings.TrimSpace(lead.PhoneKey) == "" {
		check.Errors = append(check.Errors, "Lead has no phone number")
	}

	if lead.IntakeForm == nil {
		check.Errors = append(check.Errors, "Lead has no intake form with shipping details")
	} else {
		if strings.TrimSpace(lead.IntakeForm.ShippingCountry) == "" {
			check.Errors = append(check.Errors, "Intake form is missing the shipping country")
		}
		if strings.TrimSpace(lead.IntakeForm.ShippingCity) == "" {
			check.Errors = append(check.Errors, "Intake form is missing the shipping city")
		}
		if strings.TrimSpace(lead.IntakeForm.AddressLine1) == "" {
			check.Errors = append(check.Errors, "Intake form is missing the shipping address")
		}
		if strings.TrimSpace(lead.IntakeForm.CustomerName) == "" {
			check.Warnings = append(check.Warnings, "Intake form has no customer name; the customer record will be created without one")
		}
	}

	if lead.AssignedAgentID == nil {
		check.Warnings = append(check.Warnings, "Lead has no assigned agent; the order will have no sales staff")
	}

	check.CanConvert = len(check.Errors) == 0
	return check
}
