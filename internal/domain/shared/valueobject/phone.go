package valueobject

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is the region leads arrive from when a number carries no
// country code.
const DefaultPhoneRegion = "AE"

// gulfDialCode matches numbers that start with a Gulf country calling code
// but are missing the leading +.
var gulfDialCode = regexp.MustCompile(`^(971|966|965|973|968|974)`)

// dialCodeCountries maps Gulf calling-code prefixes to the country labels
// used across leads and orders.
var dialCodeCountries = map[string]string{
	"+971": "UAE",
	"+966": "KSA",
	"+965": "KWT",
	"+973": "BHR",
	"+968": "OMN",
	"+974": "QAT",
}

// NormalizePhoneKey converts a raw phone number to E.164 format, which is the
// canonical key for matching leads to customers. Inputs arrive in several
// shapes: "+971501234567", "00971501234567", "971501234567" and the local
// "0501234567". All of them normalize to "+971501234567" in an AE context.
// When the number cannot be parsed the cleaned input is returned so the raw
// value is never lost.
func NormalizePhoneKey(raw, region string) string {
	if raw == "" {
		return ""
	}
	if region == "" {
		region = DefaultPhoneRegion
	}

	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + cleaned[2:]
	}
	if !strings.HasPrefix(cleaned, "+") && gulfDialCode.MatchString(cleaned) {
		cleaned = "+" + cleaned
	}

	parsed, err := phonenumbers.Parse(cleaned, region)
	if err == nil && phonenumbers.IsValidNumber(parsed) {
		return phonenumbers.Format(parsed, phonenumbers.E164)
	}

	// Fallback for unparseable numbers: assume the default region when the
	// number is long enough to plausibly be a subscriber number.
	if !strings.HasPrefix(cleaned, "+") && len(cleaned) >= 10 {
		return "+971" + strings.TrimLeft(cleaned, "0")
	}

	return cleaned
}

// IsValidPhone reports whether the number parses as a valid phone number for
// the given region.
func IsValidPhone(raw, region string) bool {
	if region == "" {
		region = DefaultPhoneRegion
	}
	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}

// CountryFromPhone infers the country label from a normalized phone number.
// Returns an empty string when the prefix is not one of the Gulf codes.
func CountryFromPhone(phone string) string {
	for prefix, country := range dialCodeCountries {
		if strings.HasPrefix(phone, prefix) {
			return country
		}
	}
	return ""
}

// FormatPhoneDisplay renders a number in international format for UI output.
// Unparseable numbers are returned unchanged.
func FormatPhoneDisplay(phone string) string {
	parsed, err := phonenumbers.Parse(phone, DefaultPhoneRegion)
	if err != nil {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
}
