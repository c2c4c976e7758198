package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUnavailable is used when a dependency is temporarily down
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
	// ErrCodeValidationLength is used when a field length is invalid
	ErrCodeValidationLength = "ERR_VALIDATION_LENGTH"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the staff member lacks the required role
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeAccountLocked is used when too many failed logins locked the account
	ErrCodeAccountLocked = "ERR_ACCOUNT_LOCKED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeConversionBlocked is used when a lead fails the conversion rules
	ErrCodeConversionBlocked = "ERR_CONVERSION_BLOCKED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeTokenExpired:  http.StatusUnauthorized,
	ErrCodeTokenInvalid:  http.StatusUnauthorized,
	ErrCodeAccountLocked: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeConversionBlocked: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized
// ERR_ codes used on the wire. Domain layers raise short codes such as
// LEAD_CLOSED; the HTTP layer normalizes them here.
var LegacyErrorCodeMapping = map[string]string{
	// Lookup failures
	"NOT_FOUND":       ErrCodeNotFound,
	"STAFF_NOT_FOUND": ErrCodeNotFound,

	// Duplicates
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"EMAIL_IN_USE":   ErrCodeAlreadyExists,
	"PHONE_IN_USE":   ErrCodeAlreadyExists,
	"SERIES_EXISTS":  ErrCodeAlreadyExists,

	// Concurrency
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,

	// Authentication and authorization
	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"INVALID_CREDENTIALS": ErrCodeUnauthorized,
	"ACCOUNT_LOCKED":      ErrCodeAccountLocked,
	"ACCOUNT_DEACTIVATED": ErrCodeForbidden,
	"FORBIDDEN":           ErrCodeForbidden,
	"TOKEN_EXPIRED":       ErrCodeTokenExpired,
	"TOKEN_INVALID":       ErrCodeTokenInvalid,
	"TOKEN_REVOKED":       ErrCodeTokenInvalid,
	"TOKEN_MAX_REFRESH":   ErrCodeTokenInvalid,

	// Lifecycle and business rules
	"INVALID_STATE":                ErrCodeInvalidState,
	"INVALID_STATUS":               ErrCodeInvalidState,
	"INVALID_STATUS_CHANGE":        ErrCodeInvalidState,
	"INVALID_STATUS_TRANSITION":    ErrCodeInvalidState,
	"LEAD_CLOSED":                  ErrCodeInvalidState,
	"SERIES_INACTIVE":              ErrCodeInvalidState,
	"COUNTER_ROLLBACK":             ErrCodeInvalidState,
	"LOST_REASON_REQUIRED":         ErrCodeBusinessRule,
	"CANCELLATION_REASON_REQUIRED": ErrCodeBusinessRule,
	"NO_AGENTS_AVAILABLE":          ErrCodeBusinessRule,
	"VALIDATION_FAILED":            ErrCodeValidation,

	// Input problems
	"INVALID_INPUT":     ErrCodeInvalidInput,
	"INVALID_PHONE":     ErrCodeInvalidInput,
	"INVALID_COUNTRY":   ErrCodeInvalidInput,
	"INVALID_EMAIL":     ErrCodeInvalidInput,
	"INVALID_EM_NUMBER": ErrCodeInvalidInput,
	"INVALID_NAME":      ErrCodeInvalidInput,
	"INVALID_PREFIX":    ErrCodeInvalidInput,
	"INVALID_COUNTER":   ErrCodeInvalidInput,
	"INVALID_PRICE":     ErrCodeInvalidInput,
	"INVALID_PRODUCT":   ErrCodeInvalidInput,
	"INVALID_QUANTITY":  ErrCodeInvalidInput,
	"INVALID_ROLE":      ErrCodeInvalidInput,
	"INVALID_CUSTOMER":  ErrCodeInvalidInput,
	"WEAK_PASSWORD":     ErrCodeInvalidInput,
	"VALIDATION_ERROR":  ErrCodeValidation,
	"BAD_REQUEST":       ErrCodeBadRequest,
	"NOT_SUPPORTED":     ErrCodeBadRequest,

	// Infrastructure
	"TRANSIENT_STORAGE":   ErrCodeUnavailable,
	"INTERNAL_ERROR":      ErrCodeInternal,
	"PASSWORD_HASH_ERROR": ErrCodeInternal,
	"TOKEN_ERROR":         ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
