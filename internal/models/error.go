package models

// APIError represents a standardized error response for the API
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error code constants
const (
	// General errors
	ErrBadRequest       = "BAD_REQUEST"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrValidationFailed = "VALIDATION_FAILED"

	// Calendar integration errors
	ErrCalendarNotConnected   = "CALENDAR_NOT_CONNECTED"
	ErrCalendarReconnect      = "CALENDAR_RECONNECT_REQUIRED"
	ErrCalendarProviderFailed = "CALENDAR_PROVIDER_ERROR"
	ErrCalendarStorageFailed  = "CALENDAR_STORAGE_ERROR"
	ErrCalendarNotConfigured  = "CALENDAR_NOT_CONFIGURED"
)

// NewAPIError creates a new API error with the given code and message
func NewAPIError(code, message string, details ...map[string]interface{}) APIError {
	err := APIError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}
