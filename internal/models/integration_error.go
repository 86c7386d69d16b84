package models

import (
	"errors"
	"fmt"
)

// Failure classes for the Google Calendar integration. Callers match them with errors.Is.
var (
	ErrNotConnected      = errors.New("google calendar not connected")
	ErrPermanentAuth     = errors.New("google authorization revoked or rejected")
	ErrTransientProvider = errors.New("google temporarily unavailable")
	ErrProviderRejected  = errors.New("google rejected the request")
	ErrPersistence       = errors.New("credential storage failure")
	ErrConfiguration     = errors.New("google oauth client not configured")
)

// IntegrationError carries the failure class of a calendar integration operation
// alongside the underlying cause.
type IntegrationError struct {
	Op   string
	Kind error
	Err  error
}

func (e *IntegrationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *IntegrationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewIntegrationError wraps err in the given failure class
func NewIntegrationError(op string, kind, err error) *IntegrationError {
	return &IntegrationError{Op: op, Kind: kind, Err: err}
}
