package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. The API layer maps them to HTTP
// status codes.
var (
	// ErrDispatchFailed indicates the command could not be handed to the broker.
	// The request has been marked FAILED. API layer maps this to 503.
	ErrDispatchFailed = errors.New("failed to dispatch request")

	// ErrUpstreamUnavailable indicates MOS could not serve the event listing.
	// API layer maps this to 502.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// ServiceError wraps an unexpected failure with the service and operation
// it happened in.
type ServiceError struct {
	Service   string
	Operation string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	prefix := fmt.Sprintf("%s service %s operation failed", e.Service, e.Operation)
	if e.Service == "" {
		prefix = fmt.Sprintf("service %s operation failed", e.Operation)
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Err:       err,
	}
}
