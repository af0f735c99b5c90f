package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rubuy74/market-ops/internal/domain"
	"github.com/rubuy74/market-ops/internal/service"
	"github.com/rubuy74/market-ops/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrRequestNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrDispatchFailed):
		return http.StatusServiceUnavailable

	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)

	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidOperation):
		return domainValidationMessage(err)

	case errors.Is(err, store.ErrRequestNotFound):
		return "Request not found"

	case errors.Is(err, service.ErrDispatchFailed):
		return service.DispatchFailedMessage

	case errors.Is(err, service.ErrUpstreamUnavailable):
		return "Market operations service unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// domainValidationMessage keeps the part of a domain validation error that
// describes the offending field. Domain messages name fields, never internals.
func domainValidationMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, domain.ErrValidation.Error()+": "); i >= 0 {
		return "Invalid market change: " + msg[i+len(domain.ErrValidation.Error())+2:]
	}
	return "Invalid market change"
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the first failing field.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	field := strings.TrimPrefix(fe.Namespace(), "MarketChangeRequest.")
	return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "gt":
		return "value too small"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "unique":
		return "duplicate value"
	default:
		return "validation failed"
	}
}
