package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It is wrapped with a more specific message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidOperation is returned for an unknown market change operation.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidRequestStatus is returned for an unknown request status.
	ErrInvalidRequestStatus = errors.New("invalid request status")

	// ErrRequestCompleted is returned when a request that already reached a
	// terminal status is asked to change again.
	ErrRequestCompleted = errors.New("request already completed")

	// ErrMarketExists is returned when adding a market whose ID is taken.
	ErrMarketExists = errors.New("market already exists")

	// ErrMarketNotFound is returned when updating or deleting a market that
	// does not exist under the given event.
	ErrMarketNotFound = errors.New("market not found")
)
