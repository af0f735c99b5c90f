package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rubuy74/market-ops/internal/domain"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrValidation, paramName)
	}
	return id, nil
}

// operationForMethod derives the market change operation from the HTTP method.
func operationForMethod(method string) (domain.Operation, bool) {
	switch method {
	case http.MethodPost:
		return domain.OperationAdd, true
	case http.MethodPut:
		return domain.OperationUpdate, true
	case http.MethodDelete:
		return domain.OperationDelete, true
	default:
		return "", false
	}
}
