package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rubuy74/market-ops/internal/api/shared"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/service"
)

// MarketChangePath is the collection path for market change requests.
const MarketChangePath = "/api/v1/market-change"

// MarketChangeHandler handles market change HTTP requests on RHS.
type MarketChangeHandler struct {
	requestService service.RequestService
}

// NewMarketChangeHandler creates a new MarketChangeHandler.
func NewMarketChangeHandler(requestService service.RequestService) *MarketChangeHandler {
	return &MarketChangeHandler{requestService: requestService}
}

// Submit handles POST, PUT and DELETE /api/v1/market-change.
// The method selects the operation; any other method gets 405.
func (h *MarketChangeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	op, ok := operationForMethod(r.Method)
	if !ok {
		w.Header().Set("Allow", strings.Join([]string{http.MethodPost, http.MethodPut, http.MethodDelete}, ", "))
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body MarketChangeRequest
	if err := shared.DecodeJSON(w, r, &body); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := shared.ValidateRequest(body); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}

	req, err := h.requestService.Submit(r.Context(), op, body.ToDomain())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("market change accepted",
		slog.String("request_id", req.ID.String()),
		slog.String("operation", string(op)))

	w.Header().Set("Location", MarketChangePath+"/"+req.ID.String())
	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		RequestID: req.ID.String(),
		Status:    req.Status,
	})
}

// GetStatus handles GET /api/v1/market-change/{id}.
func (h *MarketChangeHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request ID")
		return
	}

	req, err := h.requestService.GetRequest(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, requestToStatusResponse(req))
}
