package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/gateway"
	"rental-mngt-admin/internal/logger"
)

// errorBody mirrors the error payload of the rental-mngt API so the UI
// handles both the same way.
type errorBody struct {
	Message  string `json:"message"`
	ErrorKey string `json:"errorKey,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeError maps service errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, errorBody) {
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, gateway.ErrTokenExpired):
		return http.StatusUnauthorized, errorBody{Message: gateway.ErrTokenExpired.Error()}
	case errors.Is(err, gateway.ErrReauthRequired):
		return http.StatusForbidden, errorBody{Message: gateway.ErrReauthRequired.Error()}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorBody{Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Message: err.Error()}
	case errors.Is(err, domain.ErrRentalOverlap):
		return http.StatusConflict, errorBody{Message: err.Error(), ErrorKey: "overlapping_rental"}
	case errors.Is(err, domain.ErrNotEditing), errors.Is(err, domain.ErrSubmitting):
		return http.StatusConflict, errorBody{Message: err.Error()}
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, errorBody{Message: apiErr.Message, ErrorKey: apiErr.ErrorKey}
	}
	return http.StatusInternalServerError, errorBody{Message: "internal error"}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}
