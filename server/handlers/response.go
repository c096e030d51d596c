package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"booking-server/api"
	"booking-server/api/ponorez"
	services "booking-server/service"
	"booking-server/util"

	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		util.GetLogger().Error("Error encoding response", zap.Error(err))
	}
}

// JSONError sends a standardized JSON error response
func JSONError(w http.ResponseWriter, status int, message string, details string) {
	util.GetLogger().Warn(message, zap.Int("status", status), zap.String("details", details))
	writeJSON(w, status, ErrorResponse{Message: message, Details: details})
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, services.ErrUnknownSupplier),
		errors.Is(err, services.ErrUnknownActivity),
		errors.Is(err, util.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, ponorez.ErrGatewayFault),
		errors.Is(err, ponorez.ErrMissingCredentials),
		errors.As(err, &statusErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, message string, err error) {
	JSONError(w, statusFor(err), message, err.Error())
}
