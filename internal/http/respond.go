package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/splityuk/splityuk/internal/auth"
	"github.com/splityuk/splityuk/internal/money"
	"github.com/splityuk/splityuk/internal/service"
	"github.com/splityuk/splityuk/internal/split"
	"github.com/splityuk/splityuk/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and surface as a bare 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, storage.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrBillLocked):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrEmailExists):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, split.ErrNoParticipants):
		status, message = http.StatusBadRequest, err.Error()
	default:
		slog.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}
