package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	applog "pantry/internal/log"
	"pantry/internal/metrics"
	"pantry/internal/store"
	"pantry/internal/tenant"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode JSON response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", store.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", store.ErrValidation, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: request body must contain a single JSON value", store.ErrValidation)
	}
	return nil
}

func invalid(message string) error {
	return fmt.Errorf("%w: %s", store.ErrValidation, message)
}

// writeServiceError maps domain errors onto HTTP status codes. Anything
// unrecognised is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, tenant.ErrUnauthenticated):
		metrics.TenantRejections.Inc()
		writeJSONError(w, http.StatusUnauthorized, "select a customer first")
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInUse):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		applog.Error(r.Context(), "request failed", "action", action, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
