package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"masareef/internal/core"
	"masareef/internal/records"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondStoreError maps domain and store errors onto HTTP statuses. Validation
// failures are the caller's fault, everything else is a single opaque 500.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case isValidationError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, records.ErrNotFound):
		respondError(w, http.StatusNotFound, "record not found")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount,
		core.ErrNegativeAmount,
		core.ErrEmptyOwner,
		core.ErrEmptyName,
		core.ErrEmptyCategory,
		core.ErrInvalidTarget,
		core.ErrInvalidDuration,
		core.ErrInvalidSeverity,
		core.ErrInvalidDate,
		core.ErrNameTooLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
