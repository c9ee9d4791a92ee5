package handler

// RESPONSE HELPERS:
// Every JSON endpoint answers through writeJSON or writeError, so the client
// always sees one of two shapes:
//
//   success: the resource itself, e.g. {"id": "...", "email": "...", "name": "..."}
//   failure: {"error": "conflict", "message": "user already exists: ada@example.com"}
//
// The "error" code is stable and machine-readable; internal/client turns it
// back into the matching apperror kind. "message" is shown to the user.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/symvora/internal/apperror"
)

// maxBodyBytes bounds request bodies. Symptom descriptions are free text but
// never need more than this.
const maxBodyBytes = 64 << 10

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable kind, e.g. "validation_error"
	Message string `json:"message"`         // human-readable text
	Field   string `json:"field,omitempty"` // offending form field, if any
}

// writeJSON sets the content type, writes the status and then the body.
// Headers cannot change once the body has started.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps an error from the service layer to a status code.
//
//	ErrValidation   → 400 validation_error
//	ErrUnauthorized → 401 unauthorized
//	ErrForbidden    → 403 forbidden
//	ErrNotFound     → 404 not_found
//	ErrConflict     → 409 conflict
//	ErrUpstream     → 502 upstream_error
//	anything else   → 500 internal_error (details are logged, never sent)
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrUpstream):
		status, code = http.StatusBadGateway, "upstream_error"
	}

	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

// decodeJSON reads a bounded JSON body into dst. Unknown fields are
// rejected so a typo in a client shows up as a 400 instead of being ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("", fmt.Sprintf("Invalid JSON body: %v", err))
	}
	return nil
}
