package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/libraria/catalog-service/internal/domain"
)

// errorResponse is the client-facing error payload. All fields beyond Error
// are populated only when the error carries them.
type errorResponse struct {
	Error    string            `json:"error"`
	Resource string            `json:"resource,omitempty"`
	ID       string            `json:"id,omitempty"`
	IDs      []int64           `json:"ids,omitempty"`
	Fields   []string          `json:"fields,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a plain JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeDomainError maps domain errors to HTTP status codes and writes a
// structured JSON error response. Recognized client errors are logged at warn
// level; anything unrecognized is logged at error level and surfaced as a
// generic internal error without leaking details.
func writeDomainError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if err == nil {
		return
	}

	var (
		notFound  *domain.NotFoundError
		missing   *domain.MissingReferencesError
		exists    *domain.AlreadyExistsError
		fieldErrs *domain.FieldErrors
		valErr    *domain.ValidationError
		malformed *domain.MalformedInputError
	)

	switch {
	case errors.As(err, &missing):
		logger.Warn().Err(err).Msg("Referenced entities not found")
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:    "resource not found",
			Resource: missing.Entity,
			IDs:      missing.IDs,
		})
	case errors.As(err, &notFound):
		logger.Warn().Err(err).Msg("Resource not found")
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:    "resource not found",
			Resource: notFound.Entity,
			ID:       notFound.ID,
		})
	case errors.As(err, &exists):
		logger.Warn().Err(err).Msg("Resource already exists")
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:    "resource already exists",
			Resource: exists.Entity,
			ID:       exists.ID,
			Fields:   exists.Fields,
		})
	case errors.As(err, &fieldErrs):
		logger.Warn().Err(err).Msg("Validation failed")
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Errors: fieldErrs.Fields,
		})
	case errors.As(err, &valErr):
		logger.Warn().Err(err).Msg("Validation failed")
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Errors: map[string]string{valErr.Field: valErr.Message},
		})
	case errors.As(err, &malformed):
		logger.Warn().Err(err).Msg("Malformed input")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: malformed.Error()})
	case errors.Is(err, domain.ErrNotFound):
		logger.Warn().Err(err).Msg("Resource not found")
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		logger.Warn().Err(err).Msg("Resource already exists")
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		logger.Warn().Err(err).Msg("Invalid input")
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrMalformedInput):
		logger.Warn().Err(err).Msg("Malformed input")
		writeError(w, http.StatusBadRequest, "malformed input")
	case errors.Is(err, domain.ErrServiceUnavailable):
		logger.Warn().Err(err).Msg("Service unavailable")
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		logger.Error().Err(err).Msg("Unhandled error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
