package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON request body into v, reporting failures as *entity.ParseError
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		return &entity.ParseError{Err: err}
	}
	return nil
}

// sendJSON writes v as a JSON response with the given status
func sendJSON(w http.ResponseWriter, log logger.Logger, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSON(w, log, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}

// sendServiceError maps a service error to a status code. Internal details are
// logged and replaced by a generic description.
func sendServiceError(w http.ResponseWriter, log logger.Logger, err error, action, requestID string) {
	var (
		verr *entity.ValidationError
		perr *entity.ParseError
	)

	switch {
	case errors.As(err, &perr):
		log.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
	case errors.As(err, &verr):
		log.Warn("Validation failed", map[string]interface{}{
			"request_id": requestID,
			"fields":     verr.Fields,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Validation failed", verr.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, entity.ErrNotFound):
		log.Warn("Transaction not found", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Transaction not found",
			"The requested transaction could not be found", http.StatusNotFound, requestID)
	default:
		log.Error("Unexpected error while "+action, map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, log, "Internal server error",
			"An unexpected error occurred while "+action, http.StatusInternalServerError, requestID)
	}
}
