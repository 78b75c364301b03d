package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// bufferPool reduces allocations during JSON encoding
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent; nothing to do but log
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"

	ErrMsgGameNotFoundHTTP   = "Game not found"
	ErrMsgGameNotJoinable    = "Game is not accepting players"
	ErrMsgGameNotActiveHTTP  = "Game is not active"
	ErrMsgOrganizerOnlyHTTP  = "Only the game organizer may do that"
	ErrMsgNotRetryableHTTP   = "Prize item is not in a retryable state"
	ErrMsgPrizeNotFoundHTTP  = "Prize queue item not found"
	ErrMsgPlayerNotFoundHTTP = "Player not found"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// responses so handlers never leak internal detail to clients.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		return http.StatusNotFound, ErrMsgGameNotFoundHTTP
	case errors.Is(err, domain.ErrGameAlreadyStarted):
		return http.StatusConflict, ErrMsgGameNotJoinable
	case errors.Is(err, domain.ErrGameNotActive):
		return http.StatusConflict, ErrMsgGameNotActiveHTTP
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusConflict, domain.ErrMsgInvalidStatus
	case errors.Is(err, domain.ErrNoPlayers):
		return http.StatusConflict, domain.ErrMsgNoPlayers
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrMsgOrganizerOnlyHTTP
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, domain.ErrMsgUnauthorized
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound, ErrMsgPlayerNotFoundHTTP
	case errors.Is(err, domain.ErrPrizeItemNotFound):
		return http.StatusNotFound, ErrMsgPrizeNotFoundHTTP
	case errors.Is(err, domain.ErrPrizeNotRetryable):
		return http.StatusConflict, ErrMsgNotRetryableHTTP
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestSummary
	}

	// Wrapped errors with a domain error underneath
	if unwrapped := errors.Unwrap(err); unwrapped != nil && unwrapped != err {
		return mapServiceErrorToUserMessage(unwrapped)
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
