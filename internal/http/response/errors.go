package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diagnosis/homepro-bookings/internal/domain"
	"github.com/diagnosis/homepro-bookings/internal/service"
	"github.com/diagnosis/homepro-bookings/pkg/logger"
)

// Message is the body of every error response and of delete confirmations.
type Message struct {
	Message string `json:"message"`
}

const (
	MsgInvalidBody    = "Invalid request body"
	MsgInvalidStatus  = "Invalid status"
	MsgServerError    = "Server error"
	MsgAuthRequired   = "Authentication required"
	MsgInvalidToken   = "Invalid token"
	MsgBadCredentials = "Invalid credentials"
	MsgEmailTaken     = "Email already registered"
	MsgNotFound       = "Not found"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a {"message": ...} JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Message{Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

func InternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, MsgServerError)
}

// FromError maps service and domain errors onto HTTP responses. notFound is
// the resource-specific 404 message; "" means the operation has no resource
// of its own and falls back to MsgNotFound. Unclassified errors are logged
// with op and reported as 500.
func FromError(w http.ResponseWriter, r *http.Request, op, notFound string, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		BadRequest(w, ve.Message)
	case errors.Is(err, service.ErrInvalidStatus):
		BadRequest(w, MsgInvalidStatus)
	case errors.Is(err, service.ErrNotFound):
		if notFound == "" {
			notFound = MsgNotFound
		}
		NotFound(w, notFound)
	case errors.Is(err, service.ErrEmailTaken):
		Conflict(w, MsgEmailTaken)
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(w, MsgBadCredentials)
	default:
		logger.ErrorContext(r.Context(), "request failed", "op", op, "error", err)
		InternalError(w)
	}
}
