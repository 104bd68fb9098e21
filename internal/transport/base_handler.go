package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/agency-portal/internal"
	"github.com/frahmantamala/agency-portal/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteAppError writes an AppError with its own status code. Anything that
// is not an AppError is wrapped as an internal error; the cause stays out of
// the response body.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError("internal server error", err)
	}

	h.Logger.Error("http error",
		"status", appErr.StatusCode,
		"type", appErr.Type,
		"error_code", appErr.Code,
		"message", appErr.Error(),
	)

	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// WriteError builds an AppError from the status class so every error
// response shares the same envelope.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	var appErr *internal.AppError
	switch status {
	case http.StatusBadRequest:
		appErr = internal.NewValidationError(message, internal.ErrCodeValidationFailed)
	case http.StatusUnauthorized:
		appErr = internal.NewUnauthorizedError(message, internal.ErrCodeUnauthorized)
	case http.StatusForbidden:
		appErr = internal.NewForbiddenError(message, internal.ErrCodeForbidden)
	case http.StatusNotFound:
		appErr = internal.NewNotFoundError(message, internal.ErrCodeNotFound)
	case http.StatusConflict:
		appErr = internal.NewConflictError(message, internal.ErrCodeConflict)
	case http.StatusTooManyRequests:
		appErr = internal.NewRateLimitedError(message)
	default:
		appErr = internal.NewInternalError(message, nil)
		appErr.StatusCode = status
	}
	h.WriteAppError(w, appErr)
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
