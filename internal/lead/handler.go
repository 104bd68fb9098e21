package lead

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/agency-portal/internal"
	"github.com/frahmantamala/agency-portal/internal/transport"
	"github.com/frahmantamala/agency-portal/pkg/logger"

	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// clientIP prefers the first X-Forwarded-For hop so the limiter keys on the
// visitor, not the proxy in front of the service.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto CreateLeadDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Service.Submit(r.Context(), clientIP(r), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     l.ID,
		"status": l.Status,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := 0, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	leads, err := h.Service.List(limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"leads": leads})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid lead id")
		return
	}

	var dto UpdateLeadStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Service.UpdateStatus(id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	h.Logger.Error("lead service error", "error", err)

	switch {
	case errors.Is(err, ErrRateLimited):
		h.WriteAppError(w, internal.NewRateLimitedError("too many submissions, please try again later"))
	case errors.Is(err, ErrLeadNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("lead not found", internal.ErrCodeLeadNotFound))
	case errors.Is(err, ErrInvalidStatus):
		h.WriteAppError(w, internal.NewValidationError("invalid lead status", internal.ErrCodeValidationFailed))
	default:
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteAppError(w, internal.NewValidationFieldError(verr.Field, verr.Message, internal.ErrCodeValidationFailed))
			return
		}
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
