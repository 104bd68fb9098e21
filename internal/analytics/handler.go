package analytics

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/agency-portal/internal"
	"github.com/frahmantamala/agency-portal/internal/transport"
	"github.com/frahmantamala/agency-portal/pkg/logger"
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

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var dto IngestEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.Service.Ingest(dto, r.UserAgent())
	if err != nil {
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteAppError(w, internal.NewValidationFieldError(verr.Field, verr.Message, internal.ErrCodeValidationFailed))
			return
		}
		h.Logger.Error("analytics ingest failed", "error", err)
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"event_id":   event.ID,
		"session_id": event.SessionID,
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		to = t
	}

	counts, err := h.Service.Summary(from, to)
	if err != nil {
		h.Logger.Error("analytics summary failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": counts})
}
