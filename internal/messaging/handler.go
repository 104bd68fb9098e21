package messaging

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/agency-portal/internal"
	"github.com/frahmantamala/agency-portal/internal/auth"
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

// ListConversations ensures a client always has a conversation before the
// read. Provisioning is invoked here, not inside the list itself, so the
// read path stays side-effect free.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if session.Role == auth.RoleClient {
		if err := h.Service.EnsureClientConversations(session.UserID); err != nil {
			h.Logger.Error("failed to ensure client conversations", "user_id", session.UserID, "error", err)
			h.WriteError(w, http.StatusInternalServerError, "failed to list conversations")
			return
		}
	}

	summaries, err := h.Service.ListConversations(session)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": summaries})
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conversationID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	var before *time.Time
	if v := r.URL.Query().Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid before timestamp")
			return
		}
		before = &t
	}

	messages, err := h.Service.GetMessages(session, conversationID, limit, before)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conversationID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var dto SendMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), session, conversationID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	count, err := h.Service.UnreadCountForUser(session)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"unread_count": count})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	h.Logger.Error("messaging service error", "error", err)

	switch {
	case errors.Is(err, ErrConversationAccess):
		h.WriteAppError(w, internal.NewNotFoundError("conversation not found", internal.ErrCodeConversationAccess))
	default:
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteAppError(w, internal.NewValidationFieldError(verr.Field, verr.Message, internal.ErrorCode(verr.Code)))
			return
		}
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
