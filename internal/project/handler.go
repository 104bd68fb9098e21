package project

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

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

func (h *Handler) sessionOrFail(w http.ResponseWriter, r *http.Request) (*auth.Session, bool) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return session, true
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	var dto CreateProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.Create(session, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	id, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	p, err := h.Service.Get(session, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	filter := ListFilter{}
	if v := r.URL.Query().Get("status"); v != "" {
		status, err := ParseStatus(v)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = status
	}
	if v := r.URL.Query().Get("client_id"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ClientID = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	projects, err := h.Service.List(session, filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	id, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var dto UpdateProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.Update(session, id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	id, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := h.Service.Delete(session, id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	projectID, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var dto CreateMilestoneDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Service.CreateMilestone(session, projectID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	projectID, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	milestones, err := h.Service.ListMilestones(session, projectID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"milestones": milestones})
}

func (h *Handler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	projectID, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	milestoneID, err := urlID(r, "milestoneID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid milestone id")
		return
	}

	var dto UpdateMilestoneDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.Service.UpdateMilestone(session, projectID, milestoneID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	projectID, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	milestoneID, err := urlID(r, "milestoneID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid milestone id")
		return
	}

	if err := h.Service.DeleteMilestone(session, projectID, milestoneID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateChangeRequest(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	projectID, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var dto CreateChangeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cr, err := h.Service.CreateChangeRequest(session, projectID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, cr)
}

func (h *Handler) ListChangeRequests(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	projectID, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	requests, err := h.Service.ListChangeRequests(session, projectID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"change_requests": requests})
}

func (h *Handler) DecideChangeRequest(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessionOrFail(w, r)
	if !ok {
		return
	}

	projectID, err := urlID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	requestID, err := urlID(r, "requestID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid change request id")
		return
	}

	var dto DecideChangeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cr, err := h.Service.DecideChangeRequest(session, projectID, requestID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cr)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	h.Logger.Error("project service error", "error", err)

	switch {
	case errors.Is(err, ErrForbidden):
		h.WriteAppError(w, internal.NewForbiddenError("insufficient permissions", internal.ErrCodeForbidden))
	case errors.Is(err, ErrProjectNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("project not found", internal.ErrCodeProjectNotFound))
	case errors.Is(err, ErrMilestoneNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("milestone not found", internal.ErrCodeNotFound))
	case errors.Is(err, ErrChangeRequestNotFound):
		h.WriteAppError(w, internal.NewNotFoundError("change request not found", internal.ErrCodeNotFound))
	case errors.Is(err, ErrChangeRequestDecided):
		h.WriteAppError(w, internal.NewConflictError("change request already decided", internal.ErrCodeConflict))
	default:
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteAppError(w, internal.NewValidationFieldError(verr.Field, verr.Message, internal.ErrCodeValidationFailed))
			return
		}
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
