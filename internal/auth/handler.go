package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)

		switch err {
		case ErrInvalidCredentials:
			h.WriteAppError(w, internal.ErrInvalidCredentials)
		case ErrUserInactive:
			h.WriteAppError(w, internal.ErrUserInactive)
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
			} else {
				h.WriteAppError(w, internal.NewInternalError("internal server error", err))
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// AccessCodeLogin exchanges a client access code for a session. It shares the
// invalid-credential response with Login so codes cannot be probed.
func (h *Handler) AccessCodeLogin(w http.ResponseWriter, r *http.Request) {
	var dto AccessCodeLoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.AuthenticateAccessCode(dto)
	if err != nil {
		h.Logger.Error("access code authentication failed", "error", err)

		switch err {
		case ErrInvalidAccessCode:
			h.WriteAppError(w, internal.ErrInvalidAccessCode)
		case ErrUserInactive:
			h.WriteAppError(w, internal.ErrUserInactive)
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
			} else {
				h.WriteAppError(w, internal.NewInternalError("internal server error", err))
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)

		switch err {
		case ErrInvalidToken:
			h.WriteAppError(w, internal.ErrInvalidToken)
		case ErrTokenExpired:
			h.WriteAppError(w, internal.ErrTokenExpired)
		case ErrUserInactive:
			h.WriteAppError(w, internal.ErrUserInactive)
		default:
			h.WriteAppError(w, internal.NewInternalError("internal server error", err))
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware validates the bearer token and loads a live session into the
// request context. The user row is re-read so deactivated accounts drop out
// immediately, not at token expiry.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Error("token validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		session, err := h.Service.SessionForUser(claims.UserID)
		if err != nil {
			h.Logger.Error("auth middleware: failed to load session", "user_id", claims.UserID, "error", err)
			h.WriteError(w, http.StatusUnauthorized, "user not found")
			return
		}

		ctx := ContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
