package auth

import (
	"log/slog"
	"net/http"
)

// DenialKind distinguishes "no session at all" from "session with the wrong
// role" so callers can map them to 401 and 403 respectively.
type DenialKind string

const (
	DenialNone             DenialKind = ""
	DenialNotAuthenticated DenialKind = "NOT_AUTHENTICATED"
	DenialForbidden        DenialKind = "FORBIDDEN"
)

// Decision is the result of a gate check. Either Authorized is true and
// Session is set, or Denial carries the failure kind.
type Decision struct {
	Authorized bool
	Session    *Session
	Denial     DenialKind
}

// Authorize is the pure role gate: no session means NOT_AUTHENTICATED, a
// session whose role is outside the allow-list means FORBIDDEN.
func Authorize(session *Session, allowed []Role) Decision {
	if session == nil {
		return Decision{Denial: DenialNotAuthenticated}
	}
	if !RoleIn(session.Role, allowed) {
		return Decision{Denial: DenialForbidden}
	}
	return Decision{Authorized: true, Session: session}
}

// OwnerOrManager authorizes the resource owner themselves, or anyone with a
// manager role. Used for per-resource checks outside conversations.
func OwnerOrManager(session *Session, ownerID int64) Decision {
	if session == nil {
		return Decision{Denial: DenialNotAuthenticated}
	}
	if session.UserID == ownerID || session.Role.IsManager() {
		return Decision{Authorized: true, Session: session}
	}
	return Decision{Denial: DenialForbidden}
}

// RoleGate builds chi middleware from the pure Authorize decision.
type RoleGate struct {
	logger *slog.Logger
}

func NewRoleGate(logger *slog.Logger) *RoleGate {
	return &RoleGate{logger: logger}
}

func (g *RoleGate) Require(allowed ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := SessionFromContext(r.Context())

			decision := Authorize(session, allowed)
			if decision.Authorized {
				next.ServeHTTP(w, r)
				return
			}

			switch decision.Denial {
			case DenialNotAuthenticated:
				g.logger.Warn("role gate: no session on request", "path", r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
			default:
				g.logger.WarnContext(r.Context(), "role gate: insufficient role",
					"user_id", session.UserID,
					"role", session.Role,
					"allowed_roles", allowed,
					"path", r.URL.Path)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
			}
		})
	}
}

func (g *RoleGate) RequireStaff() func(http.Handler) http.Handler {
	return g.Require(StaffRoles...)
}

func (g *RoleGate) RequireManager() func(http.Handler) http.Handler {
	return g.Require(ManagerRoles...)
}

func (g *RoleGate) RequireAdmin() func(http.Handler) http.Handler {
	return g.Require(RoleAdmin)
}
