package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/agency-portal/internal/analytics"
	"github.com/frahmantamala/agency-portal/internal/auth"
	"github.com/frahmantamala/agency-portal/internal/lead"
	"github.com/frahmantamala/agency-portal/internal/messaging"
	"github.com/frahmantamala/agency-portal/internal/project"
	"github.com/frahmantamala/agency-portal/internal/transport/middleware"
	"github.com/frahmantamala/agency-portal/internal/transport/swagger"
	"github.com/frahmantamala/agency-portal/internal/user"
	"github.com/go-chi/chi"
)

// Handlers bundles everything the router mounts. Nil handlers are skipped
// so partial wiring in tests stays easy.
type Handlers struct {
	Auth      *auth.Handler
	User      *user.Handler
	Project   *project.Handler
	Messaging *messaging.Handler
	Lead      *lead.Handler
	Analytics *analytics.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	gate := auth.NewRoleGate(logger)

	router.Use(middleware.CORS(strings.Split(allowedOrigins, ",")))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI document and swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/access-code", h.Auth.AccessCodeLogin)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		// Public marketing endpoints: lead capture and analytics ingest.
		if h.Lead != nil {
			r.Post("/leads", h.Lead.Submit)
		}
		if h.Analytics != nil {
			r.Post("/analytics/events", h.Analytics.Ingest)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.Messaging != nil {
				pr.Route("/conversations", func(cr chi.Router) {
					cr.Get("/", h.Messaging.ListConversations)
					cr.Get("/{id}/messages", h.Messaging.GetMessages)
					cr.Post("/{id}/messages", h.Messaging.SendMessage)
				})
				pr.Get("/messages/unread-count", h.Messaging.UnreadCount)
			}

			if h.Project != nil {
				pr.Route("/projects", func(prj chi.Router) {
					prj.Get("/", h.Project.List)
					prj.Get("/{id}", h.Project.Get)
					prj.Get("/{id}/milestones", h.Project.ListMilestones)
					prj.Get("/{id}/change-requests", h.Project.ListChangeRequests)
					prj.Post("/{id}/change-requests", h.Project.CreateChangeRequest)

					prj.Group(func(mr chi.Router) {
						mr.Use(gate.RequireManager())
						mr.Post("/", h.Project.Create)
						mr.Patch("/{id}", h.Project.Update)
						mr.Post("/{id}/milestones", h.Project.CreateMilestone)
						mr.Patch("/{id}/milestones/{milestoneID}", h.Project.UpdateMilestone)
						mr.Delete("/{id}/milestones/{milestoneID}", h.Project.DeleteMilestone)
						mr.Patch("/{id}/change-requests/{requestID}", h.Project.DecideChangeRequest)
					})

					prj.Group(func(ar chi.Router) {
						ar.Use(gate.RequireAdmin())
						ar.Delete("/{id}", h.Project.Delete)
					})
				})
			}

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Group(func(sr chi.Router) {
						sr.Use(gate.RequireStaff())
						sr.Get("/", h.User.List)
						sr.Get("/{id}", h.User.Get)
					})

					ur.Group(func(ar chi.Router) {
						ar.Use(gate.RequireAdmin())
						ar.Post("/staff", h.User.CreateStaff)
						ar.Post("/clients", h.User.CreateClient)
						ar.Patch("/{id}", h.User.Update)
						ar.Post("/{id}/access-code", h.User.RegenerateAccessCode)
						ar.Post("/{id}/deactivate", h.User.Deactivate)
						ar.Delete("/{id}", h.User.Delete)
					})
				})
			}

			if h.Lead != nil {
				pr.Group(func(sr chi.Router) {
					sr.Use(gate.RequireStaff())
					sr.Get("/leads", h.Lead.List)
				})
				pr.Group(func(mr chi.Router) {
					mr.Use(gate.RequireManager())
					mr.Patch("/leads/{id}", h.Lead.UpdateStatus)
				})
			}

			if h.Analytics != nil {
				pr.Group(func(sr chi.Router) {
					sr.Use(gate.RequireStaff())
					sr.Get("/analytics/summary", h.Analytics.Summary)
				})
			}
		})
	})
}
