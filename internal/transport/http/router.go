package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/geocell/team-service/internal/transport/http/handler"
	customMiddleware "github.com/geocell/team-service/internal/transport/http/middleware"
)

// RouterConfig содержит конфигурацию для роутера
type RouterConfig struct {
	TeamHandler   *handler.TeamHandler
	MemberHandler *handler.MemberHandler
	AuditHandler  *handler.AuditHandler
	HealthHandler *handler.HealthHandler
	AdminToken    string
}

// NewRouter создает и настраивает роутер
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Health check
	r.Get("/health", cfg.HealthHandler.Check)

	// Teams
	r.Route("/teams", func(r chi.Router) {
		r.Get("/", cfg.TeamHandler.ListTeams)
		r.With(customMiddleware.Actor).Post("/", cfg.TeamHandler.CreateTeam)

		r.Route("/{teamID}", func(r chi.Router) {
			r.Get("/", cfg.TeamHandler.GetTeam)
			r.With(customMiddleware.Actor).Patch("/", cfg.TeamHandler.UpdateTeam)
			r.With(customMiddleware.Actor).Delete("/", cfg.TeamHandler.DeleteTeam)

			r.Get("/settings", cfg.TeamHandler.GetTeamSettings)
			r.With(customMiddleware.Actor).Put("/settings", cfg.TeamHandler.UpdateTeamSettings)

			r.With(customMiddleware.Actor).Post("/ownership/transfer", cfg.MemberHandler.TransferOwnership)

			// Members
			r.Route("/members", func(r chi.Router) {
				r.Get("/", cfg.MemberHandler.ListMembers)
				r.With(customMiddleware.Actor).Post("/", cfg.MemberHandler.AddMember)

				r.Route("/{userID}", func(r chi.Router) {
					r.Get("/", cfg.MemberHandler.GetMember)
					r.With(customMiddleware.Actor).Delete("/", cfg.MemberHandler.RemoveMember)

					r.With(customMiddleware.Actor).Put("/role", cfg.MemberHandler.UpdateRole)
					r.With(customMiddleware.Actor).Post("/roles", cfg.MemberHandler.AddAdditionalRole)
					r.With(customMiddleware.Actor).Delete("/roles/{role}", cfg.MemberHandler.RemoveAdditionalRole)

					r.With(customMiddleware.Actor).Post("/permissions", cfg.MemberHandler.AddPermission)
					r.With(customMiddleware.Actor).Delete("/permissions/{permission}", cfg.MemberHandler.RemovePermission)

					r.With(customMiddleware.Actor).Post("/activate", cfg.MemberHandler.ActivateMember)
					r.With(customMiddleware.Actor).Post("/deactivate", cfg.MemberHandler.DeactivateMember)

					r.Get("/is-admin", cfg.MemberHandler.CheckAdmin)
					r.Get("/is-member", cfg.MemberHandler.CheckMember)
				})
			})
		})
	})

	// Members (вне контекста команды)
	r.Get("/members", cfg.MemberHandler.SearchMembers)
	r.Post("/members/{userID}/login", cfg.MemberHandler.RecordLogin)

	// Audit
	r.Get("/audit", cfg.AuditHandler.Query)
	r.Get("/audit/count", cfg.AuditHandler.Count)
	r.With(customMiddleware.AdminAuth(cfg.AdminToken)).Post("/audit/purge", cfg.AuditHandler.Purge)

	return r
}
