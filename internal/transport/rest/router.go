package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/org-directory/internal/audit"
	"github.com/frahmantamala/org-directory/internal/auth"
	"github.com/frahmantamala/org-directory/internal/department"
	"github.com/frahmantamala/org-directory/internal/importer"
	"github.com/frahmantamala/org-directory/internal/organisation"
	"github.com/frahmantamala/org-directory/internal/transport/middleware"
	"github.com/frahmantamala/org-directory/internal/transport/swagger"
	"github.com/frahmantamala/org-directory/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Organisation *organisation.Handler
	Department   *department.Handler
	Importer     *importer.Handler
	Audit        *audit.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// User creation is open to anonymous callers only while the
		// directory is empty; the service enforces that.
		r.Group(func(br chi.Router) {
			br.Use(h.Auth.OptionalAuthMiddleware)
			br.Post("/users", h.User.Create)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.Me)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.List)
				ur.Post("/import", h.Importer.Import)
				ur.Get("/{userID}", h.User.Get)
				ur.Patch("/{userID}", h.User.Update)
				ur.Delete("/{userID}", h.User.Delete)
				ur.Post("/{userID}/promote-org-admin", h.Auth.PromoteOrgAdmin)
			})

			pr.Route("/organisations", func(or chi.Router) {
				or.Post("/", h.Organisation.Create)
				or.Get("/", h.Organisation.List)
				or.Get("/{organisationID}", h.Organisation.Get)
				or.Patch("/{organisationID}", h.Organisation.Update)
				or.Delete("/{organisationID}", h.Organisation.Delete)
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Post("/", h.Department.Create)
				dr.Get("/", h.Department.List)
				dr.Get("/{departmentID}", h.Department.Get)
				dr.Patch("/{departmentID}", h.Department.Update)
				dr.Delete("/{departmentID}", h.Department.Delete)
				dr.Post("/{departmentID}/manager/{userID}", h.Department.AssignManager)
				dr.Delete("/{departmentID}/manager", h.Department.RemoveManager)
			})

			pr.Get("/logs", h.Audit.List)
		})
	})
}
