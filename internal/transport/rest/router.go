package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/company-management/internal/auth"
	"github.com/frahmantamala/company-management/internal/branch"
	"github.com/frahmantamala/company-management/internal/company"
	"github.com/frahmantamala/company-management/internal/identity"
	"github.com/frahmantamala/company-management/internal/transport/middleware"
	"github.com/frahmantamala/company-management/internal/transport/swagger"
	"github.com/frahmantamala/company-management/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, companyHandler *company.Handler, branchHandler *branch.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
			sr.Post("/logout", authHandler.Logout)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			// Current user
			pr.Get("/users/me", userHandler.GetCurrentUser)

			// Admin-only user management
			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.RequireRole(identity.RoleAdmin))
				ar.Post("/users/assignments", userHandler.ApplyAssignment)
				ar.Put("/users/{id}/permissions", userHandler.UpdatePermissions)
			})

			// Company lifecycle routes (admin owners)
			pr.Route("/companies", func(cr chi.Router) {
				cr.Use(middleware.RequireRole(identity.RoleAdmin))

				cr.Post("/", companyHandler.CreateCompany)
				cr.Get("/", companyHandler.ListCompanies)
				cr.Get("/name-availability", companyHandler.CheckNameAvailability)
				cr.Get("/{id}", companyHandler.GetCompany)
				cr.Patch("/{id}", companyHandler.UpdateCompany)
				cr.Post("/{id}/archive", companyHandler.ArchiveCompany)
				cr.Post("/{id}/reactivate", companyHandler.ReactivateCompany)
				cr.Delete("/{id}", companyHandler.DeleteCompany)

				cr.Post("/{companyID}/branches", branchHandler.CreateBranch)
				cr.Get("/{companyID}/branches", branchHandler.ListBranches)
			})

			// GetBranchInfo evaluates role, branch access, then
			// permission inside the service. A RequirePermission
			// middleware here would consult the matrix before branch
			// access, turning a branch mismatch into a permission
			// denial, so the route installs no permission middleware.
			pr.Route("/branches", func(br chi.Router) {
				br.Get("/{id}", branchHandler.GetBranchInfo)
				br.Group(func(abr chi.Router) {
					abr.Use(middleware.RequireRole(identity.RoleAdmin))
					abr.Post("/{id}/deactivate", branchHandler.DeactivateBranch)
				})
			})
		})
	})
}
