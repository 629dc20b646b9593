// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/authz"
)

// Routes mounts all organization routes under the base path (typically
// "/organizations" from bootstrap).
//
// Reads are public. Creating is open to any signed-in user; owner assignment
// is signed-in too, with the single-owner conflict enforced in the service.
// Update and delete require the matching org-scoped permission.
func Routes(h *Handler, checker *authz.Checker) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{orgID}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Post("/{orgID}/assign-owner", h.HandleAssignOwner)

		pr.With(checker.RequirePermission("orgID", "organization:update")).
			Put("/{orgID}", h.HandleUpdate)
		pr.With(checker.RequirePermission("orgID", "organization:delete")).
			Delete("/{orgID}", h.HandleDelete)
	})

	return r
}
