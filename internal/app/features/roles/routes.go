// internal/app/features/roles/routes.go
package roles

import (
	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/turfhub/internal/app/system/auth"
)

// Routes mounts the role endpoints (typically under /roles).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/permissions", h.ServePermissions)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Post("/assign", h.HandleAssign)
	})

	return r
}
