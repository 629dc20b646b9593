// internal/app/features/turfreviews/routes.go
package turfreviews

import (
	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/turfhub/internal/app/system/auth"
)

// Routes mounts the review endpoints (typically under /turf-review).
//
// The per-turf listing is public; everything touching the caller's own
// reviews requires sign-in. Ownership checks live in the service.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/turf/{turfID}", h.ServeListByTurf)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Get("/user/me", h.ServeListMine)
		pr.Put("/{reviewID}", h.HandleUpdate)
		pr.Delete("/{reviewID}", h.HandleDelete)
	})

	return r
}
