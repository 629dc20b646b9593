// internal/app/features/turfs/routes.go
package turfs

import (
	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/turfhub/internal/app/system/auth"
)

// Routes mounts all turf routes under the base path (typically "/turfs").
//
// Reads (listing, view, review summary) are public. Mutations require a
// signed-in caller; the org-scoped permission check happens in the handlers
// because the organization id comes from the turf document or the form, not
// the URL.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{turfID}", h.ServeView)
	r.Get("/{turfID}/review-summary", h.ServeReviewSummary)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{turfID}", h.HandleUpdate)
		pr.Delete("/{turfID}", h.HandleDelete)
	})

	return r
}
