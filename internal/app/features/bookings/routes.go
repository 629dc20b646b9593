// internal/app/features/bookings/routes.go
package bookings

import (
	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/turfhub/internal/app/system/auth"
)

// Routes mounts the booking endpoints (typically under /bookings).
// Availability per turf is public; everything else requires sign-in.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/turf/{turfID}", h.ServeListByTurf)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Get("/me", h.ServeListMine)
		pr.Post("/{bookingID}/cancel", h.HandleCancel)
	})

	return r
}
