// internal/app/features/authapi/routes.go
package authapi

import "github.com/go-chi/chi/v5"

// Routes mounts the account endpoints (typically under /auth).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/forgot-password", h.HandleForgotPassword)
	r.Post("/reset-password", h.HandleResetPassword)
	return r
}
