// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	authapifeature "github.com/fieldworks/turfhub/internal/app/features/authapi"
	bookingsfeature "github.com/fieldworks/turfhub/internal/app/features/bookings"
	healthfeature "github.com/fieldworks/turfhub/internal/app/features/health"
	organizationsfeature "github.com/fieldworks/turfhub/internal/app/features/organizations"
	rolesfeature "github.com/fieldworks/turfhub/internal/app/features/roles"
	turfreviewsfeature "github.com/fieldworks/turfhub/internal/app/features/turfreviews"
	turfsfeature "github.com/fieldworks/turfhub/internal/app/features/turfs"
	orgservice "github.com/fieldworks/turfhub/internal/app/services/organizations"
	reviewservice "github.com/fieldworks/turfhub/internal/app/services/reviews"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// TurfHub is a JSON API: the router applies CORS for browser clients and
// the bearer-token middleware globally, then mounts one feature router per
// area: health, auth, organizations, turfs, reviews, roles, and bookings.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.TurfHubMongoDatabase

	orgSvc := orgservice.New(db, deps.Runner, deps.Images, logger)
	reviewSvc := reviewservice.New(db, deps.Runner, deps.Images, logger)

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(appCfg.AllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Global auth middleware: a valid bearer token puts the session user
	// into the request context for auth.CurrentUser(r). Requests without a
	// token pass through; route groups enforce sign-in where needed.
	r.Use(deps.TokenSvc.LoadUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.TurfHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Registration, login, and password reset
	authHandler := authapifeature.NewHandler(db, deps.TokenSvc, deps.Mailer, appCfg.BaseURL, appCfg.SiteName, logger)
	r.Mount("/auth", authapifeature.Routes(authHandler))

	// Organization management
	orgHandler := organizationsfeature.NewHandler(db, orgSvc, deps.Images, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgHandler, deps.Checker))

	// Turf catalog: filtered listing, detail, and management
	turfHandler := turfsfeature.NewHandler(db, orgSvc, reviewSvc, deps.Checker, deps.Images, logger)
	r.Mount("/turfs", turfsfeature.Routes(turfHandler))

	// Turf reviews and rating summaries
	reviewHandler := turfreviewsfeature.NewHandler(reviewSvc, deps.Images, logger)
	r.Mount("/turf-review", turfreviewsfeature.Routes(reviewHandler))

	// Roles and permission assignment
	roleHandler := rolesfeature.NewHandler(db, deps.Checker, logger)
	r.Mount("/roles", rolesfeature.Routes(roleHandler))

	// Slot bookings
	bookingHandler := bookingsfeature.NewHandler(db, deps.Runner, logger)
	r.Mount("/bookings", bookingsfeature.Routes(bookingHandler))

	return r, nil
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
