package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fieldworks/turfhub/internal/app/system/auth"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithUser attaches a signed-in user to the request, bypassing token
// verification. Use in handler tests behind RequireSignedIn.
func WithUser(r *http.Request, id primitive.ObjectID, email string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{ID: id, Email: email})
}
