// Package authz resolves whether a user may perform a named action, either
// globally or within one organization.
//
// Resolution walks the user's role assignments: the assignment for the target
// organization names a role, the role names permissions, and the action must
// appear among them. Global actions use an assignment whose organization id is
// the zero ObjectID.
package authz

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/httpjson"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

// UserSource loads users for assignment lookups.
type UserSource interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RoleSource loads roles referenced by assignments.
type RoleSource interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error)
}

// PermissionSource resolves permission ids to action names.
type PermissionSource interface {
	NamesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]string, error)
}

// Checker answers permission questions against the stores.
type Checker struct {
	users UserSource
	roles RoleSource
	perms PermissionSource
	log   *zap.Logger
}

// NewChecker wires a Checker over the given sources.
func NewChecker(users UserSource, roles RoleSource, perms PermissionSource, log *zap.Logger) *Checker {
	return &Checker{users: users, roles: roles, perms: perms, log: log}
}

// Can reports whether the user may perform action within the organization.
// Pass primitive.NilObjectID as orgID to ask about a global action.
func (c *Checker) Can(ctx context.Context, userID, orgID primitive.ObjectID, action string) (bool, error) {
	u, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, a := range u.Assignments {
		if a.OrganizationID != orgID {
			continue
		}
		role, err := c.roles.FindByID(ctx, a.RoleID)
		if err != nil {
			// A dangling role id should not take down the whole check.
			if c.log != nil {
				c.log.Warn("role lookup failed during permission check",
					zap.String("role_id", a.RoleID.Hex()), zap.Error(err))
			}
			continue
		}
		names, err := c.perms.NamesByIDs(ctx, role.PermissionIDs)
		if err != nil {
			return false, err
		}
		for _, n := range names {
			if n == action {
				return true, nil
			}
		}
	}
	return false, nil
}

// CanGlobal reports whether the user holds the global action.
func (c *Checker) CanGlobal(ctx context.Context, userID primitive.ObjectID, action string) (bool, error) {
	return c.Can(ctx, userID, primitive.NilObjectID, action)
}

// RequirePermission gates a route on an organization-scoped action. The
// organization id is read from the chi route parameter orgParam. Must be
// mounted inside auth.RequireSignedIn.
func (c *Checker) RequirePermission(orgParam, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			su, ok := auth.CurrentUser(r)
			if !ok {
				httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
				return
			}
			orgID, err := primitive.ObjectIDFromHex(chi.URLParam(r, orgParam))
			if err != nil {
				httpjson.Fail(w, http.StatusBadRequest, "invalid organization id")
				return
			}
			allowed, err := c.Can(r.Context(), su.ID, orgID, action)
			if err != nil {
				httpjson.Error(w, c.log, apperr.Internal("permission check failed", err))
				return
			}
			if !allowed {
				httpjson.Fail(w, http.StatusForbidden, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGlobal gates a route on a global action.
func (c *Checker) RequireGlobal(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			su, ok := auth.CurrentUser(r)
			if !ok {
				httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
				return
			}
			allowed, err := c.CanGlobal(r.Context(), su.ID, action)
			if err != nil {
				httpjson.Error(w, c.log, apperr.Internal("permission check failed", err))
				return
			}
			if !allowed {
				httpjson.Fail(w, http.StatusForbidden, "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
