// Package roles serves the role and permission surface: the permission
// catalog, creation of org-scoped roles, and role assignment.
package roles

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	permissionstore "github.com/fieldworks/turfhub/internal/app/store/permissions"
	rolestore "github.com/fieldworks/turfhub/internal/app/store/roles"
	userstore "github.com/fieldworks/turfhub/internal/app/store/users"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/authz"
	"github.com/fieldworks/turfhub/internal/app/system/httpjson"
	"github.com/fieldworks/turfhub/internal/app/system/sanitize"
	"github.com/fieldworks/turfhub/internal/app/system/timeouts"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

// Handler holds the roles feature's dependencies.
type Handler struct {
	Roles   *rolestore.Store
	Perms   *permissionstore.Store
	Users   *userstore.Store
	Checker *authz.Checker
	Log     *zap.Logger
}

// NewHandler constructs the roles Handler.
func NewHandler(db *mongo.Database, checker *authz.Checker, logger *zap.Logger) *Handler {
	return &Handler{
		Roles:   rolestore.New(db),
		Perms:   permissionstore.New(db),
		Users:   userstore.New(db),
		Checker: checker,
		Log:     logger,
	}
}

// ServePermissions returns the seeded permission catalog, grouped by scope.
//
// GET /roles/permissions → 200
func (h *Handler) ServePermissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	orgScoped, err := h.Perms.ListByScope(ctx, models.ScopeOrganization)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("list permissions", err))
		return
	}
	global, err := h.Perms.ListByScope(ctx, models.ScopeGlobal)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("list permissions", err))
		return
	}
	httpjson.OK(w, map[string]any{
		"organization": orgScoped,
		"global":       global,
	})
}

// HandleCreate creates an org-scoped role. Caller needs role:create in the
// target organization.
//
// POST /roles {name, organization_id, permissions} → 201/403/409
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req struct {
		Name           string   `json:"name"`
		OrganizationID string   `json:"organization_id"`
		Permissions    []string `json:"permissions"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	name := sanitize.Text(req.Name)
	if name == "" {
		httpjson.Fail(w, http.StatusBadRequest, "name is required")
		return
	}
	orgID, err := primitive.ObjectIDFromHex(req.OrganizationID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "organization_id is not a valid id")
		return
	}
	if !h.allow(w, r, orgID, "role:create") {
		return
	}

	permIDs, err := h.Perms.IDsByNames(ctx, req.Permissions)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	role, err := h.Roles.Create(ctx, models.Role{
		Name:          name,
		Scope:         models.ScopeOrganization,
		ScopeOrgID:    &orgID,
		PermissionIDs: permIDs,
	})
	if err != nil {
		if errors.Is(err, rolestore.ErrDuplicateRole) {
			httpjson.Fail(w, http.StatusConflict, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("create role", err))
		return
	}
	httpjson.Created(w, role)
}

// ServeList returns the roles scoped to one organization.
//
// GET /roles?organization_id= → 200
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	orgID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("organization_id"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "organization_id is not a valid id")
		return
	}
	roles, err := h.Roles.ListByOrg(ctx, orgID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("list roles", err))
		return
	}
	if roles == nil {
		roles = []models.Role{}
	}
	httpjson.OK(w, roles)
}

// HandleAssign gives a user a role within its organization. Caller needs
// role:assign there. Replaces any prior assignment the user held in that
// organization.
//
// POST /roles/assign {user_id, role_id} → 200/403/404
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var req struct {
		UserID string `json:"user_id"`
		RoleID string `json:"role_id"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "user_id is not a valid id")
		return
	}
	roleID, err := primitive.ObjectIDFromHex(req.RoleID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "role_id is not a valid id")
		return
	}

	role, err := h.Roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, rolestore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("load role", err))
		return
	}
	if role.Scope != models.ScopeOrganization || role.ScopeOrgID == nil {
		httpjson.Fail(w, http.StatusBadRequest, "only organization-scoped roles can be assigned here")
		return
	}
	if !h.allow(w, r, *role.ScopeOrgID, "role:assign") {
		return
	}

	if err := h.Users.UpsertAssignment(ctx, userID, models.RoleAssignment{
		OrganizationID: *role.ScopeOrgID,
		RoleID:         role.ID,
	}); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("assign role", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": "role assigned"})
}

func (h *Handler) allow(w http.ResponseWriter, r *http.Request, orgID primitive.ObjectID, action string) bool {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
		return false
	}
	allowed, err := h.Checker.Can(r.Context(), su.ID, orgID, action)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("permission check failed", err))
		return false
	}
	if !allowed {
		httpjson.Fail(w, http.StatusForbidden, "permission denied")
		return false
	}
	return true
}
