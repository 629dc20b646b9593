// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	permissionstore "github.com/fieldworks/turfhub/internal/app/store/permissions"
	rolestore "github.com/fieldworks/turfhub/internal/app/store/roles"
	userstore "github.com/fieldworks/turfhub/internal/app/store/users"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

// platformAdminRoleName is the global role granted to the configured
// admin account on startup.
const platformAdminRoleName = "Platform Admin"

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. TurfHub
// uses it to grant the configured admin account the global permissions, so
// a fresh deployment has someone who can create organizations.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}
	return ensurePlatformAdmin(ctx, deps, appCfg.AdminEmail, logger)
}

// ensurePlatformAdmin gives the user with the given email the global
// platform-admin role, creating the role on first run. Global assignments
// use the zero ObjectID as their organization, which is how the permission
// checker recognizes them.
//
// The account must already exist; registration sets the password, and
// promoting a missing user would leave a credential-less account behind.
// Rerun is cheap, so a later restart picks the user up.
func ensurePlatformAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	users := userstore.New(deps.TurfHubMongoDatabase)
	roles := rolestore.New(deps.TurfHubMongoDatabase)
	perms := permissionstore.New(deps.TurfHubMongoDatabase)

	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			logger.Warn("admin account not registered yet; global permissions not granted",
				zap.String("email", email))
			return nil
		}
		return fmt.Errorf("look up admin account: %w", err)
	}

	globalScope := primitive.NilObjectID
	role, err := roles.GetByNameInOrg(ctx, globalScope, platformAdminRoleName)
	if errors.Is(err, rolestore.ErrNotFound) {
		permIDs, idErr := perms.IDsByNames(ctx, models.GlobalPermissions)
		if idErr != nil {
			return fmt.Errorf("resolve global permissions: %w", idErr)
		}
		role, err = roles.Create(ctx, models.Role{
			Name:          platformAdminRoleName,
			Scope:         models.ScopeGlobal,
			ScopeOrgID:    &globalScope,
			PermissionIDs: permIDs,
		})
		if errors.Is(err, rolestore.ErrDuplicateRole) {
			// Lost a race with a concurrent boot; the existing role wins.
			role, err = roles.GetByNameInOrg(ctx, globalScope, platformAdminRoleName)
		}
	}
	if err != nil {
		return fmt.Errorf("ensure platform admin role: %w", err)
	}

	for _, a := range user.Assignments {
		if a.OrganizationID == globalScope && a.RoleID == role.ID {
			return nil
		}
	}
	if err := users.UpsertAssignment(ctx, user.ID, models.RoleAssignment{
		OrganizationID: globalScope,
		RoleID:         role.ID,
	}); err != nil {
		return fmt.Errorf("assign platform admin role: %w", err)
	}
	logger.Info("granted global platform permissions", zap.String("email", email))
	return nil
}
