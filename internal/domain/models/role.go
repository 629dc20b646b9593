// internal/domain/models/role.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role scopes.
const (
	ScopeGlobal       = "global"
	ScopeOrganization = "organization"
)

// OwnerRoleName is the role created when a user is assigned as an
// organization's owner.
const OwnerRoleName = "Organization Owner"

// Role is a named bundle of permissions, either global or scoped to a
// single organization via ScopeOrgID.
type Role struct {
	ID            primitive.ObjectID   `bson:"_id" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Scope         string               `bson:"scope" json:"scope"`
	ScopeOrgID    *primitive.ObjectID  `bson:"scope_org_id,omitempty" json:"scope_org_id,omitempty"`
	PermissionIDs []primitive.ObjectID `bson:"permission_ids" json:"permission_ids"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}
