// internal/domain/models/permission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission is a named action with a scope tag ("global" or "organization").
type Permission struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Scope     string             `bson:"scope" json:"scope"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Organization-scoped actions the platform knows about. Seeded at startup;
// the owner role is created with all of these.
var OrganizationPermissions = []string{
	"organization:update",
	"organization:delete",
	"turf:create",
	"turf:update",
	"turf:delete",
	"role:create",
	"role:assign",
}

// Global actions. Held by platform administrators.
var GlobalPermissions = []string{
	"organization:create",
	"permission:manage",
}
