// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAssignment links a user to a role within one organization.
// A user holds at most one role per organization.
type RoleAssignment struct {
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	RoleID         primitive.ObjectID `bson:"role_id" json:"role_id"`
}

// User is an account on the platform.
type User struct {
	ID             primitive.ObjectID   `bson:"_id" json:"id"`
	FullName       string               `bson:"full_name" json:"full_name"`
	FullNameCI     string               `bson:"full_name_ci" json:"-"`
	Email          string               `bson:"email" json:"email"`
	HashedPassword string               `bson:"hashed_password" json:"-"`
	Assignments    []RoleAssignment     `bson:"assignments,omitempty" json:"assignments,omitempty"`
	ReviewIDs      []primitive.ObjectID `bson:"review_ids" json:"review_ids"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}
