// internal/domain/models/turf.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OperatingWindow is one open interval on one day of the week.
// Day is the lowercase English weekday ("monday" .. "sunday");
// Open/Close are 24h "HH:MM" strings compared lexicographically.
type OperatingWindow struct {
	Day   string `bson:"day" json:"day"`
	Open  string `bson:"open" json:"open"`
	Close string `bson:"close" json:"close"`
}

// Turf is a bookable sports facility belonging to an organization.
type Turf struct {
	ID             primitive.ObjectID   `bson:"_id" json:"id"`
	Name           string               `bson:"name" json:"name"`
	NameCI         string               `bson:"name_ci" json:"-"`
	OrganizationID primitive.ObjectID   `bson:"organization_id" json:"organization_id"`
	Sports         []string             `bson:"sports" json:"sports"`
	BasePrice      float64              `bson:"base_price" json:"base_price"`
	TeamSize       int                  `bson:"team_size" json:"team_size"`
	OperatingHours []OperatingWindow    `bson:"operating_hours" json:"operating_hours"`
	Images         []Image              `bson:"images" json:"images"`
	ReviewIDs      []primitive.ObjectID `bson:"review_ids" json:"review_ids"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}
