// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoPoint is a GeoJSON Point as stored for 2dsphere queries.
// Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// Location combines the geocoded point with the human-readable address.
type Location struct {
	Point   GeoPoint `bson:"point" json:"point"`
	Address string   `bson:"address" json:"address"`
	City    string   `bson:"city" json:"city"`
	State   string   `bson:"state" json:"state"`
}

// Image is a hosted image: the public URL plus the object key needed to
// delete it from the image store later.
type Image struct {
	URL string `bson:"url" json:"url"`
	Key string `bson:"key" json:"key"`
}

// Organization is a tenant that owns turfs. Includes case/diacritic-folded
// fields for search/sort.
//
// Permissions maps an action name (e.g. "turf:update") to the role names
// allowed to perform it within this organization. An organization has at
// most one owner.
type Organization struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Name        string              `bson:"name" json:"name"`
	NameCI      string              `bson:"name_ci" json:"-"`
	Facilities  []string            `bson:"facilities" json:"facilities"`
	Location    Location            `bson:"location" json:"location"`
	Images      []Image             `bson:"images" json:"images"`
	OwnerID     *primitive.ObjectID `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	Permissions map[string][]string `bson:"permissions,omitempty" json:"permissions,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
