// internal/domain/models/turfreview.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating bounds for turf reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// TurfReview is one user's review of one turf. A unique index on
// (user_id, turf_id) enforces at most one review per pair.
type TurfReview struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	TurfID    primitive.ObjectID `bson:"turf_id" json:"turf_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Rating    int                `bson:"rating" json:"rating"`
	Review    string             `bson:"review,omitempty" json:"review,omitempty"`
	Images    []Image            `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
