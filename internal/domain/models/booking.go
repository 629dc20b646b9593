// internal/domain/models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses.
const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking reserves one turf for a half-open time interval [StartTime, EndTime).
// No two confirmed bookings for the same turf may overlap.
type Booking struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	TurfID    primitive.ObjectID `bson:"turf_id" json:"turf_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	StartTime time.Time          `bson:"start_time" json:"start_time"`
	EndTime   time.Time          `bson:"end_time" json:"end_time"`
	Price     float64            `bson:"price" json:"price"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
