// internal/app/store/bookings/bookingstore.go
package bookingstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fieldworks/turfhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound = errors.New("booking not found")
	ErrOverlap  = errors.New("the turf is already booked for this time")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bookings")}
}

// Create inserts a confirmed booking after checking for overlap. Intervals
// are half-open, so a booking ending exactly when another starts is fine.
// Run inside a transaction where available; the check-then-insert is not
// atomic on its own.
func (s *Store) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	overlap, err := s.HasOverlap(ctx, b.TurfID, b.StartTime, b.EndTime)
	if err != nil {
		return models.Booking{}, err
	}
	if overlap {
		return models.Booking{}, ErrOverlap
	}

	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.Status = models.BookingConfirmed
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// HasOverlap reports whether any confirmed booking of the turf intersects
// [start, end).
func (s *Store) HasOverlap(ctx context.Context, turfID primitive.ObjectID, start, end time.Time) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"turf_id":    turfID,
		"status":     models.BookingConfirmed,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Booking, error) {
	var b models.Booking
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return models.Booking{}, ErrNotFound
	}
	if err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// Cancel marks a booking cancelled, freeing its slot.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     models.BookingCancelled,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns a user's bookings, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Booking, int64, error) {
	filter := bson.M{"user_id": userID}
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	var bookings []models.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListByTurf returns a turf's confirmed bookings inside a window, for
// availability displays.
func (s *Store) ListByTurf(ctx context.Context, turfID primitive.ObjectID, from, to time.Time) ([]models.Booking, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"turf_id":    turfID,
		"status":     models.BookingConfirmed,
		"start_time": bson.M{"$lt": to},
		"end_time":   bson.M{"$gt": from},
	}, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var bookings []models.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// DeleteByTurfIDs removes all bookings of the given turfs (cascade delete).
func (s *Store) DeleteByTurfIDs(ctx context.Context, turfIDs []primitive.ObjectID) (int64, error) {
	if len(turfIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"turf_id": bson.M{"$in": turfIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
