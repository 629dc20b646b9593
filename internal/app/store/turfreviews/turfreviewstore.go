// internal/app/store/turfreviews/turfreviewstore.go
package turfreviewstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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
	// ErrDuplicateReview fires on the unique (user_id, turf_id) index.
	ErrDuplicateReview = errors.New("you have already reviewed this turf")
	ErrNotFound        = errors.New("review not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("turf_reviews")}
}

func (s *Store) Create(ctx context.Context, review models.TurfReview) (models.TurfReview, error) {
	now := time.Now().UTC()
	review.ID = primitive.NewObjectID()
	if review.Images == nil {
		review.Images = []models.Image{}
	}
	review.CreatedAt = now
	review.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, review)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.TurfReview{}, ErrDuplicateReview
		}
		return models.TurfReview{}, err
	}
	return review, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.TurfReview, error) {
	var review models.TurfReview
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return models.TurfReview{}, ErrNotFound
	}
	if err != nil {
		return models.TurfReview{}, err
	}
	return review, nil
}

// GetByUserAndTurf returns the one review a user wrote for a turf, if any.
func (s *Store) GetByUserAndTurf(ctx context.Context, userID, turfID primitive.ObjectID) (models.TurfReview, error) {
	var review models.TurfReview
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "turf_id": turfID}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return models.TurfReview{}, ErrNotFound
	}
	if err != nil {
		return models.TurfReview{}, err
	}
	return review, nil
}

// Update changes the rating, text, or images of an existing review.
// Only non-zero fields are written.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, rating int, text *string, images []models.Image) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if rating != 0 {
		set["rating"] = rating
	}
	if text != nil {
		set["review"] = *text
	}
	if images != nil {
		set["images"] = images
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a review by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByTurfIDs removes all reviews of the given turfs (cascade delete).
// Returns the deleted reviews so callers can fix user back-references and
// release hosted images.
func (s *Store) DeleteByTurfIDs(ctx context.Context, turfIDs []primitive.ObjectID) ([]models.TurfReview, error) {
	if len(turfIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{"turf_id": bson.M{"$in": turfIDs}}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var reviews []models.TurfReview
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	if _, err := s.c.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ListByUser returns a user's reviews, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.TurfReview, int64, error) {
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
	var reviews []models.TurfReview
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// Count returns the number of reviews matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
