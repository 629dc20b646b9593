// internal/app/store/turfs/turfstore.go
package turfstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
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
	ErrDuplicateTurf = errors.New("this organization already has a turf with this name")
	ErrNotFound      = errors.New("turf not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("turfs")}
}

func (s *Store) Create(ctx context.Context, turf models.Turf) (models.Turf, error) {
	now := time.Now().UTC()
	turf.ID = primitive.NewObjectID()
	turf.NameCI = text.Fold(turf.Name)
	if turf.Sports == nil {
		turf.Sports = []string{}
	}
	if turf.Images == nil {
		turf.Images = []models.Image{}
	}
	if turf.ReviewIDs == nil {
		turf.ReviewIDs = []primitive.ObjectID{}
	}
	turf.CreatedAt = now
	turf.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, turf)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Turf{}, ErrDuplicateTurf
		}
		return models.Turf{}, err
	}
	return turf, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Turf, error) {
	var turf models.Turf
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&turf)
	if err == mongo.ErrNoDocuments {
		return models.Turf{}, ErrNotFound
	}
	if err != nil {
		return models.Turf{}, err
	}
	return turf, nil
}

// ListByOrganization returns all turfs belonging to one organization.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]models.Turf, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var turfs []models.Turf
	if err := cur.All(ctx, &turfs); err != nil {
		return nil, err
	}
	return turfs, nil
}

// Update applies a caller-built $set document and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	if name, ok := set["name"].(string); ok {
		set["name_ci"] = text.Fold(name)
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateTurf
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddImages appends stored images to the turf.
func (s *Store) AddImages(ctx context.Context, id primitive.ObjectID, images []models.Image) error {
	if len(images) == 0 {
		return nil
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"images": bson.M{"$each": images}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddReviewRef appends a review id to the turf's back-reference list.
func (s *Store) AddReviewRef(ctx context.Context, turfID, reviewID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, turfID, bson.M{
		"$addToSet": bson.M{"review_ids": reviewID},
	})
	return err
}

// RemoveReviewRef removes a review id from the turf's back-reference list.
func (s *Store) RemoveReviewRef(ctx context.Context, turfID, reviewID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, turfID, bson.M{
		"$pull": bson.M{"review_ids": reviewID},
	})
	return err
}

// Delete removes a turf by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByOrganization removes every turf of an organization (cascade delete).
// Returns the ids of the deleted turfs so callers can clean up dependents.
func (s *Store) DeleteByOrganization(ctx context.Context, orgID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if _, err := s.c.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}

// NameExistsForOther checks if the organization already has another turf with
// the folded name.
func (s *Store) NameExistsForOther(ctx context.Context, orgID primitive.ObjectID, nameCI string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"organization_id": orgID,
		"name_ci":         nameCI,
		"_id":             bson.M{"$ne": excludeID},
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Find returns turfs matching the given filter with optional find options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Turf, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var turfs []models.Turf
	if err := cur.All(ctx, &turfs); err != nil {
		return nil, err
	}
	return turfs, nil
}

// Count returns the number of turfs matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
