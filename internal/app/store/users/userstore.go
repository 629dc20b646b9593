// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldworks/turfhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	ErrNotFound       = errors.New("user not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) Create(ctx context.Context, user models.User) (models.User, error) {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.FullNameCI = text.Fold(user.FullName)
	if user.ReviewIDs == nil {
		user.ReviewIDs = []primitive.ObjectID{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, user)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindByID adapts GetByID to the pointer shape permission checks expect.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.c.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// SetPassword replaces the stored password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hashed string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"hashed_password": hashed,
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertAssignment sets the user's role for one organization, replacing any
// previous assignment for the same organization.
func (s *Store) UpsertAssignment(ctx context.Context, userID primitive.ObjectID, a models.RoleAssignment) error {
	// Two steps: drop the old assignment for the org, then push the new one.
	// $pull and $push cannot target the same array in a single update.
	if _, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"assignments": bson.M{"organization_id": a.OrganizationID}},
	}); err != nil {
		return err
	}
	res, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"assignments": a},
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

// RemoveAssignment drops the user's role for one organization.
func (s *Store) RemoveAssignment(ctx context.Context, userID, orgID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"assignments": bson.M{"organization_id": orgID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// RemoveAssignmentsByOrg drops every user's role assignment for the
// organization in one update (cascade delete path).
func (s *Store) RemoveAssignmentsByOrg(ctx context.Context, orgID primitive.ObjectID) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{"assignments.organization_id": orgID},
		bson.M{"$pull": bson.M{"assignments": bson.M{"organization_id": orgID}}})
	return err
}

// AddReviewRef appends a review id to the user's back-reference list.
func (s *Store) AddReviewRef(ctx context.Context, userID, reviewID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$addToSet": bson.M{"review_ids": reviewID},
	})
	return err
}

// RemoveReviewRef removes a review id from the user's back-reference list.
func (s *Store) RemoveReviewRef(ctx context.Context, userID, reviewID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"review_ids": reviewID},
	})
	return err
}

// RemoveReviewRefs removes many review ids from their owning users in one
// update (cascade delete path).
func (s *Store) RemoveReviewRefs(ctx context.Context, reviewIDs []primitive.ObjectID) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"review_ids": bson.M{"$in": reviewIDs}},
		bson.M{"$pull": bson.M{"review_ids": bson.M{"$in": reviewIDs}}})
	return err
}

// ExistsByEmail checks whether an account exists for the email.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
