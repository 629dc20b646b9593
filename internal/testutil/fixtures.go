package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldworks/turfhub/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates a test organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Facilities: []string{"parking", "washroom"},
		Location: models.Location{
			Point:   models.GeoPoint{Type: "Point", Coordinates: []float64{-92.33, 38.95}},
			Address: "123 Test Ave",
			City:    "Columbia",
			State:   "MO",
		},
		Images:    []models.Image{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateTurf creates a test turf under the given organization.
func (f *Fixtures) CreateTurf(ctx context.Context, orgID primitive.ObjectID, name string, basePrice float64) models.Turf {
	f.t.Helper()

	now := time.Now().UTC()
	turf := models.Turf{
		ID:             primitive.NewObjectID(),
		Name:           name,
		NameCI:         text.Fold(name),
		OrganizationID: orgID,
		Sports:         []string{"football"},
		BasePrice:      basePrice,
		TeamSize:       10,
		OperatingHours: []models.OperatingWindow{
			{Day: "monday", Open: "08:00", Close: "22:00"},
			{Day: "saturday", Open: "06:00", Close: "23:00"},
		},
		Images:    []models.Image{},
		ReviewIDs: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("turfs").InsertOne(ctx, turf); err != nil {
		f.t.Fatalf("failed to create test turf: %v", err)
	}
	return turf
}

// CreateUser creates a test user with the given email.
func (f *Fixtures) CreateUser(ctx context.Context, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:             primitive.NewObjectID(),
		FullName:       "Test User",
		FullNameCI:     text.Fold("Test User"),
		Email:          email,
		HashedPassword: "$2a$10$fixturehashfixturehashfixturehashfixtureha",
		ReviewIDs:      []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateReview creates a review linking the user and turf, including the
// back-references on both sides.
func (f *Fixtures) CreateReview(ctx context.Context, userID, turfID primitive.ObjectID, rating int) models.TurfReview {
	f.t.Helper()

	now := time.Now().UTC()
	review := models.TurfReview{
		ID:        primitive.NewObjectID(),
		TurfID:    turfID,
		UserID:    userID,
		Rating:    rating,
		Review:    "fixture review",
		Images:    []models.Image{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("turf_reviews").InsertOne(ctx, review); err != nil {
		f.t.Fatalf("failed to create test review: %v", err)
	}
	for coll, id := range map[string]primitive.ObjectID{"users": userID, "turfs": turfID} {
		_, err := f.db.Collection(coll).UpdateByID(ctx, id,
			bson.M{"$addToSet": bson.M{"review_ids": review.ID}})
		if err != nil {
			f.t.Fatalf("failed to add review back-reference on %s: %v", coll, err)
		}
	}
	return review
}

// CreateRole creates an organization-scoped role with the given permission ids.
func (f *Fixtures) CreateRole(ctx context.Context, orgID primitive.ObjectID, name string, permissionIDs []primitive.ObjectID) models.Role {
	f.t.Helper()

	now := time.Now().UTC()
	if permissionIDs == nil {
		permissionIDs = []primitive.ObjectID{}
	}
	role := models.Role{
		ID:            primitive.NewObjectID(),
		Name:          name,
		Scope:         models.ScopeOrganization,
		ScopeOrgID:    &orgID,
		PermissionIDs: permissionIDs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("roles").InsertOne(ctx, role); err != nil {
		f.t.Fatalf("failed to create test role: %v", err)
	}
	return role
}
