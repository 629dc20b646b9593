package organizationstore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	organizationstore "github.com/fieldworks/turfhub/internal/app/store/organizations"
	"github.com/fieldworks/turfhub/internal/app/system/indexes"
	"github.com/fieldworks/turfhub/internal/domain/models"
	"github.com/fieldworks/turfhub/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := models.Organization{
		Name:       "Riverside Sports Arena",
		Facilities: []string{"parking", "floodlights"},
		Location: models.Location{
			Point: models.GeoPoint{Type: "Point", Coordinates: []float64{-92.33, 38.95}},
			City:  "Columbia",
			State: "MO",
		},
	}

	created, err := store.Create(ctx, org)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if created.OwnerID != nil {
		t.Error("new organization should have no owner")
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	if _, err := store.Create(ctx, models.Organization{Name: "Greenfield Turf Club"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same name with different casing collides on the folded name.
	_, err := store.Create(ctx, models.Organization{Name: "GREENFIELD TURF CLUB"})
	if !errors.Is(err, organizationstore.ErrDuplicateOrganization) {
		t.Errorf("expected ErrDuplicateOrganization, got %v", err)
	}
}

func TestStore_Update_RefoldsName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Old Name")

	if err := store.Update(ctx, org.ID, bson.M{"name": "New Name"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("Name: got %q, want %q", got.Name, "New Name")
	}
	if got.NameCI != "new name" {
		t.Errorf("NameCI: got %q, want %q", got.NameCI, "new name")
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Update(ctx, primitive.NewObjectID(), bson.M{"city": "Nowhere"})
	if !errors.Is(err, organizationstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Owned Org")
	user := fixtures.CreateUser(ctx, "owner@example.com")

	if err := store.SetOwner(ctx, org.ID, user.ID); err != nil {
		t.Fatalf("SetOwner failed: %v", err)
	}

	got, err := store.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.OwnerID == nil || *got.OwnerID != user.ID {
		t.Errorf("OwnerID: got %v, want %v", got.OwnerID, user.ID)
	}
}

func TestStore_NameExistsForOther(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Unique Org")

	// The organization's own name does not count as a collision.
	exists, err := store.NameExistsForOther(ctx, org.NameCI, org.ID)
	if err != nil {
		t.Fatalf("NameExistsForOther failed: %v", err)
	}
	if exists {
		t.Error("did not expect a collision with the organization itself")
	}

	exists, err = store.NameExistsForOther(ctx, org.NameCI, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("NameExistsForOther failed: %v", err)
	}
	if !exists {
		t.Error("expected a collision for a different organization")
	}
}
