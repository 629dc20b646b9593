package orgservice_test

import (
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	orgservice "github.com/fieldworks/turfhub/internal/app/services/organizations"
	permissionstore "github.com/fieldworks/turfhub/internal/app/store/permissions"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/txn"
	"github.com/fieldworks/turfhub/internal/domain/models"
	"github.com/fieldworks/turfhub/internal/testutil"
)

func newTestService(t *testing.T) (*orgservice.Service, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	runner := txn.NewRunner(db.Client(), logger)
	svc := orgservice.New(db, runner, nil, logger)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := permissionstore.New(db).Seed(ctx); err != nil {
		t.Fatalf("seed permissions: %v", err)
	}
	return svc, testutil.NewFixtures(t, db)
}

func TestAssignOwner(t *testing.T) {
	svc, fixtures := newTestService(t)
	db := fixtures.DB()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Ownable Org")
	owner := fixtures.CreateUser(ctx, "owner@example.com")

	if err := svc.AssignOwner(ctx, org.ID, owner.ID); err != nil {
		t.Fatalf("AssignOwner failed: %v", err)
	}

	var gotOrg models.Organization
	if err := db.Collection("organizations").FindOne(ctx, bson.M{"_id": org.ID}).Decode(&gotOrg); err != nil {
		t.Fatalf("reload organization: %v", err)
	}
	if gotOrg.OwnerID == nil || *gotOrg.OwnerID != owner.ID {
		t.Errorf("OwnerID: got %v, want %v", gotOrg.OwnerID, owner.ID)
	}

	// The owner role carries every organization-scoped permission.
	var role models.Role
	err := db.Collection("roles").FindOne(ctx, bson.M{
		"name":         models.OwnerRoleName,
		"scope_org_id": org.ID,
	}).Decode(&role)
	if err != nil {
		t.Fatalf("expected an owner role for the organization: %v", err)
	}
	if len(role.PermissionIDs) != len(models.OrganizationPermissions) {
		t.Errorf("owner role permissions: got %d, want %d",
			len(role.PermissionIDs), len(models.OrganizationPermissions))
	}

	var gotUser models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": owner.ID}).Decode(&gotUser); err != nil {
		t.Fatalf("reload user: %v", err)
	}
	found := false
	for _, a := range gotUser.Assignments {
		if a.OrganizationID == org.ID && a.RoleID == role.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected the owner to hold the owner role assignment")
	}
}

func TestAssignOwner_SecondOwnerConflicts(t *testing.T) {
	svc, fixtures := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Contested Org")
	first := fixtures.CreateUser(ctx, "first@example.com")
	second := fixtures.CreateUser(ctx, "second@example.com")

	if err := svc.AssignOwner(ctx, org.ID, first.ID); err != nil {
		t.Fatalf("AssignOwner failed: %v", err)
	}

	err := svc.AssignOwner(ctx, org.ID, second.ID)
	if apperr.StatusOf(err) != http.StatusConflict {
		t.Errorf("expected 409, got %d (%v)", apperr.StatusOf(err), err)
	}

	// The original owner is untouched.
	var gotOrg models.Organization
	if err := fixtures.DB().Collection("organizations").FindOne(ctx, bson.M{"_id": org.ID}).Decode(&gotOrg); err != nil {
		t.Fatalf("reload organization: %v", err)
	}
	if gotOrg.OwnerID == nil || *gotOrg.OwnerID != first.ID {
		t.Errorf("OwnerID: got %v, want %v", gotOrg.OwnerID, first.ID)
	}
}

func TestAssignOwner_UnknownOrg(t *testing.T) {
	svc, fixtures := newTestService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "owner@example.com")

	err := svc.AssignOwner(ctx, primitive.NewObjectID(), user.ID)
	if apperr.StatusOf(err) != http.StatusNotFound {
		t.Errorf("expected 404, got %d (%v)", apperr.StatusOf(err), err)
	}
}

func TestDelete_Cascades(t *testing.T) {
	svc, fixtures := newTestService(t)
	db := fixtures.DB()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Doomed Org")
	turf := fixtures.CreateTurf(ctx, org.ID, "Doomed Field", 30)
	user := fixtures.CreateUser(ctx, "fan@example.com")
	review := fixtures.CreateReview(ctx, user.ID, turf.ID, 4)
	fixtures.CreateRole(ctx, org.ID, "Groundskeeper", nil)

	owner := fixtures.CreateUser(ctx, "owner@example.com")
	if err := svc.AssignOwner(ctx, org.ID, owner.ID); err != nil {
		t.Fatalf("AssignOwner failed: %v", err)
	}

	// An unrelated organization must survive the cascade.
	other := fixtures.CreateOrganization(ctx, "Bystander Org")
	otherTurf := fixtures.CreateTurf(ctx, other.ID, "Bystander Field", 30)

	if err := svc.Delete(ctx, org.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	counts := map[string]bson.M{
		"organizations": {"_id": org.ID},
		"turfs":         {"organization_id": org.ID},
		"turf_reviews":  {"turf_id": turf.ID},
		"roles":         {"scope_org_id": org.ID},
	}
	for coll, filter := range counts {
		n, err := db.Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s: expected 0 documents after cascade, got %d", coll, n)
		}
	}

	// The reviewer's back-reference is cleaned up too.
	var gotUser models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": user.ID}).Decode(&gotUser); err != nil {
		t.Fatalf("reload user: %v", err)
	}
	for _, id := range gotUser.ReviewIDs {
		if id == review.ID {
			t.Error("user still references a deleted review")
		}
	}

	// The owner's role assignment for the organization is gone with it.
	var gotOwner models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": owner.ID}).Decode(&gotOwner); err != nil {
		t.Fatalf("reload owner: %v", err)
	}
	for _, a := range gotOwner.Assignments {
		if a.OrganizationID == org.ID {
			t.Error("owner still holds an assignment for the deleted organization")
		}
	}

	// Bystanders untouched.
	n, err := db.Collection("turfs").CountDocuments(ctx, bson.M{"_id": otherTurf.ID})
	if err != nil {
		t.Fatalf("count bystander turfs: %v", err)
	}
	if n != 1 {
		t.Error("unrelated turf should survive the cascade")
	}
}

func TestDeleteTurf_Cascades(t *testing.T) {
	svc, fixtures := newTestService(t)
	db := fixtures.DB()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Turf Org")
	turf := fixtures.CreateTurf(ctx, org.ID, "Doomed Field", 30)
	keep := fixtures.CreateTurf(ctx, org.ID, "Kept Field", 30)
	user := fixtures.CreateUser(ctx, "fan@example.com")
	fixtures.CreateReview(ctx, user.ID, turf.ID, 4)

	if err := svc.DeleteTurf(ctx, turf.ID); err != nil {
		t.Fatalf("DeleteTurf failed: %v", err)
	}

	n, err := db.Collection("turf_reviews").CountDocuments(ctx, bson.M{"turf_id": turf.ID})
	if err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 reviews for the deleted turf, got %d", n)
	}

	n, err = db.Collection("turfs").CountDocuments(ctx, bson.M{"_id": keep.ID})
	if err != nil {
		t.Fatalf("count turfs: %v", err)
	}
	if n != 1 {
		t.Error("sibling turf should survive")
	}
}
