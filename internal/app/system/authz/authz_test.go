package authz

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fieldworks/turfhub/internal/domain/models"
)

type fakeUsers map[primitive.ObjectID]*models.User

func (f fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

type fakeRoles map[primitive.ObjectID]*models.Role

func (f fakeRoles) FindByID(_ context.Context, id primitive.ObjectID) (*models.Role, error) {
	if r, ok := f[id]; ok {
		return r, nil
	}
	return nil, errors.New("role not found")
}

type fakePerms map[primitive.ObjectID]string

func (f fakePerms) NamesByIDs(_ context.Context, ids []primitive.ObjectID) ([]string, error) {
	var names []string
	for _, id := range ids {
		if n, ok := f[id]; ok {
			names = append(names, n)
		}
	}
	return names, nil
}

func TestCan(t *testing.T) {
	userID := primitive.NewObjectID()
	orgID := primitive.NewObjectID()
	otherOrgID := primitive.NewObjectID()
	roleID := primitive.NewObjectID()
	permUpdate := primitive.NewObjectID()
	permDelete := primitive.NewObjectID()

	c := NewChecker(
		fakeUsers{userID: {
			ID: userID,
			Assignments: []models.RoleAssignment{
				{OrganizationID: orgID, RoleID: roleID},
			},
		}},
		fakeRoles{roleID: {
			ID:            roleID,
			Scope:         models.ScopeOrganization,
			PermissionIDs: []primitive.ObjectID{permUpdate, permDelete},
		}},
		fakePerms{permUpdate: "turf:update", permDelete: "turf:delete"},
		zap.NewNop(),
	)

	ctx := context.Background()

	ok, err := c.Can(ctx, userID, orgID, "turf:update")
	if err != nil || !ok {
		t.Fatalf("Can(turf:update) = %v, %v; want true, nil", ok, err)
	}

	ok, err = c.Can(ctx, userID, orgID, "role:assign")
	if err != nil || ok {
		t.Fatalf("Can(role:assign) = %v, %v; want false, nil", ok, err)
	}

	// Assignment is scoped: same action in a different org is denied.
	ok, err = c.Can(ctx, userID, otherOrgID, "turf:update")
	if err != nil || ok {
		t.Fatalf("Can(other org) = %v, %v; want false, nil", ok, err)
	}
}

func TestCanGlobal(t *testing.T) {
	userID := primitive.NewObjectID()
	roleID := primitive.NewObjectID()
	permID := primitive.NewObjectID()

	c := NewChecker(
		fakeUsers{userID: {
			ID: userID,
			Assignments: []models.RoleAssignment{
				{OrganizationID: primitive.NilObjectID, RoleID: roleID},
			},
		}},
		fakeRoles{roleID: {
			ID:            roleID,
			Scope:         models.ScopeGlobal,
			PermissionIDs: []primitive.ObjectID{permID},
		}},
		fakePerms{permID: "organization:create"},
		zap.NewNop(),
	)

	ok, err := c.CanGlobal(context.Background(), userID, "organization:create")
	if err != nil || !ok {
		t.Fatalf("CanGlobal = %v, %v; want true, nil", ok, err)
	}
}

func TestCan_DanglingRoleSkipped(t *testing.T) {
	userID := primitive.NewObjectID()
	orgID := primitive.NewObjectID()

	c := NewChecker(
		fakeUsers{userID: {
			ID: userID,
			Assignments: []models.RoleAssignment{
				{OrganizationID: orgID, RoleID: primitive.NewObjectID()},
			},
		}},
		fakeRoles{},
		fakePerms{},
		zap.NewNop(),
	)

	ok, err := c.Can(context.Background(), userID, orgID, "turf:update")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("dangling role id should not grant access")
	}
}
