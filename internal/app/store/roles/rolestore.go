// internal/app/store/roles/rolestore.go
package rolestore

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
	ErrDuplicateRole = errors.New("a role with this name already exists in this scope")
	ErrNotFound      = errors.New("role not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("roles")}
}

func (s *Store) Create(ctx context.Context, role models.Role) (models.Role, error) {
	now := time.Now().UTC()
	role.ID = primitive.NewObjectID()
	if role.PermissionIDs == nil {
		role.PermissionIDs = []primitive.ObjectID{}
	}
	role.CreatedAt = now
	role.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, role)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Role{}, ErrDuplicateRole
		}
		return models.Role{}, err
	}
	return role, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Role, error) {
	var role models.Role
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err == mongo.ErrNoDocuments {
		return models.Role{}, ErrNotFound
	}
	if err != nil {
		return models.Role{}, err
	}
	return role, nil
}

// FindByID adapts GetByID to the pointer shape permission checks expect.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	role, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByNameInOrg returns the organization-scoped role with the given name.
func (s *Store) GetByNameInOrg(ctx context.Context, orgID primitive.ObjectID, name string) (models.Role, error) {
	var role models.Role
	err := s.c.FindOne(ctx, bson.M{"scope_org_id": orgID, "name": name}).Decode(&role)
	if err == mongo.ErrNoDocuments {
		return models.Role{}, ErrNotFound
	}
	if err != nil {
		return models.Role{}, err
	}
	return role, nil
}

// ListByOrg returns every role scoped to the organization, sorted by name.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Role, error) {
	cur, err := s.c.Find(ctx, bson.M{"scope_org_id": orgID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var roles []models.Role
	if err := cur.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// SetPermissions replaces the role's permission list.
func (s *Store) SetPermissions(ctx context.Context, id primitive.ObjectID, permissionIDs []primitive.ObjectID) error {
	if permissionIDs == nil {
		permissionIDs = []primitive.ObjectID{}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"permission_ids": permissionIDs,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOrg removes all roles scoped to an organization (cascade delete).
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"scope_org_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
