// internal/app/store/permissions/permissionstore.go
package permissionstore

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

var ErrNotFound = errors.New("permission not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("permissions")}
}

// Seed inserts the known permission catalog, skipping names that already
// exist. Safe to run on every startup.
func (s *Store) Seed(ctx context.Context) error {
	now := time.Now().UTC()
	seed := func(names []string, scope string) error {
		for _, name := range names {
			_, err := s.c.InsertOne(ctx, models.Permission{
				ID:        primitive.NewObjectID(),
				Name:      name,
				Scope:     scope,
				CreatedAt: now,
			})
			if err != nil && !wafflemongo.IsDup(err) {
				return err
			}
		}
		return nil
	}
	if err := seed(models.OrganizationPermissions, models.ScopeOrganization); err != nil {
		return err
	}
	return seed(models.GlobalPermissions, models.ScopeGlobal)
}

func (s *Store) GetByName(ctx context.Context, name string) (models.Permission, error) {
	var p models.Permission
	err := s.c.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Permission{}, ErrNotFound
	}
	if err != nil {
		return models.Permission{}, err
	}
	return p, nil
}

// IDsByNames resolves permission names to ids, erroring on unknown names.
func (s *Store) IDsByNames(ctx context.Context, names []string) ([]primitive.ObjectID, error) {
	if len(names) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	byName := make(map[string]primitive.ObjectID, len(names))
	for cur.Next(ctx) {
		var p models.Permission
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		byName[p.Name] = p.ID
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, errors.New("unknown permission: " + name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NamesByIDs resolves permission ids to action names. Unknown ids are
// silently dropped.
func (s *Store) NamesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var names []string
	for cur.Next(ctx) {
		var p models.Permission
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		names = append(names, p.Name)
	}
	return names, cur.Err()
}

// ListByScope returns the catalog for one scope, sorted by name.
func (s *Store) ListByScope(ctx context.Context, scope string) ([]models.Permission, error) {
	cur, err := s.c.Find(ctx, bson.M{"scope": scope},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var perms []models.Permission
	if err := cur.All(ctx, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}
