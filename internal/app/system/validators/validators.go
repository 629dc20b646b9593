// Package validators installs MongoDB JSON-Schema validators so malformed
// documents are rejected at the server even if application checks regress.
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (when absent) and applies their validators.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name   string
		schema bson.M
	}{
		{"users", userSchema},
		{"organizations", organizationSchema},
		{"turfs", turfSchema},
		{"turf_reviews", turfReviewSchema},
		{"roles", roleSchema},
		{"permissions", permissionSchema},
		{"tokens", tokenSchema},
		{"bookings", bookingSchema},
	}

	var problems []string
	for _, s := range sets {
		if err := ensureCollection(ctx, db, s.name, s.schema); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, schema bson.M) error {
	validator := bson.M{"$jsonSchema": schema}

	err := db.CreateCollection(ctx, name)
	if err != nil && !isNamespaceExists(err) {
		return err
	}

	res := db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
	})
	if err := res.Err(); err != nil {
		zap.L().Warn("validator apply failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 48 || cmdErr.Name == "NamespaceExists"
	}
	return strings.Contains(err.Error(), "already exists")
}

/* -------------------------------------------------------------------------- */
/* Schemas                                                                    */
/* -------------------------------------------------------------------------- */

func props(p bson.M) bson.M { return p }

var userSchema = bson.M{
	"bsonType": "object",
	"required": []string{"email", "hashed_password", "created_at"},
	"properties": props(bson.M{
		"email":           bson.M{"bsonType": "string", "minLength": 3},
		"hashed_password": bson.M{"bsonType": "string"},
		"full_name":       bson.M{"bsonType": "string"},
		"full_name_ci":    bson.M{"bsonType": "string"},
		"assignments": bson.M{
			"bsonType": "array",
			"items": bson.M{
				"bsonType": "object",
				"required": []string{"organization_id", "role_id"},
			},
		},
		"review_ids": bson.M{"bsonType": "array"},
	}),
}

var organizationSchema = bson.M{
	"bsonType": "object",
	"required": []string{"name", "name_ci", "created_at"},
	"properties": props(bson.M{
		"name":    bson.M{"bsonType": "string", "minLength": 1},
		"name_ci": bson.M{"bsonType": "string", "minLength": 1},
		"location": bson.M{
			"bsonType": "object",
			"properties": bson.M{
				"point": bson.M{
					"bsonType": "object",
					"required": []string{"type", "coordinates"},
					"properties": bson.M{
						"type": bson.M{"enum": []string{"Point"}},
						"coordinates": bson.M{
							"bsonType": "array",
							"minItems": 2,
							"maxItems": 2,
						},
					},
				},
			},
		},
		"facilities": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
		"images":     bson.M{"bsonType": "array"},
	}),
}

var turfSchema = bson.M{
	"bsonType": "object",
	"required": []string{"organization_id", "name", "name_ci", "base_price", "created_at"},
	"properties": props(bson.M{
		"organization_id": bson.M{"bsonType": "objectId"},
		"name":            bson.M{"bsonType": "string", "minLength": 1},
		"name_ci":         bson.M{"bsonType": "string", "minLength": 1},
		"base_price":      bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
		"team_size":       bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
		"sports":          bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
		"operating_hours": bson.M{
			"bsonType": "array",
			"items": bson.M{
				"bsonType": "object",
				"required": []string{"day", "open", "close"},
			},
		},
		"review_ids": bson.M{"bsonType": "array"},
	}),
}

var turfReviewSchema = bson.M{
	"bsonType": "object",
	"required": []string{"turf_id", "user_id", "rating", "created_at"},
	"properties": props(bson.M{
		"turf_id": bson.M{"bsonType": "objectId"},
		"user_id": bson.M{"bsonType": "objectId"},
		// Rating bounds are enforced here as well as in the handler.
		"rating": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 5},
		"review": bson.M{"bsonType": "string"},
		"images": bson.M{"bsonType": "array"},
	}),
}

var roleSchema = bson.M{
	"bsonType": "object",
	"required": []string{"name", "scope", "created_at"},
	"properties": props(bson.M{
		"name":           bson.M{"bsonType": "string", "minLength": 1},
		"scope":          bson.M{"enum": []string{"global", "organization"}},
		"scope_org_id":   bson.M{"bsonType": []string{"objectId", "null"}},
		"permission_ids": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
	}),
}

var permissionSchema = bson.M{
	"bsonType": "object",
	"required": []string{"name", "scope"},
	"properties": props(bson.M{
		"name":  bson.M{"bsonType": "string", "minLength": 1},
		"scope": bson.M{"enum": []string{"global", "organization"}},
	}),
}

var tokenSchema = bson.M{
	"bsonType": "object",
	"required": []string{"user_id", "token_hash", "purpose", "expires_at"},
	"properties": props(bson.M{
		"user_id":    bson.M{"bsonType": "objectId"},
		"token_hash": bson.M{"bsonType": "string"},
		"purpose":    bson.M{"enum": []string{"password_reset"}},
		"expires_at": bson.M{"bsonType": "date"},
	}),
}

var bookingSchema = bson.M{
	"bsonType": "object",
	"required": []string{"turf_id", "user_id", "start_time", "end_time", "status", "created_at"},
	"properties": props(bson.M{
		"turf_id":    bson.M{"bsonType": "objectId"},
		"user_id":    bson.M{"bsonType": "objectId"},
		"start_time": bson.M{"bsonType": "date"},
		"end_time":   bson.M{"bsonType": "date"},
		"status":     bson.M{"enum": []string{"confirmed", "cancelled"}},
	}),
}
