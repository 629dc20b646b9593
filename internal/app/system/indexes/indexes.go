// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensureTurfs(ctx, db); err != nil {
		problems = append(problems, "turfs: "+err.Error())
	}
	if err := ensureTurfReviews(ctx, db); err != nil {
		problems = append(problems, "turf_reviews: "+err.Error())
	}
	if err := ensureRoles(ctx, db); err != nil {
		problems = append(problems, "roles: "+err.Error())
	}
	if err := ensurePermissions(ctx, db); err != nil {
		problems = append(problems, "permissions: "+err.Error())
	}
	if err := ensureTokens(ctx, db); err != nil {
		problems = append(problems, "tokens: "+err.Error())
	}
	if err := ensureBookings(ctx, db); err != nil {
		problems = append(problems, "bookings: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name string `bson:"name"`
	Key  bson.D `bson:"key"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	// Load what exists once; CreateOne below is a no-op for matching indexes.
	existing := map[string]string{} // key signature -> index name
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		defer cur.Close(ctx)
		for cur.Next(ctx) {
			var idx existingIndex
			if err := cur.Decode(&idx); err != nil {
				continue
			}
			existing[keySig(idx.Key)] = idx.Name
		}
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		if m.Options != nil && m.Options.Name != nil {
			desiredName = *m.Options.Name
		}
		sig := keySig(m.Keys.(bson.D))

		if name, ok := existing[sig]; ok && name == desiredName {
			zap.L().Info("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", name))
			continue
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// Same keys under a different name or options: drop and recreate.
			if strings.Contains(err.Error(), "IndexOptionsConflict") || strings.Contains(err.Error(), "IndexKeySpecsConflict") {
				if name, ok := existing[sig]; ok {
					if _, dropErr := coll.Indexes().DropOne(ctx, name); dropErr == nil {
						if _, err2 := coll.Indexes().CreateOne(ctx, m); err2 == nil {
							zap.L().Info("index dropped and recreated",
								zap.String("collection", coll.Name()),
								zap.String("name", desiredName),
								zap.String("keys", sig))
							continue
						}
					}
				}
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", sig),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}

		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                             */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Email must be unique across all users
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Role lookups per organization (permission checks)
		{
			Keys:    bson.D{{Key: "assignments.organization_id", Value: 1}},
			Options: options.Index().SetName("idx_users_assignments_org"),
		},
	})
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("organizations")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Enforce global uniqueness of organization names (case/diacritics folded)
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_orgs_nameci"),
		},
		// Geospatial proximity filter over turf listings
		{
			Keys:    bson.D{{Key: "location.point", Value: "2dsphere"}},
			Options: options.Index().SetName("idx_orgs_location_2dsphere"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("idx_orgs_owner"),
		},
	})
}

func ensureTurfs(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("turfs")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Per-org lookups and cascade deletes
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetName("idx_turfs_org"),
		},
		// No duplicate turf names within one organization
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_turfs_org_nameci"),
		},
		// Filtered listing: price range + stable tiebreak
		{
			Keys:    bson.D{{Key: "base_price", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_turfs_price__id"),
		},
		{
			Keys:    bson.D{{Key: "sports", Value: 1}},
			Options: options.Index().SetName("idx_turfs_sports"),
		},
	})
}

func ensureTurfReviews(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("turf_reviews")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Exactly one review per (user, turf) — this index is the arbiter
		// of the duplicate-review conflict.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "turf_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_reviews_user_turf"),
		},
		// Per-turf listing with rating filter and created_at sort
		{
			Keys:    bson.D{{Key: "turf_id", Value: 1}, {Key: "rating", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reviews_turf_rating_created"),
		},
		// Per-user listing (latest-first)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_reviews_user_created"),
		},
	})
}

func ensureRoles(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("roles")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// One role name per scope (global roles have a null scope_org_id)
		{
			Keys:    bson.D{{Key: "scope_org_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_roles_scopeorg_name"),
		},
	})
}

func ensurePermissions(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("permissions")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_permissions_name"),
		},
		{
			Keys:    bson.D{{Key: "scope", Value: 1}},
			Options: options.Index().SetName("idx_permissions_scope"),
		},
	})
}

func ensureTokens(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("tokens")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_tokens_hash"),
		},
		// Auto-expire reset tokens at their deadline
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_tokens_expires_ttl"),
		},
	})
}

func ensureBookings(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("bookings")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Overlap checks scan one turf's confirmed bookings by start time
		{
			Keys:    bson.D{{Key: "turf_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetName("idx_bookings_turf_status_start"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_bookings_user_created"),
		},
	})
}
