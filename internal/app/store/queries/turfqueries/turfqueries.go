// Package turfqueries implements the public filtered turf listing as one
// aggregation. Facility and proximity criteria live on the owning
// organization, so every shape of the query joins the two collections.
package turfqueries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldworks/turfhub/internal/domain/models"
)

// FilterOptions is the fully-parsed filter. Handlers validate and convert
// the query string exactly once; nothing downstream sees raw strings.
//
// Nil pointer fields mean "not filtered". Sports matches ANY listed sport;
// Facilities requires ALL listed facilities on the owning organization.
// Day ("monday".."sunday") and Time ("HH:MM") select turfs open at that
// moment. Lng/Lat/RadiusMeters bound results to a circle.
type FilterOptions struct {
	MinPrice     *float64
	MaxPrice     *float64
	TeamSize     *int
	Sports       []string
	Facilities   []string
	Day          string
	Time         string
	Lng          *float64
	Lat          *float64
	RadiusMeters *float64
	Skip         int64
	Limit        int64
}

func (o FilterOptions) hasGeo() bool {
	return o.Lng != nil && o.Lat != nil && o.RadiusMeters != nil
}

// OrgRef is the owning organization as embedded in a listing row.
type OrgRef struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Facilities []string           `bson:"facilities" json:"facilities"`
	Location   models.Location    `bson:"location" json:"location"`
}

// TurfWithOrg is one row of the filtered listing.
type TurfWithOrg struct {
	models.Turf  `bson:",inline"`
	Organization *OrgRef  `bson:"organization,omitempty" json:"organization,omitempty"`
	DistanceM    *float64 `bson:"distance_m,omitempty" json:"distance_m,omitempty"`
}

// Filter runs the listing query and returns one page plus the total match
// count (ignoring pagination), both from a single aggregation.
func Filter(ctx context.Context, db *mongo.Database, opts FilterOptions) ([]TurfWithOrg, int64, error) {
	if opts.hasGeo() {
		return filterFromOrganizations(ctx, db, opts)
	}
	return filterFromTurfs(ctx, db, opts)
}

// filterFromTurfs is the non-geo shape: turfs first, organization joined in
// for facility filtering and display.
func filterFromTurfs(ctx context.Context, db *mongo.Database, opts FilterOptions) ([]TurfWithOrg, int64, error) {
	pipeline := []bson.M{}
	if m := turfMatch(opts); len(m) > 0 {
		pipeline = append(pipeline, bson.M{"$match": m})
	}
	pipeline = append(pipeline,
		bson.M{"$lookup": bson.M{
			"from":         "organizations",
			"localField":   "organization_id",
			"foreignField": "_id",
			"as":           "organization",
		}},
		bson.M{"$unwind": "$organization"},
	)
	if m := orgMatch("organization.", opts); len(m) > 0 {
		pipeline = append(pipeline, bson.M{"$match": m})
	}
	pipeline = append(pipeline, facetStage(opts))

	return runFacet(ctx, db.Collection("turfs"), pipeline)
}

// filterFromOrganizations is the geo shape. $geoNear must be the first stage
// and the 2dsphere index lives on organizations, so the pipeline starts
// there and fans out to turfs.
func filterFromOrganizations(ctx context.Context, db *mongo.Database, opts FilterOptions) ([]TurfWithOrg, int64, error) {
	pipeline := []bson.M{
		{"$geoNear": bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": []float64{*opts.Lng, *opts.Lat},
			},
			"distanceField": "distance_m",
			"maxDistance":   *opts.RadiusMeters,
			"key":           "location.point",
			"spherical":     true,
		}},
	}
	if m := orgMatch("", opts); len(m) > 0 {
		pipeline = append(pipeline, bson.M{"$match": m})
	}
	pipeline = append(pipeline,
		bson.M{"$lookup": bson.M{
			"from":         "turfs",
			"localField":   "_id",
			"foreignField": "organization_id",
			"as":           "turf",
		}},
		bson.M{"$unwind": "$turf"},
	)
	if m := prefixedTurfMatch("turf.", opts); len(m) > 0 {
		pipeline = append(pipeline, bson.M{"$match": m})
	}
	// Reshape to a turf-rooted row carrying the organization and distance.
	pipeline = append(pipeline,
		bson.M{"$replaceRoot": bson.M{"newRoot": bson.M{"$mergeObjects": []interface{}{
			"$turf",
			bson.M{
				"organization": bson.M{
					"_id":        "$_id",
					"name":       "$name",
					"facilities": "$facilities",
					"location":   "$location",
				},
				"distance_m": "$distance_m",
			},
		}}}},
		facetStage(opts),
	)

	return runFacet(ctx, db.Collection("organizations"), pipeline)
}

/* -------------------------------------------------------------------------- */
/* Match builders                                                             */
/* -------------------------------------------------------------------------- */

func turfMatch(opts FilterOptions) bson.M {
	return prefixedTurfMatch("", opts)
}

func prefixedTurfMatch(prefix string, opts FilterOptions) bson.M {
	m := bson.M{}
	price := bson.M{}
	if opts.MinPrice != nil {
		price["$gte"] = *opts.MinPrice
	}
	if opts.MaxPrice != nil {
		price["$lte"] = *opts.MaxPrice
	}
	if len(price) > 0 {
		m[prefix+"base_price"] = price
	}
	if opts.TeamSize != nil {
		m[prefix+"team_size"] = *opts.TeamSize
	}
	if len(opts.Sports) > 0 {
		m[prefix+"sports"] = bson.M{"$in": opts.Sports}
	}
	if opts.Day != "" && opts.Time != "" {
		// Open/Close are zero-padded "HH:MM", so string order is time order.
		m[prefix+"operating_hours"] = bson.M{"$elemMatch": bson.M{
			"day":   opts.Day,
			"open":  bson.M{"$lte": opts.Time},
			"close": bson.M{"$gt": opts.Time},
		}}
	}
	return m
}

func orgMatch(prefix string, opts FilterOptions) bson.M {
	m := bson.M{}
	if len(opts.Facilities) > 0 {
		m[prefix+"facilities"] = bson.M{"$all": opts.Facilities}
	}
	return m
}

/* -------------------------------------------------------------------------- */
/* Pagination facet                                                           */
/* -------------------------------------------------------------------------- */

func facetStage(opts FilterOptions) bson.M {
	page := []bson.M{
		{"$sort": bson.D{{Key: "base_price", Value: 1}, {Key: "_id", Value: 1}}},
	}
	if opts.Skip > 0 {
		page = append(page, bson.M{"$skip": opts.Skip})
	}
	if opts.Limit > 0 {
		page = append(page, bson.M{"$limit": opts.Limit})
	}
	return bson.M{"$facet": bson.M{
		"page":  page,
		"total": []bson.M{{"$count": "count"}},
	}}
}

func runFacet(ctx context.Context, coll *mongo.Collection, pipeline []bson.M) ([]TurfWithOrg, int64, error) {
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out struct {
		Page  []TurfWithOrg `bson:"page"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&out); err != nil {
			return nil, 0, err
		}
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if len(out.Total) > 0 {
		total = out.Total[0].Count
	}
	return out.Page, total, nil
}
