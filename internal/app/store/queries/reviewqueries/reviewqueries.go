// Package reviewqueries provides the aggregation-backed read side of turf
// reviews: filtered pages with the counterpart entity joined in, plus rating
// statistics over the same filtered set.
//
// Page, histogram, and total come out of ONE aggregation pass ($facet), so a
// review written between two queries can never skew the stats against the
// page they accompany.
package reviewqueries

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldworks/turfhub/internal/domain/models"
)

// ListOptions narrows and orders a review listing. MinRating/MaxRating of 0
// mean unbounded. SortBy accepts "created_at" or "rating"; anything else
// falls back to created_at. Ascending sorts when SortAsc.
type ListOptions struct {
	MinRating int
	MaxRating int
	Skip      int64
	Limit     int64
	SortBy    string
	SortAsc   bool
}

// Stats summarizes the filtered review set. Average is derived from the
// histogram: sum(rating*count)/sum(count), 0 when the set is empty.
type Stats struct {
	Average   float64
	Count     int64
	Histogram map[int]int64
}

// AuthorRef is the joined-in summary of a review's author.
type AuthorRef struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`
}

// TurfRef is the joined-in summary of a review's turf.
type TurfRef struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
}

// ReviewWithAuthor is one page row of a per-turf listing.
type ReviewWithAuthor struct {
	models.TurfReview `bson:",inline"`
	Author            *AuthorRef `bson:"author,omitempty" json:"author,omitempty"`
}

// ReviewWithTurf is one page row of a per-user listing.
type ReviewWithTurf struct {
	models.TurfReview `bson:",inline"`
	Turf              *TurfRef `bson:"turf,omitempty" json:"turf,omitempty"`
}

// ListByTurf returns one page of a turf's reviews with author summaries,
// plus stats over the whole filtered set.
func ListByTurf(ctx context.Context, db *mongo.Database, turfID primitive.ObjectID, opts ListOptions) ([]ReviewWithAuthor, Stats, error) {
	match := ratingMatch(bson.M{"turf_id": turfID}, opts)

	pageBranch := append(pageStages(opts),
		bson.M{"$lookup": bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "author",
		}},
		bson.M{"$unwind": bson.M{
			"path":                       "$author",
			"preserveNullAndEmptyArrays": true,
		}},
	)

	return runFacet[ReviewWithAuthor](ctx, db, match, pageBranch)
}

// ListByUser returns one page of a user's reviews with turf summaries,
// plus stats over the whole filtered set.
func ListByUser(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, opts ListOptions) ([]ReviewWithTurf, Stats, error) {
	match := ratingMatch(bson.M{"user_id": userID}, opts)

	pageBranch := append(pageStages(opts),
		bson.M{"$lookup": bson.M{
			"from":         "turfs",
			"localField":   "turf_id",
			"foreignField": "_id",
			"as":           "turf",
		}},
		bson.M{"$unwind": bson.M{
			"path":                       "$turf",
			"preserveNullAndEmptyArrays": true,
		}},
	)

	return runFacet[ReviewWithTurf](ctx, db, match, pageBranch)
}

// TurfRatingStats returns a turf's unfiltered rating summary. {0,0} when the
// turf has no reviews.
func TurfRatingStats(ctx context.Context, db *mongo.Database, turfID primitive.ObjectID) (Stats, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"turf_id": turfID}},
		{"$group": bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}},
	}
	cur, err := db.Collection("turf_reviews").Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, err
	}
	defer cur.Close(ctx)

	var buckets []ratingBucket
	if err := cur.All(ctx, &buckets); err != nil {
		return Stats{}, err
	}
	return statsFromBuckets(buckets, 0), nil
}

/* -------------------------------------------------------------------------- */
/* Pipeline plumbing                                                          */
/* -------------------------------------------------------------------------- */

type ratingBucket struct {
	Rating int   `bson:"_id"`
	Count  int64 `bson:"count"`
}

func ratingMatch(match bson.M, opts ListOptions) bson.M {
	rating := bson.M{}
	if opts.MinRating > 0 {
		rating["$gte"] = opts.MinRating
	}
	if opts.MaxRating > 0 {
		rating["$lte"] = opts.MaxRating
	}
	if len(rating) > 0 {
		match["rating"] = rating
	}
	return match
}

func pageStages(opts ListOptions) []bson.M {
	field := "created_at"
	if opts.SortBy == "rating" {
		field = "rating"
	}
	dir := -1
	if opts.SortAsc {
		dir = 1
	}
	stages := []bson.M{
		// _id tiebreak keeps pages stable for equal sort keys.
		{"$sort": bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}},
	}
	if opts.Skip > 0 {
		stages = append(stages, bson.M{"$skip": opts.Skip})
	}
	if opts.Limit > 0 {
		stages = append(stages, bson.M{"$limit": opts.Limit})
	}
	return stages
}

// runFacet executes the shared match + $facet pipeline and decodes the page
// branch into rows of type T; the ratings and total branches become Stats.
func runFacet[T any](ctx context.Context, db *mongo.Database, match bson.M, pageBranch []bson.M) ([]T, Stats, error) {
	pipeline := []bson.M{
		{"$match": match},
		{"$facet": bson.M{
			"page":    pageBranch,
			"ratings": []bson.M{{"$group": bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
			"total":   []bson.M{{"$count": "count"}},
		}},
	}

	cur, err := db.Collection("turf_reviews").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, Stats{}, err
	}
	defer cur.Close(ctx)

	var out struct {
		Page    []T            `bson:"page"`
		Ratings []ratingBucket `bson:"ratings"`
		Total   []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&out); err != nil {
			return nil, Stats{}, err
		}
	}
	if err := cur.Err(); err != nil {
		return nil, Stats{}, err
	}

	var total int64
	if len(out.Total) > 0 {
		total = out.Total[0].Count
	}
	return out.Page, statsFromBuckets(out.Ratings, total), nil
}

func statsFromBuckets(buckets []ratingBucket, total int64) Stats {
	st := Stats{Histogram: make(map[int]int64, len(buckets))}
	var sum, n int64
	for _, b := range buckets {
		st.Histogram[b.Rating] = b.Count
		sum += int64(b.Rating) * b.Count
		n += b.Count
	}
	if n > 0 {
		st.Average = float64(sum) / float64(n)
	}
	st.Count = n
	if total > n {
		// total branch counts the same match; keep whichever is larger in
		// case a bucket decode dropped rows.
		st.Count = total
	}
	return st
}
