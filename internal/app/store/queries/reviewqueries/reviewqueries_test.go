package reviewqueries_test

import (
	"fmt"
	"testing"

	reviewqueries "github.com/fieldworks/turfhub/internal/app/store/queries/reviewqueries"
	"github.com/fieldworks/turfhub/internal/domain/models"
	"github.com/fieldworks/turfhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

// seedReviews creates one turf and one review per rating in ratings, each
// from a distinct user.
func seedReviews(t *testing.T, db *mongo.Database, fixtures *testutil.Fixtures, ratings []int) models.Turf {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Stats Org")
	turf := fixtures.CreateTurf(ctx, org.ID, "Stats Field", 30)
	for i, r := range ratings {
		user := fixtures.CreateUser(ctx, fmt.Sprintf("user%d@example.com", i))
		fixtures.CreateReview(ctx, user.ID, turf.ID, r)
	}
	return turf
}

func TestListByTurf_StatsMatchPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	turf := seedReviews(t, db, fixtures, []int{5, 5, 3})

	reviews, stats, err := reviewqueries.ListByTurf(ctx, db, turf.ID, reviewqueries.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListByTurf failed: %v", err)
	}

	if stats.Count != 3 {
		t.Errorf("Count: got %d, want 3", stats.Count)
	}
	if want := 13.0 / 3.0; stats.Average != want {
		t.Errorf("Average: got %v, want %v", stats.Average, want)
	}
	if stats.Histogram[5] != 2 || stats.Histogram[3] != 1 {
		t.Errorf("Histogram: got %v, want {5:2, 3:1}", stats.Histogram)
	}
	if len(reviews) != 3 {
		t.Fatalf("expected 3 reviews on the page, got %d", len(reviews))
	}
	for _, r := range reviews {
		if r.Author == nil {
			t.Errorf("review %v missing joined author", r.ID)
		}
	}
}

func TestListByTurf_NoReviews(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Empty Org")
	turf := fixtures.CreateTurf(ctx, org.ID, "Unreviewed Field", 30)

	reviews, stats, err := reviewqueries.ListByTurf(ctx, db, turf.ID, reviewqueries.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListByTurf failed: %v", err)
	}
	if len(reviews) != 0 {
		t.Errorf("expected no reviews, got %d", len(reviews))
	}
	if stats.Count != 0 || stats.Average != 0 {
		t.Errorf("expected zero stats, got count=%d average=%v", stats.Count, stats.Average)
	}
}

func TestListByTurf_RatingFilterNarrowsStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	turf := seedReviews(t, db, fixtures, []int{5, 5, 3, 1})

	// Stats describe the filtered set, not the whole turf.
	reviews, stats, err := reviewqueries.ListByTurf(ctx, db, turf.ID, reviewqueries.ListOptions{
		MinRating: 4,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("ListByTurf failed: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("expected 2 reviews, got %d", len(reviews))
	}
	if stats.Count != 2 {
		t.Errorf("Count: got %d, want 2", stats.Count)
	}
	if stats.Average != 5 {
		t.Errorf("Average: got %v, want 5", stats.Average)
	}
	if len(stats.Histogram) != 1 || stats.Histogram[5] != 2 {
		t.Errorf("Histogram: got %v, want {5:2}", stats.Histogram)
	}
}

func TestListByTurf_SortAndPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	turf := seedReviews(t, db, fixtures, []int{2, 4, 1, 5, 3})

	reviews, stats, err := reviewqueries.ListByTurf(ctx, db, turf.ID, reviewqueries.ListOptions{
		SortBy:  "rating",
		SortAsc: true,
		Skip:    1,
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("ListByTurf failed: %v", err)
	}
	if stats.Count != 5 {
		t.Errorf("Count: got %d, want 5", stats.Count)
	}
	if len(reviews) != 2 {
		t.Fatalf("page size: got %d, want 2", len(reviews))
	}
	if reviews[0].Rating != 2 || reviews[1].Rating != 3 {
		t.Errorf("ratings on page: got [%d, %d], want [2, 3]", reviews[0].Rating, reviews[1].Rating)
	}
}

func TestListByUser_JoinsTurf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "User Org")
	user := fixtures.CreateUser(ctx, "author@example.com")
	t1 := fixtures.CreateTurf(ctx, org.ID, "First Field", 30)
	t2 := fixtures.CreateTurf(ctx, org.ID, "Second Field", 30)
	fixtures.CreateReview(ctx, user.ID, t1.ID, 4)
	fixtures.CreateReview(ctx, user.ID, t2.ID, 2)

	reviews, stats, err := reviewqueries.ListByUser(ctx, db, user.ID, reviewqueries.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if stats.Count != 2 {
		t.Errorf("Count: got %d, want 2", stats.Count)
	}
	for _, r := range reviews {
		if r.Turf == nil {
			t.Errorf("review %v missing joined turf", r.ID)
			continue
		}
		if r.Turf.Name == "" {
			t.Errorf("review %v has an empty turf name", r.ID)
		}
	}
}

func TestTurfRatingStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	turf := seedReviews(t, db, fixtures, []int{4, 4, 4, 2})

	stats, err := reviewqueries.TurfRatingStats(ctx, db, turf.ID)
	if err != nil {
		t.Fatalf("TurfRatingStats failed: %v", err)
	}
	if stats.Count != 4 {
		t.Errorf("Count: got %d, want 4", stats.Count)
	}
	if want := 14.0 / 4.0; stats.Average != want {
		t.Errorf("Average: got %v, want %v", stats.Average, want)
	}
}
