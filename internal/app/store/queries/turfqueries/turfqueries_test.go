package turfqueries_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	organizationstore "github.com/fieldworks/turfhub/internal/app/store/organizations"
	turfqueries "github.com/fieldworks/turfhub/internal/app/store/queries/turfqueries"
	"github.com/fieldworks/turfhub/internal/app/system/indexes"
	"github.com/fieldworks/turfhub/internal/domain/models"
	"github.com/fieldworks/turfhub/internal/testutil"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestFilter_PriceRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Price Org")
	fixtures.CreateTurf(ctx, org.ID, "Cheap", 10)
	fixtures.CreateTurf(ctx, org.ID, "Mid", 30)
	fixtures.CreateTurf(ctx, org.ID, "Expensive", 90)

	turfs, total, err := turfqueries.Filter(ctx, db, turfqueries.FilterOptions{
		MinPrice: fptr(20),
		MaxPrice: fptr(50),
		Limit:    10,
	})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if total != 1 {
		t.Errorf("total: got %d, want 1", total)
	}
	if len(turfs) != 1 || turfs[0].Name != "Mid" {
		t.Fatalf("expected [Mid], got %v", turfs)
	}
	if turfs[0].Organization == nil || turfs[0].Organization.Name != "Price Org" {
		t.Error("expected the owning organization to be joined")
	}
}

func TestFilter_SportsMatchAny(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "Sports Org")
	fixtures.CreateTurf(ctx, org.ID, "Football Only", 30)

	cricket := fixtures.CreateTurf(ctx, org.ID, "Cricket Ground", 30)
	_, err := db.Collection("turfs").UpdateByID(ctx, cricket.ID,
		bson.M{"$set": bson.M{"sports": []string{"cricket", "hockey"}}})
	if err != nil {
		t.Fatalf("update sports: %v", err)
	}

	// A turf qualifies when it offers any requested sport.
	turfs, total, err := turfqueries.Filter(ctx, db, turfqueries.FilterOptions{
		Sports: []string{"cricket", "badminton"},
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if total != 1 {
		t.Errorf("total: got %d, want 1", total)
	}
	if len(turfs) != 1 || turfs[0].Name != "Cricket Ground" {
		t.Fatalf("expected [Cricket Ground], got %d results", len(turfs))
	}
}

func TestFilter_FacilitiesMatchAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Fixture organizations carry ["parking", "washroom"].
	org := fixtures.CreateOrganization(ctx, "Facility Org")
	fixtures.CreateTurf(ctx, org.ID, "Equipped Field", 30)

	_, total, err := turfqueries.Filter(ctx, db, turfqueries.FilterOptions{
		Facilities: []string{"parking", "washroom"},
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if total != 1 {
		t.Errorf("both facilities present: got %d, want 1", total)
	}

	// Every requested facility must be present.
	_, total, err = turfqueries.Filter(ctx, db, turfqueries.FilterOptions{
		Facilities: []string{"parking", "cafeteria"},
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if total != 0 {
		t.Errorf("missing facility: got %d, want 0", total)
	}
}

func TestFilter_OpeningHours(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Fixture turfs are open monday 08:00-22:00.
	org := fixtures.CreateOrganization(ctx, "Hours Org")
	fixtures.CreateTurf(ctx, org.ID, "Morning Field", 30)

	cases := []struct {
		day, at string
		want    int64
	}{
		{"monday", "09:00", 1},
		{"monday", "08:00", 1}, // opening instant is in
		{"monday", "22:00", 0}, // closing instant is out
		{"monday", "07:59", 0},
		{"tuesday", "09:00", 0}, // closed that day
	}
	for _, tc := range cases {
		_, total, err := turfqueries.Filter(ctx, db, turfqueries.FilterOptions{
			Day:   tc.day,
			Time:  tc.at,
			Limit: 10,
		})
		if err != nil {
			t.Fatalf("Filter(%s %s) failed: %v", tc.day, tc.at, err)
		}
		if total != tc.want {
			t.Errorf("Filter(%s %s): got %d, want %d", tc.day, tc.at, total, tc.want)
		}
	}
}

func TestFilter_TeamSize(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Fixture turfs hold teams of 10.
	org := fixtures.CreateOrganization(ctx, "Size Org")
	fixtures.CreateTurf(ctx, org.ID, "Ten-a-side", 30)

	_, total, err := turfqueries.Filter(ctx, db, turfqueries.FilterOptions{TeamSize: iptr(10), Limit: 10})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if total != 1 {
		t.Errorf("team size 10: got %d, want 1", total)
	}

	_, total, err = turfqueries.Filter(ctx, db, turfqueries.FilterOptions{TeamSize: iptr(11), Limit: 10})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if total != 0 {
		t.Errorf("team size 11: got %d, want 0", total)
	}
}

func TestFilter_Geo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	orgs := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	// Fixture org sits at (-92.33, 38.95), roughly downtown Columbia, MO.
	near := fixtures.CreateOrganization(ctx, "Near Org")
	fixtures.CreateTurf(ctx, near.ID, "Near Field", 30)

	// St. Louis is ~190 km away.
	far, err := orgs.Create(ctx, models.Organization{
		Name: "Far Org",
		Location: models.Location{
			Point: models.GeoPoint{Type: "Point", Coordinates: []float64{-90.20, 38.63}},
			City:  "St. Louis",
		},
	})
	if err != nil {
		t.Fatalf("create far org: %v", err)
	}
	fixtures.CreateTurf(ctx, far.ID, "Far Field", 30)

	turfs, total, err := turfqueries.Filter(ctx, db, turfqueries.FilterOptions{
		Lng:          fptr(-92.30),
		Lat:          fptr(38.95),
		RadiusMeters: fptr(10_000),
		Limit:        10,
	})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("total: got %d, want 1", total)
	}
	if turfs[0].Name != "Near Field" {
		t.Errorf("expected Near Field, got %q", turfs[0].Name)
	}
	if turfs[0].DistanceM == nil {
		t.Error("expected a computed distance")
	} else if *turfs[0].DistanceM > 10_000 {
		t.Errorf("distance %v exceeds the radius", *turfs[0].DistanceM)
	}
}
