package bookingstore_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	bookingstore "github.com/fieldworks/turfhub/internal/app/store/bookings"
	"github.com/fieldworks/turfhub/internal/domain/models"
	"github.com/fieldworks/turfhub/internal/testutil"
)

func slot(day, hour int) time.Time {
	return time.Date(2026, 9, day, hour, 0, 0, 0, time.UTC)
}

func TestStore_Create_Overlap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	turfID := primitive.NewObjectID()

	first, err := store.Create(ctx, models.Booking{
		TurfID:    turfID,
		UserID:    primitive.NewObjectID(),
		StartTime: slot(1, 10),
		EndTime:   slot(1, 12),
		Price:     80,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.Status != models.BookingConfirmed {
		t.Errorf("status: got %q, want %q", first.Status, models.BookingConfirmed)
	}

	// Any intersection with a confirmed booking is rejected.
	_, err = store.Create(ctx, models.Booking{
		TurfID:    turfID,
		UserID:    primitive.NewObjectID(),
		StartTime: slot(1, 11),
		EndTime:   slot(1, 13),
	})
	if !errors.Is(err, bookingstore.ErrOverlap) {
		t.Errorf("expected ErrOverlap, got %v", err)
	}

	// A different turf at the same time is unaffected.
	_, err = store.Create(ctx, models.Booking{
		TurfID:    primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
		StartTime: slot(1, 11),
		EndTime:   slot(1, 13),
	})
	if err != nil {
		t.Errorf("booking another turf should succeed, got %v", err)
	}
}

func TestStore_Create_BackToBackSlots(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	turfID := primitive.NewObjectID()

	if _, err := store.Create(ctx, models.Booking{
		TurfID: turfID, UserID: primitive.NewObjectID(),
		StartTime: slot(2, 10), EndTime: slot(2, 12),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// [10,12) and [12,14) share only the boundary instant, which belongs
	// to the later slot.
	if _, err := store.Create(ctx, models.Booking{
		TurfID: turfID, UserID: primitive.NewObjectID(),
		StartTime: slot(2, 12), EndTime: slot(2, 14),
	}); err != nil {
		t.Errorf("back-to-back slot should succeed, got %v", err)
	}
}

func TestStore_Cancel_FreesSlot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	turfID := primitive.NewObjectID()
	booking, err := store.Create(ctx, models.Booking{
		TurfID: turfID, UserID: primitive.NewObjectID(),
		StartTime: slot(3, 10), EndTime: slot(3, 12),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Cancel(ctx, booking.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	// The cancelled slot no longer blocks new bookings.
	if _, err := store.Create(ctx, models.Booking{
		TurfID: turfID, UserID: primitive.NewObjectID(),
		StartTime: slot(3, 10), EndTime: slot(3, 12),
	}); err != nil {
		t.Errorf("rebooking a cancelled slot should succeed, got %v", err)
	}
}

func TestStore_ListByTurf_Window(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := bookingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	turfID := primitive.NewObjectID()
	mk := func(day int) {
		if _, err := store.Create(ctx, models.Booking{
			TurfID: turfID, UserID: primitive.NewObjectID(),
			StartTime: slot(day, 10), EndTime: slot(day, 11),
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	mk(5)
	mk(10)
	mk(20)

	got, err := store.ListByTurf(ctx, turfID, slot(4, 0), slot(15, 0))
	if err != nil {
		t.Fatalf("ListByTurf failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 bookings in window, got %d", len(got))
	}
}
