// Package bookings serves slot reservations: create with overlap
// protection, per-turf availability, the caller's history, and cancel.
package bookings

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	bookingstore "github.com/fieldworks/turfhub/internal/app/store/bookings"
	turfstore "github.com/fieldworks/turfhub/internal/app/store/turfs"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/httpjson"
	"github.com/fieldworks/turfhub/internal/app/system/paging"
	"github.com/fieldworks/turfhub/internal/app/system/timeouts"
	"github.com/fieldworks/turfhub/internal/app/system/txn"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

const (
	minSlot = 30 * time.Minute
	maxSlot = 8 * time.Hour
)

// Handler holds the booking feature's dependencies.
type Handler struct {
	Bookings *bookingstore.Store
	Turfs    *turfstore.Store
	Runner   *txn.Runner
	Log      *zap.Logger
}

// NewHandler constructs the bookings Handler.
func NewHandler(db *mongo.Database, runner *txn.Runner, logger *zap.Logger) *Handler {
	return &Handler{
		Bookings: bookingstore.New(db),
		Turfs:    turfstore.New(db),
		Runner:   runner,
		Log:      logger,
	}
}

// HandleCreate books a turf for [start_time, end_time). The overlap check
// and insert run under a transaction where available so two racing bookings
// cannot both land.
//
// POST /bookings {turf_id, start_time, end_time} → 201/404/409
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
		return
	}

	var req struct {
		TurfID    string    `json:"turf_id"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	turfID, err := primitive.ObjectIDFromHex(req.TurfID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "turf_id is not a valid id")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		httpjson.Fail(w, http.StatusBadRequest, "start_time and end_time are required")
		return
	}
	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if !start.Before(end) {
		httpjson.Fail(w, http.StatusBadRequest, "start_time must be before end_time")
		return
	}
	if start.Before(time.Now().UTC()) {
		httpjson.Fail(w, http.StatusBadRequest, "start_time cannot be in the past")
		return
	}
	if d := end.Sub(start); d < minSlot || d > maxSlot {
		httpjson.Fail(w, http.StatusBadRequest, "bookings must be between 30 minutes and 8 hours")
		return
	}

	turf, err := h.Turfs.GetByID(ctx, turfID)
	if err != nil {
		if errors.Is(err, turfstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("load turf", err))
		return
	}

	price := turf.BasePrice * end.Sub(start).Hours()

	var created models.Booking
	err = h.Runner.WithTransaction(ctx, func(ctx context.Context) error {
		b, err := h.Bookings.Create(ctx, models.Booking{
			TurfID:    turfID,
			UserID:    su.ID,
			StartTime: start,
			EndTime:   end,
			Price:     price,
		})
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		if errors.Is(err, bookingstore.ErrOverlap) {
			httpjson.Fail(w, http.StatusConflict, bookingstore.ErrOverlap.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("create booking", err))
		return
	}
	httpjson.Created(w, created)
}

// ServeListByTurf returns a turf's confirmed bookings inside a window
// (default: the next 7 days).
//
// GET /bookings/turf/{turfID}?from&to (RFC 3339) → 200
func (h *Handler) ServeListByTurf(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	turfID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "turfID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid turf id")
		return
	}

	from := time.Now().UTC()
	to := from.Add(7 * 24 * time.Hour)
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			httpjson.Fail(w, http.StatusBadRequest, "to must be RFC 3339")
			return
		}
	}
	if !from.Before(to) {
		httpjson.Fail(w, http.StatusBadRequest, "from must be before to")
		return
	}

	bookings, err := h.Bookings.ListByTurf(ctx, turfID, from, to)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("list bookings", err))
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	httpjson.OK(w, bookings)
}

// ServeListMine returns the caller's bookings, newest first.
//
// GET /bookings/me?page&limit → 200
func (h *Handler) ServeListMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
		return
	}
	p, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	bookings, total, err := h.Bookings.ListByUser(ctx, su.ID, p.Skip(), p.Limit64())
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("list bookings", err))
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	httpjson.OKMeta(w, bookings, paging.NewMeta(total, p))
}

// HandleCancel cancels the caller's own booking, freeing the slot.
//
// POST /bookings/{bookingID}/cancel → 200/403/404
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "bookingID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("load booking", err))
		return
	}
	if booking.UserID != su.ID {
		httpjson.Fail(w, http.StatusForbidden, "you can only cancel your own booking")
		return
	}
	if booking.Status == models.BookingCancelled {
		httpjson.OK(w, booking)
		return
	}

	if err := h.Bookings.Cancel(ctx, id); err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("cancel booking", err))
		return
	}
	booking.Status = models.BookingCancelled
	httpjson.OK(w, booking)
}
