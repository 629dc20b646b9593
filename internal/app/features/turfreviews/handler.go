// Package turfreviews serves the review endpoints: create, edit, delete,
// and the filtered listings with rating statistics.
package turfreviews

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fieldworks/turfhub/internal/app/features/shared/upload"
	reviewservice "github.com/fieldworks/turfhub/internal/app/services/reviews"
	reviewqueries "github.com/fieldworks/turfhub/internal/app/store/queries/reviewqueries"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/httpjson"
	"github.com/fieldworks/turfhub/internal/app/system/imagestore"
	"github.com/fieldworks/turfhub/internal/app/system/inputval"
	"github.com/fieldworks/turfhub/internal/app/system/paging"
	"github.com/fieldworks/turfhub/internal/app/system/sanitize"
	"github.com/fieldworks/turfhub/internal/app/system/timeouts"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

// Handler holds the review feature's dependencies.
type Handler struct {
	Svc    *reviewservice.Service
	Images *imagestore.Store
	Log    *zap.Logger
}

// NewHandler constructs the reviews Handler. images may be nil.
func NewHandler(svc *reviewservice.Service, images *imagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Images: images, Log: logger}
}

// listResponse carries one page of reviews and the stats over the whole
// filtered set.
type listResponse struct {
	Reviews       any           `json:"reviews"`
	AverageRating float64       `json:"average_rating"`
	ReviewCount   int64         `json:"review_count"`
	Histogram     map[int]int64 `json:"histogram"`
}

// HandleCreate creates a review from a multipart form.
//
// POST /turf-review
// Fields: turf_id, rating (required); review, images → 201
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
		return
	}

	files, err := upload.Images(r, "images")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	turfID, err := primitive.ObjectIDFromHex(r.FormValue("turf_id"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "turf_id is not a valid id")
		return
	}
	rating, err := inputval.Int("rating", r.FormValue("rating"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("%v", err))
		return
	}
	if rating == nil {
		httpjson.Fail(w, http.StatusBadRequest, "rating is required")
		return
	}
	text := sanitize.Text(r.FormValue("review"))

	images, err := h.uploadImages(ctx, files)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("upload images", err))
		return
	}

	review, err := h.Svc.Create(ctx, turfID, su.ID, *rating, text, images)
	if err != nil {
		h.discardImages(ctx, images)
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.Created(w, review)
}

// ServeListByTurf returns one page of a turf's reviews with author
// summaries, plus average/count/histogram over the filtered set.
//
// GET /turf-review/turf/{turfID}?minRating&maxRating&page&limit&sortBy&sortOrder
func (h *Handler) ServeListByTurf(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	turfID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "turfID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid turf id")
		return
	}
	p, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	opts, err := parseListOptions(r, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	rows, stats, err := h.Svc.ListByTurf(ctx, turfID, opts)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if rows == nil {
		rows = []reviewqueries.ReviewWithAuthor{}
	}
	httpjson.OKMeta(w, listResponse{
		Reviews:       rows,
		AverageRating: stats.Average,
		ReviewCount:   stats.Count,
		Histogram:     stats.Histogram,
	}, paging.NewMeta(stats.Count, p))
}

// ServeListMine returns the caller's reviews with turf summaries.
//
// GET /turf-review/user/me?minRating&maxRating&page&limit&sortBy&sortOrder
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
	opts, err := parseListOptions(r, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	rows, stats, err := h.Svc.ListByUser(ctx, su.ID, opts)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	if rows == nil {
		rows = []reviewqueries.ReviewWithTurf{}
	}
	httpjson.OKMeta(w, listResponse{
		Reviews:       rows,
		AverageRating: stats.Average,
		ReviewCount:   stats.Count,
		Histogram:     stats.Histogram,
	}, paging.NewMeta(stats.Count, p))
}

// HandleUpdate edits the caller's own review.
//
// PUT /turf-review/{reviewID} → 200/403/404
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reviewID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid review id")
		return
	}

	files, err := upload.Images(r, "images")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	var rating int
	if raw := r.FormValue("rating"); raw != "" {
		n, err := inputval.Int("rating", raw)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Validation("%v", err))
			return
		}
		rating = *n
	}
	var text *string
	if raw := r.FormValue("review"); raw != "" {
		clean := sanitize.Text(raw)
		text = &clean
	}

	images, err := h.uploadImages(ctx, files)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("upload images", err))
		return
	}
	var replacement []models.Image
	if len(images) > 0 {
		replacement = images
	}

	review, err := h.Svc.Update(ctx, reviewID, su.ID, rating, text, replacement)
	if err != nil {
		h.discardImages(ctx, images)
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, review)
}

// HandleDelete removes the caller's own review.
//
// DELETE /turf-review/{reviewID} → 200/403/404
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "reviewID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid review id")
		return
	}
	if err := h.Svc.Delete(ctx, reviewID, su.ID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, map[string]string{"message": "review deleted"})
}

/* -------------------------------------------------------------------------- */
/* Helpers                                                                    */
/* -------------------------------------------------------------------------- */

// parseListOptions converts the listing query string into typed options.
func parseListOptions(r *http.Request, p paging.Params) (reviewqueries.ListOptions, error) {
	q := r.URL.Query()
	opts := reviewqueries.ListOptions{
		Skip:  p.Skip(),
		Limit: p.Limit64(),
	}

	min, err := inputval.Int("minRating", q.Get("minRating"))
	if err != nil {
		return opts, apperr.Validation("%v", err)
	}
	max, err := inputval.Int("maxRating", q.Get("maxRating"))
	if err != nil {
		return opts, apperr.Validation("%v", err)
	}
	if min != nil {
		if *min < models.MinRating || *min > models.MaxRating {
			return opts, apperr.Validation("minRating must be between %d and %d", models.MinRating, models.MaxRating)
		}
		opts.MinRating = *min
	}
	if max != nil {
		if *max < models.MinRating || *max > models.MaxRating {
			return opts, apperr.Validation("maxRating must be between %d and %d", models.MinRating, models.MaxRating)
		}
		opts.MaxRating = *max
	}
	if min != nil && max != nil && *min > *max {
		return opts, apperr.Validation("minRating cannot exceed maxRating")
	}

	switch sortBy := q.Get("sortBy"); sortBy {
	case "", "created_at", "rating":
		opts.SortBy = sortBy
	default:
		return opts, apperr.Validation("sortBy must be created_at or rating")
	}
	switch order := q.Get("sortOrder"); order {
	case "", "desc":
	case "asc":
		opts.SortAsc = true
	default:
		return opts, apperr.Validation("sortOrder must be asc or desc")
	}

	return opts, nil
}

func (h *Handler) uploadImages(ctx context.Context, files []imagestore.File) ([]models.Image, error) {
	if h.Images == nil || len(files) == 0 {
		return nil, nil
	}
	stored, err := h.Images.UploadAll(ctx, files)
	if err != nil {
		return nil, err
	}
	images := make([]models.Image, 0, len(stored))
	for _, s := range stored {
		images = append(images, models.Image{URL: s.URL, Key: s.Key})
	}
	return images, nil
}

func (h *Handler) discardImages(ctx context.Context, images []models.Image) {
	if h.Images == nil || len(images) == 0 {
		return
	}
	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.Key)
	}
	h.Images.DeleteAll(ctx, keys)
}
