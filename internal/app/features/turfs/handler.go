// Package turfs serves the turf CRUD surface, the public filtered listing,
// and the per-turf review summary.
package turfs

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fieldworks/turfhub/internal/app/features/shared/upload"
	orgservice "github.com/fieldworks/turfhub/internal/app/services/organizations"
	reviewservice "github.com/fieldworks/turfhub/internal/app/services/reviews"
	organizationstore "github.com/fieldworks/turfhub/internal/app/store/organizations"
	turfqueries "github.com/fieldworks/turfhub/internal/app/store/queries/turfqueries"
	turfstore "github.com/fieldworks/turfhub/internal/app/store/turfs"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/authz"
	"github.com/fieldworks/turfhub/internal/app/system/httpjson"
	"github.com/fieldworks/turfhub/internal/app/system/imagestore"
	"github.com/fieldworks/turfhub/internal/app/system/paging"
	"github.com/fieldworks/turfhub/internal/app/system/timeouts"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

// Handler holds the turf feature's dependencies.
type Handler struct {
	DB      *mongo.Database
	Turfs   *turfstore.Store
	Orgs    *organizationstore.Store
	OrgSvc  *orgservice.Service
	Reviews *reviewservice.Service
	Checker *authz.Checker
	Images  *imagestore.Store
	Log     *zap.Logger
}

// NewHandler constructs the turfs Handler. images may be nil.
func NewHandler(db *mongo.Database, orgSvc *orgservice.Service, reviews *reviewservice.Service, checker *authz.Checker, images *imagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Turfs:   turfstore.New(db),
		Orgs:    organizationstore.New(db),
		OrgSvc:  orgSvc,
		Reviews: reviews,
		Checker: checker,
		Images:  images,
		Log:     logger,
	}
}

// HandleCreate creates a turf from a multipart form. The caller needs
// turf:create in the owning organization; the org id comes from the form,
// so the check happens here rather than in middleware.
//
// POST /turfs
// Fields: organization_id, name, base_price (required); sports, team_size,
// operating_hours (JSON), images → 201 {turf}
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	files, err := upload.Images(r, "images")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	in, err := parseTurfForm(r, true)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	if !h.allow(w, r, in.OrganizationID, "turf:create") {
		return
	}
	if _, err := h.Orgs.GetByID(ctx, in.OrganizationID); err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("load organization", err))
		return
	}

	stored, err := h.uploadImages(ctx, files)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("upload images", err))
		return
	}

	turf, err := h.Turfs.Create(ctx, models.Turf{
		Name:           in.Name,
		OrganizationID: in.OrganizationID,
		Sports:         in.Sports,
		BasePrice:      in.BasePrice,
		TeamSize:       in.TeamSize,
		OperatingHours: in.OperatingHours,
		Images:         stored,
	})
	if err != nil {
		h.discardImages(ctx, stored)
		if errors.Is(err, turfstore.ErrDuplicateTurf) {
			httpjson.Fail(w, http.StatusConflict, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("create turf", err))
		return
	}
	httpjson.Created(w, turf)
}

// ServeList runs the public filtered listing.
//
// GET /turfs?minPrice&maxPrice&teamSize&sports&facilities&day&time&lng&lat&radius&page&limit
// → 200 {data, meta}
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	opts, err := parseFilter(r, p)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	rows, total, err := turfqueries.Filter(ctx, h.DB, opts)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("filter turfs", err))
		return
	}
	if rows == nil {
		rows = []turfqueries.TurfWithOrg{}
	}
	httpjson.OKMeta(w, rows, paging.NewMeta(total, p))
}

// ServeView returns one turf.
//
// GET /turfs/{turfID} → 200/404
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "turfID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid turf id")
		return
	}
	turf, err := h.Turfs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, turfstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("load turf", err))
		return
	}
	httpjson.OK(w, turf)
}

// HandleUpdate modifies a turf. Caller needs turf:update in the owning org.
//
// PUT /turfs/{turfID} → 200/404
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "turfID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid turf id")
		return
	}
	turf, err := h.Turfs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, turfstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("load turf", err))
		return
	}
	if !h.allow(w, r, turf.OrganizationID, "turf:update") {
		return
	}

	files, err := upload.Images(r, "images")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	in, err := parseTurfForm(r, false)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	if in.Name != "" {
		set["name"] = in.Name
	}
	if in.Sports != nil {
		set["sports"] = in.Sports
	}
	if in.HasBasePrice {
		set["base_price"] = in.BasePrice
	}
	if in.TeamSize != 0 {
		set["team_size"] = in.TeamSize
	}
	if in.OperatingHours != nil {
		set["operating_hours"] = in.OperatingHours
	}
	if len(set) > 0 {
		if err := h.Turfs.Update(ctx, id, set); err != nil {
			switch {
			case errors.Is(err, turfstore.ErrNotFound):
				httpjson.Fail(w, http.StatusNotFound, err.Error())
			case errors.Is(err, turfstore.ErrDuplicateTurf):
				httpjson.Fail(w, http.StatusConflict, err.Error())
			default:
				httpjson.Error(w, h.Log, apperr.Internal("update turf", err))
			}
			return
		}
	}

	stored, err := h.uploadImages(ctx, files)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("upload images", err))
		return
	}
	if len(stored) > 0 {
		if err := h.Turfs.AddImages(ctx, id, stored); err != nil {
			h.discardImages(ctx, stored)
			httpjson.Error(w, h.Log, apperr.Internal("record images", err))
			return
		}
	}

	updated, err := h.Turfs.GetByID(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("reload turf", err))
		return
	}
	httpjson.OK(w, updated)
}

// HandleDelete removes a turf and its reviews and bookings. Caller needs
// turf:delete in the owning org.
//
// DELETE /turfs/{turfID} → 200/404
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "turfID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid turf id")
		return
	}
	turf, err := h.Turfs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, turfstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("load turf", err))
		return
	}
	if !h.allow(w, r, turf.OrganizationID, "turf:delete") {
		return
	}

	if err := h.OrgSvc.DeleteTurf(ctx, id); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, map[string]string{"message": "turf deleted"})
}

// ServeReviewSummary returns {average_rating, review_count} for a turf;
// zeros when it has no reviews.
//
// GET /turfs/{turfID}/review-summary → 200/404
func (h *Handler) ServeReviewSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "turfID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid turf id")
		return
	}
	stats, err := h.Reviews.TurfSummary(ctx, id)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, map[string]any{
		"average_rating": stats.Average,
		"review_count":   stats.Count,
	})
}

// allow enforces an org-scoped permission, writing the error response and
// returning false when the caller may not proceed.
func (h *Handler) allow(w http.ResponseWriter, r *http.Request, orgID primitive.ObjectID, action string) bool {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, http.StatusUnauthorized, "sign-in required")
		return false
	}
	allowed, err := h.Checker.Can(r.Context(), su.ID, orgID, action)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("permission check failed", err))
		return false
	}
	if !allowed {
		httpjson.Fail(w, http.StatusForbidden, "permission denied")
		return false
	}
	return true
}

func (h *Handler) uploadImages(ctx context.Context, files []imagestore.File) ([]models.Image, error) {
	if h.Images == nil || len(files) == 0 {
		return []models.Image{}, nil
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
