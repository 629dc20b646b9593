// Package organizations serves the tenant CRUD surface plus owner
// assignment. Create and update accept multipart forms so images ride along
// with the fields.
package organizations

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/fieldworks/turfhub/internal/app/features/shared/upload"
	orgservice "github.com/fieldworks/turfhub/internal/app/services/organizations"
	organizationstore "github.com/fieldworks/turfhub/internal/app/store/organizations"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/httpjson"
	"github.com/fieldworks/turfhub/internal/app/system/imagestore"
	"github.com/fieldworks/turfhub/internal/app/system/inputval"
	"github.com/fieldworks/turfhub/internal/app/system/paging"
	"github.com/fieldworks/turfhub/internal/app/system/sanitize"
	"github.com/fieldworks/turfhub/internal/app/system/timeouts"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

// Handler holds the organization feature's dependencies.
type Handler struct {
	Orgs   *organizationstore.Store
	Svc    *orgservice.Service
	Images *imagestore.Store
	Log    *zap.Logger
}

// NewHandler constructs the organizations Handler. images may be nil; image
// fields are then ignored.
func NewHandler(db *mongo.Database, svc *orgservice.Service, images *imagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Orgs:   organizationstore.New(db),
		Svc:    svc,
		Images: images,
		Log:    logger,
	}
}

// HandleCreate creates an organization from a multipart form.
//
// POST /organizations
// Fields: name (required), facilities (JSON array or CSV), location (JSON),
// images (≤5 files) → 201 {organization}
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	files, err := upload.Images(r, "images")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	name := sanitize.Text(r.FormValue("name"))
	if name == "" {
		httpjson.Fail(w, http.StatusBadRequest, "name is required")
		return
	}
	facilities, err := inputval.StringList("facilities", r.FormValue("facilities"))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Validation("%v", err))
		return
	}
	location, err := parseLocation(r.FormValue("location"))
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	stored, err := h.uploadImages(ctx, files)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("upload images", err))
		return
	}

	org, err := h.Orgs.Create(ctx, models.Organization{
		Name:       name,
		Facilities: sanitize.List(facilities),
		Location:   location,
		Images:     stored,
	})
	if err != nil {
		h.discardImages(ctx, stored)
		if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
			httpjson.Fail(w, http.StatusConflict, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("create organization", err))
		return
	}
	httpjson.Created(w, org)
}

// ServeList returns organizations, paged and sorted by folded name.
//
// GET /organizations?page&limit → 200 {data, meta}
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := paging.Parse(r)
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	total, err := h.Orgs.Count(ctx, bson.M{})
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("count organizations", err))
		return
	}
	orgs, err := h.Orgs.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(p.Limit64()))
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("list organizations", err))
		return
	}
	httpjson.OKMeta(w, orgs, paging.NewMeta(total, p))
}

// ServeView returns one organization.
//
// GET /organizations/{orgID} → 200/404
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid organization id")
		return
	}
	org, err := h.Orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("load organization", err))
		return
	}
	httpjson.OK(w, org)
}

// HandleUpdate modifies an organization from a multipart form. Only supplied
// fields change; new images are appended.
//
// PUT /organizations/{orgID} → 200/404
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	files, err := upload.Images(r, "images")
	if err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}

	set := bson.M{}
	if name := sanitize.Text(r.FormValue("name")); name != "" {
		set["name"] = name
	}
	if raw := r.FormValue("facilities"); raw != "" {
		facilities, err := inputval.StringList("facilities", raw)
		if err != nil {
			httpjson.Error(w, h.Log, apperr.Validation("%v", err))
			return
		}
		set["facilities"] = sanitize.List(facilities)
	}
	if raw := r.FormValue("location"); raw != "" {
		location, err := parseLocation(raw)
		if err != nil {
			httpjson.Error(w, h.Log, err)
			return
		}
		set["location"] = location
	}

	if len(set) > 0 {
		if err := h.Orgs.Update(ctx, id, set); err != nil {
			switch {
			case errors.Is(err, organizationstore.ErrNotFound):
				httpjson.Fail(w, http.StatusNotFound, err.Error())
			case errors.Is(err, organizationstore.ErrDuplicateOrganization):
				httpjson.Fail(w, http.StatusConflict, err.Error())
			default:
				httpjson.Error(w, h.Log, apperr.Internal("update organization", err))
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
		if err := h.Orgs.AddImages(ctx, id, stored); err != nil {
			h.discardImages(ctx, stored)
			if errors.Is(err, organizationstore.ErrNotFound) {
				httpjson.Fail(w, http.StatusNotFound, err.Error())
				return
			}
			httpjson.Error(w, h.Log, apperr.Internal("record images", err))
			return
		}
	}

	org, err := h.Orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			httpjson.Fail(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Error(w, h.Log, apperr.Internal("reload organization", err))
		return
	}
	httpjson.OK(w, org)
}

// HandleDelete removes the organization and cascades to its turfs, reviews,
// bookings, roles, and hosted images.
//
// DELETE /organizations/{orgID} → 200/404
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid organization id")
		return
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	httpjson.OK(w, map[string]string{"message": "organization deleted"})
}

// HandleAssignOwner makes a user the organization's owner and returns the
// updated organization.
//
// POST /organizations/{orgID}/assign-owner {user_id} → 200/404/409
func (h *Handler) HandleAssignOwner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid organization id")
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.Svc.AssignOwner(ctx, orgID, userID); err != nil {
		httpjson.Error(w, h.Log, err)
		return
	}
	org, err := h.Orgs.GetByID(ctx, orgID)
	if err != nil {
		httpjson.Error(w, h.Log, apperr.Internal("reload organization", err))
		return
	}
	httpjson.OK(w, org)
}

/* -------------------------------------------------------------------------- */
/* Helpers                                                                    */
/* -------------------------------------------------------------------------- */

func parseLocation(raw string) (models.Location, error) {
	var loc models.Location
	if raw == "" {
		return loc, nil
	}
	if err := inputval.JSONObject("location", raw, &loc); err != nil {
		return loc, apperr.Validation("%v", err)
	}
	if loc.Point.Type != "" {
		if loc.Point.Type != "Point" || len(loc.Point.Coordinates) != 2 {
			return loc, apperr.Validation("location.point must be a GeoJSON Point with [lng, lat]")
		}
		lng, lat := loc.Point.Coordinates[0], loc.Point.Coordinates[1]
		if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
			return loc, apperr.Validation("location.point coordinates out of range")
		}
	}
	loc.Address = sanitize.Text(loc.Address)
	loc.City = sanitize.Text(loc.City)
	loc.State = sanitize.Text(loc.State)
	return loc, nil
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
