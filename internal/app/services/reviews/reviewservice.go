// Package reviewservice owns the review lifecycle: creation and deletion
// keep the review document and the back-reference arrays on the user and
// turf consistent, under a transaction when the deployment supports one.
package reviewservice

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	reviewqueries "github.com/fieldworks/turfhub/internal/app/store/queries/reviewqueries"
	turfstore "github.com/fieldworks/turfhub/internal/app/store/turfs"
	turfreviewstore "github.com/fieldworks/turfhub/internal/app/store/turfreviews"
	userstore "github.com/fieldworks/turfhub/internal/app/store/users"
	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"github.com/fieldworks/turfhub/internal/app/system/txn"
	"github.com/fieldworks/turfhub/internal/domain/models"
)

// ImageDeleter releases hosted images after their owning documents are gone.
type ImageDeleter interface {
	DeleteAll(ctx context.Context, keys []string)
}

type Service struct {
	db      *mongo.Database
	reviews *turfreviewstore.Store
	turfs   *turfstore.Store
	users   *userstore.Store
	runner  *txn.Runner
	images  ImageDeleter
	log     *zap.Logger
}

// New wires the service. images may be nil when no image store is
// configured; deletes then skip the release step.
func New(db *mongo.Database, runner *txn.Runner, images ImageDeleter, log *zap.Logger) *Service {
	return &Service{
		db:      db,
		reviews: turfreviewstore.New(db),
		turfs:   turfstore.New(db),
		users:   userstore.New(db),
		runner:  runner,
		images:  images,
		log:     log,
	}
}

// Create inserts a review and pushes its id onto both back-reference arrays.
// The unique (user, turf) index is the arbiter for duplicates, so two
// concurrent creates cannot both land.
func (s *Service) Create(ctx context.Context, turfID, userID primitive.ObjectID, rating int, text string, images []models.Image) (models.TurfReview, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return models.TurfReview{}, apperr.Validation("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	if _, err := s.turfs.GetByID(ctx, turfID); err != nil {
		if errors.Is(err, turfstore.ErrNotFound) {
			return models.TurfReview{}, apperr.NotFound("turf not found")
		}
		return models.TurfReview{}, apperr.Internal("load turf", err)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return models.TurfReview{}, apperr.NotFound("user not found")
		}
		return models.TurfReview{}, apperr.Internal("load user", err)
	}

	var created models.TurfReview
	err := s.runner.WithTransaction(ctx, func(ctx context.Context) error {
		review, err := s.reviews.Create(ctx, models.TurfReview{
			TurfID: turfID,
			UserID: userID,
			Rating: rating,
			Review: text,
			Images: images,
		})
		if err != nil {
			return err
		}
		if err := s.users.AddReviewRef(ctx, userID, review.ID); err != nil {
			return err
		}
		if err := s.turfs.AddReviewRef(ctx, turfID, review.ID); err != nil {
			return err
		}
		created = review
		return nil
	})
	if err != nil {
		if errors.Is(err, turfreviewstore.ErrDuplicateReview) {
			return models.TurfReview{}, apperr.Conflict("you have already reviewed this turf")
		}
		return models.TurfReview{}, apperr.Internal("create review", err)
	}
	return created, nil
}

// Update applies the supplied fields to the caller's own review. rating of 0
// and nil text/images leave those fields untouched. When images are supplied
// they replace the old set, and the replaced objects are released.
func (s *Service) Update(ctx context.Context, reviewID, userID primitive.ObjectID, rating int, text *string, images []models.Image) (models.TurfReview, error) {
	if rating != 0 && (rating < models.MinRating || rating > models.MaxRating) {
		return models.TurfReview{}, apperr.Validation("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, turfreviewstore.ErrNotFound) {
			return models.TurfReview{}, apperr.NotFound("review not found")
		}
		return models.TurfReview{}, apperr.Internal("load review", err)
	}
	if review.UserID != userID {
		return models.TurfReview{}, apperr.Forbidden("you can only edit your own review")
	}

	// New images replace the old set, so the old objects become orphans.
	var replaced []models.Image
	if images != nil {
		replaced = review.Images
	}

	if err := s.reviews.Update(ctx, reviewID, rating, text, images); err != nil {
		return models.TurfReview{}, apperr.Internal("update review", err)
	}
	s.releaseImages(ctx, replaced)

	updated, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return models.TurfReview{}, apperr.Internal("reload review", err)
	}
	return updated, nil
}

// Delete removes the caller's own review, pulls the id from both
// back-reference arrays, and releases hosted images once the documents are
// gone.
func (s *Service) Delete(ctx context.Context, reviewID, userID primitive.ObjectID) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, turfreviewstore.ErrNotFound) {
			return apperr.NotFound("review not found")
		}
		return apperr.Internal("load review", err)
	}
	if review.UserID != userID {
		return apperr.Forbidden("you can only delete your own review")
	}

	err = s.runner.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.reviews.Delete(ctx, reviewID); err != nil {
			return err
		}
		if err := s.users.RemoveReviewRef(ctx, review.UserID, reviewID); err != nil {
			return err
		}
		return s.turfs.RemoveReviewRef(ctx, review.TurfID, reviewID)
	})
	if err != nil {
		return apperr.Internal("delete review", err)
	}

	s.releaseImages(ctx, review.Images)
	return nil
}

// ListByTurf returns one page of a turf's reviews plus stats over the
// filtered set.
func (s *Service) ListByTurf(ctx context.Context, turfID primitive.ObjectID, opts reviewqueries.ListOptions) ([]reviewqueries.ReviewWithAuthor, reviewqueries.Stats, error) {
	if _, err := s.turfs.GetByID(ctx, turfID); err != nil {
		if errors.Is(err, turfstore.ErrNotFound) {
			return nil, reviewqueries.Stats{}, apperr.NotFound("turf not found")
		}
		return nil, reviewqueries.Stats{}, apperr.Internal("load turf", err)
	}
	rows, stats, err := reviewqueries.ListByTurf(ctx, s.db, turfID, opts)
	if err != nil {
		return nil, reviewqueries.Stats{}, apperr.Internal("list reviews", err)
	}
	return rows, stats, nil
}

// ListByUser returns one page of a user's reviews plus stats over the
// filtered set.
func (s *Service) ListByUser(ctx context.Context, userID primitive.ObjectID, opts reviewqueries.ListOptions) ([]reviewqueries.ReviewWithTurf, reviewqueries.Stats, error) {
	rows, stats, err := reviewqueries.ListByUser(ctx, s.db, userID, opts)
	if err != nil {
		return nil, reviewqueries.Stats{}, apperr.Internal("list reviews", err)
	}
	return rows, stats, nil
}

// TurfSummary returns {averageRating, reviewCount} for a turf; {0,0} when
// the turf has no reviews.
func (s *Service) TurfSummary(ctx context.Context, turfID primitive.ObjectID) (reviewqueries.Stats, error) {
	if _, err := s.turfs.GetByID(ctx, turfID); err != nil {
		if errors.Is(err, turfstore.ErrNotFound) {
			return reviewqueries.Stats{}, apperr.NotFound("turf not found")
		}
		return reviewqueries.Stats{}, apperr.Internal("load turf", err)
	}
	stats, err := reviewqueries.TurfRatingStats(ctx, s.db, turfID)
	if err != nil {
		return reviewqueries.Stats{}, apperr.Internal("rating stats", err)
	}
	return stats, nil
}

func (s *Service) releaseImages(ctx context.Context, images []models.Image) {
	if s.images == nil || len(images) == 0 {
		return
	}
	keys := make([]string, 0, len(images))
	for _, img := range images {
		if img.Key != "" {
			keys = append(keys, img.Key)
		}
	}
	s.images.DeleteAll(ctx, keys)
}
