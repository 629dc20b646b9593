// Package orgservice owns cross-entity organization operations: owner
// assignment and the cascade delete that keeps turfs, reviews, bookings,
// roles, and hosted images consistent when a tenant goes away.
package orgservice

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	bookingstore "github.com/fieldworks/turfhub/internal/app/store/bookings"
	organizationstore "github.com/fieldworks/turfhub/internal/app/store/organizations"
	permissionstore "github.com/fieldworks/turfhub/internal/app/store/permissions"
	rolestore "github.com/fieldworks/turfhub/internal/app/store/roles"
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
	orgs     *organizationstore.Store
	turfs    *turfstore.Store
	reviews  *turfreviewstore.Store
	bookings *bookingstore.Store
	users    *userstore.Store
	roles    *rolestore.Store
	perms    *permissionstore.Store
	runner   *txn.Runner
	images   ImageDeleter
	log      *zap.Logger
}

// New wires the service. images may be nil when no image store is configured.
func New(db *mongo.Database, runner *txn.Runner, images ImageDeleter, log *zap.Logger) *Service {
	return &Service{
		orgs:     organizationstore.New(db),
		turfs:    turfstore.New(db),
		reviews:  turfreviewstore.New(db),
		bookings: bookingstore.New(db),
		users:    userstore.New(db),
		roles:    rolestore.New(db),
		perms:    permissionstore.New(db),
		runner:   runner,
		images:   images,
		log:      log,
	}
}

// AssignOwner makes the user the organization's owner. The owner role is
// found or created (idempotent); the owner slot itself is single-assignment,
// so a second call conflicts and leaves the first owner in place.
func (s *Service) AssignOwner(ctx context.Context, orgID, userID primitive.ObjectID) error {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return apperr.NotFound("organization not found")
		}
		return apperr.Internal("load organization", err)
	}
	if org.OwnerID != nil {
		return apperr.Conflict("organization already has an owner")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("load user", err)
	}

	role, err := s.ownerRole(ctx, orgID)
	if err != nil {
		return err
	}

	err = s.runner.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.UpsertAssignment(ctx, userID, models.RoleAssignment{
			OrganizationID: orgID,
			RoleID:         role.ID,
		}); err != nil {
			return err
		}
		return s.orgs.SetOwner(ctx, orgID, userID)
	})
	if err != nil {
		return apperr.Internal("assign owner", err)
	}
	return nil
}

// ownerRole finds or creates the owner role for the organization, populated
// with every organization-scope permission.
func (s *Service) ownerRole(ctx context.Context, orgID primitive.ObjectID) (models.Role, error) {
	role, err := s.roles.GetByNameInOrg(ctx, orgID, models.OwnerRoleName)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, rolestore.ErrNotFound) {
		return models.Role{}, apperr.Internal("load owner role", err)
	}

	permIDs, err := s.perms.IDsByNames(ctx, models.OrganizationPermissions)
	if err != nil {
		return models.Role{}, apperr.Internal("resolve owner permissions", err)
	}
	role, err = s.roles.Create(ctx, models.Role{
		Name:          models.OwnerRoleName,
		Scope:         models.ScopeOrganization,
		ScopeOrgID:    &orgID,
		PermissionIDs: permIDs,
	})
	if err != nil {
		// Lost a race with a concurrent create; the existing role wins.
		if errors.Is(err, rolestore.ErrDuplicateRole) {
			role, err = s.roles.GetByNameInOrg(ctx, orgID, models.OwnerRoleName)
			if err == nil {
				return role, nil
			}
		}
		return models.Role{}, apperr.Internal("create owner role", err)
	}
	return role, nil
}

// Delete removes the organization and everything under it: turfs, their
// reviews and bookings, org-scoped roles, and user back-references. Hosted
// images are released only after the documents are gone.
func (s *Service) Delete(ctx context.Context, orgID primitive.ObjectID) error {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return apperr.NotFound("organization not found")
		}
		return apperr.Internal("load organization", err)
	}
	turfs, err := s.turfs.ListByOrganization(ctx, orgID)
	if err != nil {
		return apperr.Internal("list turfs", err)
	}

	var orphanedImages []models.Image
	orphanedImages = append(orphanedImages, org.Images...)
	for _, t := range turfs {
		orphanedImages = append(orphanedImages, t.Images...)
	}

	err = s.runner.WithTransaction(ctx, func(ctx context.Context) error {
		turfIDs, err := s.turfs.DeleteByOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		reviews, err := s.reviews.DeleteByTurfIDs(ctx, turfIDs)
		if err != nil {
			return err
		}
		reviewIDs := make([]primitive.ObjectID, 0, len(reviews))
		for _, r := range reviews {
			reviewIDs = append(reviewIDs, r.ID)
			orphanedImages = append(orphanedImages, r.Images...)
		}
		if err := s.users.RemoveReviewRefs(ctx, reviewIDs); err != nil {
			return err
		}
		if _, err := s.bookings.DeleteByTurfIDs(ctx, turfIDs); err != nil {
			return err
		}
		if _, err := s.roles.DeleteByOrg(ctx, orgID); err != nil {
			return err
		}
		if err := s.users.RemoveAssignmentsByOrg(ctx, orgID); err != nil {
			return err
		}
		_, err = s.orgs.Delete(ctx, orgID)
		return err
	})
	if err != nil {
		return apperr.Internal("delete organization", err)
	}

	s.releaseImages(ctx, orphanedImages)
	if s.log != nil {
		s.log.Info("organization deleted",
			zap.String("org_id", orgID.Hex()),
			zap.Int("turfs", len(turfs)))
	}
	return nil
}

// DeleteTurf removes one turf with its reviews and bookings.
func (s *Service) DeleteTurf(ctx context.Context, turfID primitive.ObjectID) error {
	turf, err := s.turfs.GetByID(ctx, turfID)
	if err != nil {
		if errors.Is(err, turfstore.ErrNotFound) {
			return apperr.NotFound("turf not found")
		}
		return apperr.Internal("load turf", err)
	}

	orphanedImages := append([]models.Image{}, turf.Images...)
	err = s.runner.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.turfs.Delete(ctx, turfID); err != nil {
			return err
		}
		reviews, err := s.reviews.DeleteByTurfIDs(ctx, []primitive.ObjectID{turfID})
		if err != nil {
			return err
		}
		reviewIDs := make([]primitive.ObjectID, 0, len(reviews))
		for _, r := range reviews {
			reviewIDs = append(reviewIDs, r.ID)
			orphanedImages = append(orphanedImages, r.Images...)
		}
		if err := s.users.RemoveReviewRefs(ctx, reviewIDs); err != nil {
			return err
		}
		_, err = s.bookings.DeleteByTurfIDs(ctx, []primitive.ObjectID{turfID})
		return err
	})
	if err != nil {
		return apperr.Internal("delete turf", err)
	}

	s.releaseImages(ctx, orphanedImages)
	return nil
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
