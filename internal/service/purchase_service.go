package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"coursemarket/internal/auth"
	apperr "coursemarket/internal/errors"
	"coursemarket/internal/metrics"
	"coursemarket/internal/model"
	"coursemarket/internal/repository"
)

// PurchaseService handles course purchases by users.
type PurchaseService interface {
	Purchase(ctx context.Context, caller auth.Identity, courseID uuid.UUID) (*model.PurchaseReceipt, error)
	ListPurchasedCourses(ctx context.Context, caller auth.Identity) ([]model.Course, error)
}

type purchaseService struct {
	purchases repository.PurchaseRepository
	courses   repository.CourseRepository
	log       logrus.FieldLogger
}

// NewPurchaseService creates a new purchase service.
func NewPurchaseService(purchases repository.PurchaseRepository, courses repository.CourseRepository, log logrus.FieldLogger) PurchaseService {
	return &purchaseService{
		purchases: purchases,
		courses:   courses,
		log:       log,
	}
}

// Purchase records that caller bought courseID. A duplicate-key error from
// the store is reported as the same conflict as the pre-check.
func (s *purchaseService) Purchase(ctx context.Context, caller auth.Identity, courseID uuid.UUID) (*model.PurchaseReceipt, error) {
	if err := caller.Require(auth.KindUser); err != nil {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.ObservePurchase(metrics.PurchaseNotFound)
			return nil, apperr.ErrCourseNotFound
		}
		metrics.ObservePurchase(metrics.PurchaseError)
		return nil, apperr.Internal("find course", err)
	}

	_, err = s.purchases.FindByUserAndCourse(ctx, caller.ID, courseID)
	switch {
	case err == nil:
		metrics.ObservePurchase(metrics.PurchaseDuplicate)
		return nil, apperr.ErrAlreadyPurchased
	case !errors.Is(err, repository.ErrNotFound):
		metrics.ObservePurchase(metrics.PurchaseError)
		return nil, apperr.Internal("check purchase", err)
	}

	purchase := &model.Purchase{ID: uuid.New(), UserID: caller.ID, CourseID: courseID}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.ObservePurchase(metrics.PurchaseDuplicate)
			return nil, apperr.ErrAlreadyPurchased.Wrap(err)
		}
		metrics.ObservePurchase(metrics.PurchaseError)
		return nil, apperr.Internal("create purchase", err)
	}

	metrics.ObservePurchase(metrics.PurchaseCreated)
	s.log.WithFields(logrus.Fields{"purchase_id": purchase.ID, "user_id": caller.ID, "course_id": courseID}).Info("course purchased")
	return &model.PurchaseReceipt{
		PurchaseID:  purchase.ID,
		CourseID:    course.ID,
		CourseTitle: course.Title,
	}, nil
}

// ListPurchasedCourses returns the caller's purchased courses in purchase
// order. Purchases whose course was deleted are skipped.
func (s *purchaseService) ListPurchasedCourses(ctx context.Context, caller auth.Identity) ([]model.Course, error) {
	if err := caller.Require(auth.KindUser); err != nil {
		return nil, err
	}

	purchases, err := s.purchases.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Internal("list purchases", err)
	}
	ids := make([]uuid.UUID, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.CourseID)
	}

	found, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("resolve purchased courses", err)
	}
	byID := make(map[uuid.UUID]model.Course, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}

	courses := make([]model.Course, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			s.log.WithFields(logrus.Fields{"user_id": caller.ID, "course_id": id}).Debug("purchased course no longer exists")
			continue
		}
		courses = append(courses, c)
	}
	return courses, nil
}
