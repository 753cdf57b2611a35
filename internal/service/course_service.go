package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"coursemarket/internal/auth"
	"coursemarket/internal/cache"
	apperr "coursemarket/internal/errors"
	"coursemarket/internal/model"
	"coursemarket/internal/repository"
)

const courseCacheTTL = 5 * time.Minute

// CreateCourseInput is a new course. Image is an optional source URL.
type CreateCourseInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Image       *string
}

// ListParams are raw paging inputs. Zero values take defaults.
type ListParams struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// CourseService handles catalog operations.
type CourseService interface {
	CreateCourse(ctx context.Context, caller auth.Identity, in CreateCourseInput) (*model.Course, error)
	UpdateCourse(ctx context.Context, caller auth.Identity, courseID uuid.UUID, upd model.CourseUpdate) (*model.Course, error)
	DeleteCourse(ctx context.Context, caller auth.Identity, courseID uuid.UUID) error
	ListOwnedCourses(ctx context.Context, caller auth.Identity, params ListParams) (*model.CoursePage, error)
	ListPublicCourses(ctx context.Context, params ListParams) (*model.CoursePage, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error)
}

// CourseCache is the read-through cache for single courses. Writes are tied
// to a generation counter so a read racing an update cannot re-cache stale data.
type CourseCache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	Generation(ctx context.Context, genKey string) (int64, bool)
	SetJSONAt(ctx context.Context, genKey string, gen int64, key string, v any, ttl time.Duration) bool
	Invalidate(ctx context.Context, genKey, key string)
}

type courseService struct {
	repo   repository.CourseRepository
	cache  CourseCache
	images ImageStore
	log    logrus.FieldLogger
}

// NewCourseService creates a new course service. cache and images may be nil.
func NewCourseService(repo repository.CourseRepository, courseCache CourseCache, images ImageStore, log logrus.FieldLogger) CourseService {
	if courseCache == nil {
		// a nil *cache.Client behaves as an always-empty cache
		courseCache = (*cache.Client)(nil)
	}
	return &courseService{
		repo:   repo,
		cache:  courseCache,
		images: images,
		log:    log,
	}
}

func (s *courseService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("course:%s", id.String())
}

func (s *courseService) generationKey(id uuid.UUID) string {
	return fmt.Sprintf("course:%s:gen", id.String())
}

func (s *courseService) invalidate(ctx context.Context, id uuid.UUID) {
	s.cache.Invalidate(ctx, s.generationKey(id), s.cacheKey(id))
}

// CreateCourse creates a course owned by the calling admin.
func (s *courseService) CreateCourse(ctx context.Context, caller auth.Identity, in CreateCourseInput) (*model.Course, error) {
	if err := caller.Require(auth.KindAdmin); err != nil {
		return nil, err
	}
	title, description := strings.TrimSpace(in.Title), strings.TrimSpace(in.Description)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	course := &model.Course{
		ID:           uuid.New(),
		OwnerAdminID: caller.ID,
		Title:        title,
		Description:  description,
		Price:        in.Price,
		ImageRef:     importImage(ctx, s.images, s.log, "courses", in.Image),
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, apperr.Internal("create course", err)
	}

	s.log.WithFields(logrus.Fields{"course_id": course.ID, "admin_id": caller.ID}).Info("course created")
	return course, nil
}

// UpdateCourse applies a partial update. Missing courses fail before ownership is checked.
func (s *courseService) UpdateCourse(ctx context.Context, caller auth.Identity, courseID uuid.UUID, upd model.CourseUpdate) (*model.Course, error) {
	if err := caller.Require(auth.KindAdmin); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, apperr.Validation("EMPTY_UPDATE", "at least one field must be provided")
	}
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if err := validateTitle(t); err != nil {
			return nil, err
		}
		upd.Title = &t
	}
	if upd.Description != nil {
		d := strings.TrimSpace(*upd.Description)
		if err := validateDescription(d); err != nil {
			return nil, err
		}
		upd.Description = &d
	}
	if upd.Price != nil {
		if err := validatePrice(*upd.Price); err != nil {
			return nil, err
		}
	}

	course, err := s.ownedCourse(ctx, caller, courseID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		course.Title = *upd.Title
	}
	if upd.Description != nil {
		course.Description = *upd.Description
	}
	if upd.Price != nil {
		course.Price = *upd.Price
	}
	if ref := importImage(ctx, s.images, s.log, "courses", upd.Image); ref != nil {
		course.ImageRef = ref
	}

	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrCourseNotFound
		}
		return nil, apperr.Internal("update course", err)
	}
	s.invalidate(ctx, courseID)
	return course, nil
}

// DeleteCourse removes a course owned by the caller. Purchases of it are kept.
func (s *courseService) DeleteCourse(ctx context.Context, caller auth.Identity, courseID uuid.UUID) error {
	if err := caller.Require(auth.KindAdmin); err != nil {
		return err
	}
	if _, err := s.ownedCourse(ctx, caller, courseID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrCourseNotFound
		}
		return apperr.Internal("delete course", err)
	}
	s.invalidate(ctx, courseID)

	s.log.WithFields(logrus.Fields{"course_id": courseID, "admin_id": caller.ID}).Info("course deleted")
	return nil
}

// ListOwnedCourses lists the caller's own courses.
func (s *courseService) ListOwnedCourses(ctx context.Context, caller auth.Identity, params ListParams) (*model.CoursePage, error) {
	if err := caller.Require(auth.KindAdmin); err != nil {
		return nil, err
	}
	q, err := buildQuery(params)
	if err != nil {
		return nil, err
	}
	owner := caller.ID
	q.OwnerAdminID = &owner
	return s.list(ctx, q)
}

// ListPublicCourses lists the whole catalog.
func (s *courseService) ListPublicCourses(ctx context.Context, params ListParams) (*model.CoursePage, error) {
	q, err := buildQuery(params)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, q)
}

// GetCourse returns one course, served from cache when possible.
func (s *courseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	var cached model.Course
	if s.cache.GetJSON(ctx, s.cacheKey(courseID), &cached) {
		return &cached, nil
	}
	// read before the row so an invalidation in between voids the write
	gen, cacheable := s.cache.Generation(ctx, s.generationKey(courseID))

	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrCourseNotFound
		}
		return nil, apperr.Internal("find course", err)
	}
	if cacheable {
		s.cache.SetJSONAt(ctx, s.generationKey(courseID), gen, s.cacheKey(courseID), course, courseCacheTTL)
	}
	return course, nil
}

func (s *courseService) ownedCourse(ctx context.Context, caller auth.Identity, courseID uuid.UUID) (*model.Course, error) {
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrCourseNotFound
		}
		return nil, apperr.Internal("find course", err)
	}
	if course.OwnerAdminID != caller.ID {
		return nil, apperr.ErrNotCourseOwner
	}
	return course, nil
}

func (s *courseService) list(ctx context.Context, q model.CourseQuery) (*model.CoursePage, error) {
	courses, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperr.Internal("list courses", err)
	}
	return &model.CoursePage{
		Courses:    courses,
		Pagination: model.NewPagination(q.Page, q.Limit, total),
	}, nil
}

// buildQuery applies defaults and rejects out-of-range paging input.
func buildQuery(p ListParams) (model.CourseQuery, error) {
	q := model.CourseQuery{Page: p.Page, Limit: p.Limit, SortBy: model.SortByCreatedAt, Desc: true}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Page < 1 || q.Page > MaxPage {
		return q, apperr.Validation("INVALID_PAGE", fmt.Sprintf("page must be between 1 and %d", MaxPage))
	}
	if q.Limit < 1 || q.Limit > MaxPageLimit {
		return q, apperr.Validation("INVALID_LIMIT", "limit must be between 1 and 100")
	}

	switch model.SortField(p.SortBy) {
	case "":
	case model.SortByCreatedAt, model.SortByUpdatedAt, model.SortByPrice, model.SortByTitle:
		q.SortBy = model.SortField(p.SortBy)
	default:
		return q, apperr.Validation("INVALID_SORT", "sortBy must be one of createdAt, updatedAt, price, title")
	}

	switch strings.ToLower(p.Order) {
	case "", "desc":
	case "asc":
		q.Desc = false
	default:
		return q, apperr.Validation("INVALID_ORDER", "order must be asc or desc")
	}
	return q, nil
}
