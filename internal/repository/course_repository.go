package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursemarket/internal/model"
)

// CourseRepository defines course persistence operations.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Course, error)
	List(ctx context.Context, q model.CourseQuery) ([]model.Course, int64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Create creates a new course.
func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return translate(r.db.WithContext(ctx).Create(course).Error)
}

// Update writes all mutable fields of an existing course.
func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	res := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", course.ID).
		Select("title", "description", "price", "image_ref", "updated_at").
		Updates(course)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a course. Purchases referencing it are left in place.
func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID finds a course by ID.
func (r *courseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

// FindByIDs returns the courses that still exist among ids, in no particular order.
func (r *courseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Course, error) {
	if len(ids) == 0 {
		return []model.Course{}, nil
	}
	var courses []model.Course
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, translate(err)
	}
	return courses, nil
}

// List returns one page of courses and the total matching count.
func (r *courseRepository) List(ctx context.Context, q model.CourseQuery) ([]model.Course, int64, error) {
	base := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&model.Course{})
		if q.OwnerAdminID != nil {
			tx = tx.Where("owner_admin_id = ?", *q.OwnerAdminID)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	courses := []model.Course{}
	if total == 0 {
		return courses, 0, nil
	}
	err := base().
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortBy.Column()}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&courses).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return courses, total, nil
}
