package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coursemarket/internal/model"
)

// PurchaseRepository defines purchase ledger operations.
type PurchaseRepository interface {
	// Create inserts a purchase. A second purchase of the same (user, course)
	// pair fails with ErrDuplicate from the unique index, even under races.
	Create(ctx context.Context, purchase *model.Purchase) error
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Purchase, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create creates a new purchase record.
func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return translate(r.db.WithContext(ctx).Create(purchase).Error)
}

// FindByUserAndCourse finds the purchase of courseID by userID.
func (r *purchaseRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&purchase).Error
	if err != nil {
		return nil, translate(err)
	}
	return &purchase, nil
}

// ListByUser lists a user's purchases, oldest first.
func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Purchase, error) {
	purchases := []model.Purchase{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&purchases).Error
	if err != nil {
		return nil, translate(err)
	}
	return purchases, nil
}
