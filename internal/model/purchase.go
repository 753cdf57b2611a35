package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase links a user to a course. At most one exists per (UserID, CourseID);
// the composite unique index enforces it at the store.
type Purchase struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:char(36);not null;uniqueIndex:idx_purchase_user_course,priority:1"`
	CourseID  uuid.UUID `json:"courseId" gorm:"type:char(36);not null;uniqueIndex:idx_purchase_user_course,priority:2;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PurchaseReceipt is returned by a successful purchase.
type PurchaseReceipt struct {
	PurchaseID  uuid.UUID `json:"purchaseId"`
	CourseID    uuid.UUID `json:"courseId"`
	CourseTitle string    `json:"courseTitle"`
}
