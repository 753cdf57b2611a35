package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Course is a catalog entry owned by exactly one admin.
type Course struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerAdminID uuid.UUID       `json:"ownerAdminId" gorm:"type:char(36);not null;index"`
	Title        string          `json:"title" gorm:"size:100;not null;index"`
	Description  string          `json:"description" gorm:"type:text;not null"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null;default:0"`
	ImageRef     *string         `json:"imageRef,omitempty" gorm:"size:1024"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CourseUpdate carries a partial update; nil fields are left untouched.
// Image is a source URL to import, not a stored ref.
type CourseUpdate struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Image       *string
}

// Empty reports whether no field is set.
func (u CourseUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Price == nil && u.Image == nil
}

// SortField is a sortable course column.
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByPrice     SortField = "price"
	SortByTitle     SortField = "title"
)

// Column returns the storage column (and document field) for f.
func (f SortField) Column() string {
	switch f {
	case SortByUpdatedAt:
		return "updated_at"
	case SortByPrice:
		return "price"
	case SortByTitle:
		return "title"
	default:
		return "created_at"
	}
}

// CourseQuery filters and pages a course listing.
type CourseQuery struct {
	OwnerAdminID *uuid.UUID
	Page         int
	Limit        int
	SortBy       SortField
	Desc         bool
}

// Offset returns the number of rows to skip.
func (q CourseQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// Pagination describes a page of a listing.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalCourses int64 `json:"totalCourses"`
	Limit        int   `json:"limit"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

// NewPagination computes page metadata. totalPages is ceil(total/limit).
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalCourses: total,
		Limit:        limit,
		HasNextPage:  int64(page)*int64(limit) < total,
		HasPrevPage:  page > 1,
	}
}

// CoursePage is one page of courses.
type CoursePage struct {
	Courses    []Course   `json:"courses"`
	Pagination Pagination `json:"pagination"`
}
