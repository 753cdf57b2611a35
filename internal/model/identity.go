package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin is a course creator. Admin ids never authorize as users.
type Admin struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Firstname    string    `json:"firstname" gorm:"size:100;not null"`
	Lastname     string    `json:"lastname" gorm:"size:100;not null"`
	ImageRef     *string   `json:"imageRef,omitempty" gorm:"size:1024"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// User is a course buyer.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Firstname    string    `json:"firstname" gorm:"size:100;not null"`
	Lastname     string    `json:"lastname" gorm:"size:100;not null"`
	ImageRef     *string   `json:"imageRef,omitempty" gorm:"size:1024"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile is the public view of either identity kind.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Email     string    `json:"email"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	ImageRef  *string   `json:"imageRef,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Profile returns the public view of a.
func (a *Admin) Profile() Profile {
	return Profile{
		ID:        a.ID,
		Kind:      "admin",
		Email:     a.Email,
		Firstname: a.Firstname,
		Lastname:  a.Lastname,
		ImageRef:  a.ImageRef,
		CreatedAt: a.CreatedAt,
	}
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Kind:      "user",
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		ImageRef:  u.ImageRef,
		CreatedAt: u.CreatedAt,
	}
}
