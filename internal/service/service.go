package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	apperr "coursemarket/internal/errors"
)

// Field limits.
const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes     = 72
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	DefaultPageLimit     = 10
	MaxPageLimit         = 100
	// MaxPage keeps (page-1)*limit within int.
	MaxPage = math.MaxInt / MaxPageLimit
	// PriceScale is the number of decimal places a price may carry.
	PriceScale = 2
)

// MaxPrice is the largest accepted course price.
var MaxPrice = decimal.NewFromInt(999999)

// ImageStore imports an image from a source URL and returns its public ref.
type ImageStore interface {
	ImportImage(ctx context.Context, prefix, sourceURL string) (string, error)
}

var validate = validator.New()

// importImage stores src when given. Failures are logged and yield nil so the
// owning entity is still saved.
func importImage(ctx context.Context, images ImageStore, log logrus.FieldLogger, prefix string, src *string) *string {
	if src == nil || strings.TrimSpace(*src) == "" {
		return nil
	}
	if images == nil {
		log.WithField("prefix", prefix).Warn("image supplied but object storage is disabled")
		return nil
	}
	ref, err := images.ImportImage(ctx, prefix, strings.TrimSpace(*src))
	if err != nil {
		log.WithError(err).WithField("prefix", prefix).Warn("image upload failed, saving without image")
		return nil
	}
	return &ref
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return apperr.Validation("INVALID_EMAIL", "email must be a valid address")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperr.Validation("INVALID_PASSWORD", "password must be at least 8 characters")
	}
	if len(password) > MaxPasswordBytes {
		return apperr.Validation("INVALID_PASSWORD", "password must be at most 72 bytes")
	}
	return nil
}

func validateName(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation("INVALID_NAME", field+" is required")
	}
	if utf8.RuneCountInString(value) > 100 {
		return apperr.Validation("INVALID_NAME", field+" must be at most 100 characters")
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Validation("INVALID_TITLE", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperr.Validation("INVALID_TITLE", "title must be at most 100 characters")
	}
	return nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return apperr.Validation("INVALID_DESCRIPTION", "description is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return apperr.Validation("INVALID_DESCRIPTION", "description must be at most 1000 characters")
	}
	return nil
}

// validatePrice accepts 0 (free courses) up to MaxPrice inclusive.
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.Validation("INVALID_PRICE", "price must be >= 0")
	}
	if price.GreaterThan(MaxPrice) {
		return apperr.Validation("INVALID_PRICE", "price must be <= 999999")
	}
	if !price.Equal(price.Truncate(PriceScale)) {
		return apperr.Validation("INVALID_PRICE", "price must have at most 2 decimal places")
	}
	return nil
}
