package mongostore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"coursemarket/internal/model"
)

type identityDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Firstname    string    `bson:"firstname"`
	Lastname     string    `bson:"lastname"`
	ImageRef     *string   `bson:"image_ref,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type courseDoc struct {
	ID           string          `bson:"_id"`
	OwnerAdminID string          `bson:"owner_admin_id"`
	Title        string          `bson:"title"`
	Description  string          `bson:"description"`
	Price        bson.Decimal128 `bson:"price"`
	ImageRef     *string         `bson:"image_ref,omitempty"`
	CreatedAt    time.Time       `bson:"created_at"`
	UpdatedAt    time.Time       `bson:"updated_at"`
}

type purchaseDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	CourseID  string    `bson:"course_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// stamp fills id and timestamps the way the gorm hooks do.
func stamp(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt != nil && updatedAt.IsZero() {
		*updatedAt = now
	}
}

func encodePrice(p decimal.Decimal) (bson.Decimal128, error) {
	d, err := bson.ParseDecimal128(p.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("encode price %s: %w", p, err)
	}
	return d, nil
}

func decodePrice(d bson.Decimal128) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decode price %s: %w", d, err)
	}
	return p, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt document id %q: %w", s, err)
	}
	return id, nil
}

func adminToDoc(a *model.Admin) identityDoc {
	return identityDoc{
		ID:           a.ID.String(),
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Firstname:    a.Firstname,
		Lastname:     a.Lastname,
		ImageRef:     a.ImageRef,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (d identityDoc) toAdmin() (*model.Admin, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	return &model.Admin{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Firstname:    d.Firstname,
		Lastname:     d.Lastname,
		ImageRef:     d.ImageRef,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func userToDoc(u *model.User) identityDoc {
	return identityDoc{
		ID:           u.ID.String(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Firstname:    u.Firstname,
		Lastname:     u.Lastname,
		ImageRef:     u.ImageRef,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d identityDoc) toUser() (*model.User, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Firstname:    d.Firstname,
		Lastname:     d.Lastname,
		ImageRef:     d.ImageRef,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func courseToDoc(c *model.Course) (courseDoc, error) {
	price, err := encodePrice(c.Price)
	if err != nil {
		return courseDoc{}, err
	}
	return courseDoc{
		ID:           c.ID.String(),
		OwnerAdminID: c.OwnerAdminID.String(),
		Title:        c.Title,
		Description:  c.Description,
		Price:        price,
		ImageRef:     c.ImageRef,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}, nil
}

func (d courseDoc) toCourse() (model.Course, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return model.Course{}, err
	}
	owner, err := parseID(d.OwnerAdminID)
	if err != nil {
		return model.Course{}, err
	}
	price, err := decodePrice(d.Price)
	if err != nil {
		return model.Course{}, err
	}
	return model.Course{
		ID:           id,
		OwnerAdminID: owner,
		Title:        d.Title,
		Description:  d.Description,
		Price:        price,
		ImageRef:     d.ImageRef,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func (d purchaseDoc) toPurchase() (model.Purchase, error) {
	id, err := parseID(d.ID)
	if err != nil {
		return model.Purchase{}, err
	}
	userID, err := parseID(d.UserID)
	if err != nil {
		return model.Purchase{}, err
	}
	courseID, err := parseID(d.CourseID)
	if err != nil {
		return model.Purchase{}, err
	}
	return model.Purchase{ID: id, UserID: userID, CourseID: courseID, CreatedAt: d.CreatedAt}, nil
}
